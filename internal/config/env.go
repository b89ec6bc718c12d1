package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"aipulse/internal/errors"
)

// EnvConfig 统一环境变量配置结构
type EnvConfig struct {
	// 服务配置
	Port       string
	GinMode    string
	AuthTokens []string

	// 匿名化配置
	HashSalt string

	// 数据库配置
	SQLitePath string
	MySQLDSN   string
	RedisURL   string

	// 功能开关
	IngestEnabled bool

	// 清理配置
	RetentionDays int
}

// LoadFromEnv 从环境变量加载配置并验证
func LoadFromEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{}

	cfg.Port = getEnvOrDefault("PORT", DefaultPort)
	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}
	cfg.GinMode = os.Getenv("GIN_MODE")

	// 解析认证令牌（摄取接口使用）
	if authEnv := os.Getenv("AIPULSE_AUTH"); authEnv != "" {
		for _, token := range strings.Split(authEnv, ",") {
			if trimmed := strings.TrimSpace(token); trimmed != "" {
				cfg.AuthTokens = append(cfg.AuthTokens, trimmed)
			}
		}
	}

	// 匿名化盐值：强制要求，缺失时原始ID无法安全入库
	cfg.HashSalt = os.Getenv("AIPULSE_HASH_SALT")
	if cfg.HashSalt == "" {
		return nil, errors.MissingConfigError("AIPULSE_HASH_SALT")
	}

	// 数据库配置：MySQL DSN优先，否则回落SQLite
	cfg.SQLitePath = getEnvOrDefault("SQLITE_PATH", "data/aipulse.db")
	cfg.MySQLDSN = os.Getenv("AIPULSE_MYSQL_DSN")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.IngestEnabled = getBoolEnv("AIPULSE_INGEST_ENABLED", true)
	cfg.RetentionDays = getIntEnv("AIPULSE_RETENTION_DAYS", EventRetentionDays)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置验证失败: %w", err)
	}

	return cfg, nil
}

// Validate 验证配置合法性
func (c *EnvConfig) Validate() error {
	if strings.HasPrefix(c.Port, ":") {
		portNum, err := strconv.Atoi(c.Port[1:])
		if err != nil || portNum < 1 || portNum > 65535 {
			return errors.InvalidConfigError("PORT", fmt.Sprintf("无效端口号: %s", c.Port))
		}
	}

	if c.RetentionDays < 1 || c.RetentionDays > 365 {
		return errors.InvalidConfigError("AIPULSE_RETENTION_DAYS",
			fmt.Sprintf("超出合理范围 [1, 365]: %d", c.RetentionDays))
	}

	return nil
}

// 辅助函数：获取环境变量或默认值
func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// 辅助函数：获取整数环境变量
func getIntEnv(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil && intVal > 0 {
			return intVal
		}
	}
	return defaultValue
}

// 辅助函数：获取布尔环境变量
func getBoolEnv(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "1" || strings.EqualFold(val, "true") {
		return true
	}
	if val == "0" || strings.EqualFold(val, "false") {
		return false
	}
	return defaultValue
}
