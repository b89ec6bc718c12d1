// Package validator 摄取边界的载荷形状校验
//
// 设计原则:
// - 校验只发生在摄取入口:纯统计/分级函数永远只接收已校验的数据
// - 校验失败返回结构化错误,不落库、不静默修正
package validator

import (
	"regexp"
	"strings"

	"aipulse/internal/errors"
	"aipulse/internal/model"
)

// 探针错误码的合法形态:http-<status> | semantic_mismatch | timeout | network
var probeErrorCodePattern = regexp.MustCompile(`^http-\d{3}$`)

// ValidateTelemetry 校验遥测事件载荷
func ValidateTelemetry(e *model.TelemetryEvent) error {
	if strings.TrimSpace(e.Provider) == "" {
		return errors.ValidationError("provider", "不能为空")
	}
	if e.Source != model.SourceCrowd && e.Source != model.SourceAccount {
		return errors.ValidationError("source", "必须为 crowd 或 account")
	}
	if err := checkRate("http_5xx_rate", e.HTTP5xxRate); err != nil {
		return err
	}
	if err := checkRate("http_429_rate", e.HTTP429Rate); err != nil {
		return err
	}
	if err := checkRate("refusal_rate", e.RefusalRate); err != nil {
		return err
	}
	if err := checkRate("tool_success_rate", e.ToolSuccessRate); err != nil {
		return err
	}
	if err := checkRate("schema_valid_rate", e.SchemaValidRate); err != nil {
		return err
	}
	if err := checkNonNegative("latency_ms", e.LatencyMs); err != nil {
		return err
	}
	if err := checkNonNegative("retry_after_seconds", e.RetryAfterSeconds); err != nil {
		return err
	}
	if err := checkNonNegative("tokens_per_sec", e.TokensPerSec); err != nil {
		return err
	}
	if err := checkNonNegative("completion_tokens", e.CompletionTokens); err != nil {
		return err
	}
	return nil
}

// ValidateProbe 校验探针事件载荷
func ValidateProbe(e *model.ProbeEvent) error {
	if strings.TrimSpace(e.Provider) == "" {
		return errors.ValidationError("provider", "不能为空")
	}
	if err := checkNonNegative("latency_p50_ms", e.LatencyP50Ms); err != nil {
		return err
	}
	if err := checkNonNegative("latency_p95_ms", e.LatencyP95Ms); err != nil {
		return err
	}
	if err := checkNonNegative("latency_p99_ms", e.LatencyP99Ms); err != nil {
		return err
	}
	if !validProbeErrorCode(e.ErrorCode) {
		return errors.ValidationError("error_code", "不是合法的探针错误码")
	}
	return nil
}

// ValidateOfficialStatus 校验官方状态快照载荷
func ValidateOfficialStatus(s *model.OfficialStatus) error {
	if strings.TrimSpace(s.Provider) == "" {
		return errors.ValidationError("provider", "不能为空")
	}
	if strings.TrimSpace(s.Status) == "" {
		return errors.ValidationError("status", "不能为空")
	}
	return nil
}

// validProbeErrorCode 空串表示探针成功
func validProbeErrorCode(code string) bool {
	switch code {
	case "", "semantic_mismatch", "timeout", "network":
		return true
	}
	return probeErrorCodePattern.MatchString(code)
}

// checkRate 比率字段必须落在 [0, 1]
func checkRate(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if *v < 0 || *v > 1 {
		return errors.ValidationError(field, "必须在 [0, 1] 区间内")
	}
	return nil
}

// checkNonNegative 数值字段不允许为负
func checkNonNegative(field string, v *float64) error {
	if v == nil {
		return nil
	}
	if *v < 0 {
		return errors.ValidationError(field, "不能为负数")
	}
	return nil
}
