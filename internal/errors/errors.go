package errors

import (
	"fmt"
)

// ErrorCode 错误代码类型（便于机器识别和监控）
type ErrorCode string

const (
	// 数据库操作错误
	ErrCodeDBQuery  ErrorCode = "DB_QUERY"  // 数据库查询失败
	ErrCodeDBInsert ErrorCode = "DB_INSERT" // 数据库插入失败
	ErrCodeDBDelete ErrorCode = "DB_DELETE" // 数据库删除失败

	// 摄取相关错误
	ErrCodeValidation ErrorCode = "VALIDATION" // 摄取载荷校验失败

	// 目录相关错误
	ErrCodeCatalogMissing ErrorCode = "CATALOG_MISSING" // 提供商目录缺失且无_default兜底

	// 认证相关错误
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED" // 未授权

	// 配置相关错误
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG" // 配置无效
	ErrCodeMissingConfig ErrorCode = "MISSING_CONFIG" // 配置缺失
)

// AppError 应用级错误结构（支持错误链和上下文信息）
type AppError struct {
	Code    ErrorCode      // 错误代码（机器可识别）
	Message string         // 错误消息（人类可读）
	Err     error          // 底层错误（支持错误链）
	Context map[string]any // 错误上下文（便于调试和监控）
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 实现错误链（Go 1.13+）
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext 添加错误上下文
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ============== 数据库错误工厂函数 ==============

// DBQueryError 数据库查询失败
func DBQueryError(operation string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDBQuery,
		Message: fmt.Sprintf("database query failed: %s", operation),
		Err:     err,
		Context: map[string]any{"operation": operation},
	}
}

// DBInsertError 数据库插入失败
func DBInsertError(table string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDBInsert,
		Message: fmt.Sprintf("failed to insert into %s", table),
		Err:     err,
		Context: map[string]any{"table": table},
	}
}

// DBDeleteError 数据库删除失败
func DBDeleteError(table string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeDBDelete,
		Message: fmt.Sprintf("failed to delete from %s", table),
		Err:     err,
		Context: map[string]any{"table": table},
	}
}

// ============== 摄取错误工厂函数 ==============

// ValidationError 摄取载荷校验失败
func ValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("invalid field '%s': %s", field, reason),
		Context: map[string]any{"field": field, "reason": reason},
	}
}

// ============== 目录错误工厂函数 ==============

// CatalogMissingError 提供商目录缺失（_default也不存在，属启动期配置错误）
func CatalogMissingError(provider string) *AppError {
	return &AppError{
		Code:    ErrCodeCatalogMissing,
		Message: fmt.Sprintf("no capability catalog for provider %q and no _default fallback", provider),
		Context: map[string]any{"provider": provider},
	}
}

// ============== 认证错误工厂函数 ==============

// UnauthorizedError 未授权
func UnauthorizedError(reason string) *AppError {
	return &AppError{
		Code:    ErrCodeUnauthorized,
		Message: "unauthorized: " + reason,
		Context: map[string]any{"reason": reason},
	}
}

// ============== 配置错误工厂函数 ==============

// InvalidConfigError 配置无效
func InvalidConfigError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeInvalidConfig,
		Message: fmt.Sprintf("invalid config field '%s': %s", field, reason),
		Context: map[string]any{"field": field, "reason": reason},
	}
}

// MissingConfigError 配置缺失
func MissingConfigError(field string) *AppError {
	return &AppError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("missing required config field: %s", field),
		Context: map[string]any{"field": field},
	}
}

// ============== 工具函数 ==============

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// GetErrorCode 获取错误代码（如果是AppError）
func GetErrorCode(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ""
}
