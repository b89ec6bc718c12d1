package app

import (
	"net/http"

	"aipulse/internal/errors"

	"github.com/gin-gonic/gin"
)

// StandardResponse 统一API响应结构
type StandardResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"` // 机器可读错误码
}

// ResponseHelper 响应辅助函数集合
type ResponseHelper struct{}

// NewResponseHelper 创建响应助手实例
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success 返回成功响应
func (h *ResponseHelper) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, StandardResponse[any]{
		Success: true,
		Data:    data,
	})
}

// Error 返回错误响应（自动识别错误类型，提取应用级错误码）
func (h *ResponseHelper) Error(c *gin.Context, httpCode int, err error) {
	resp := StandardResponse[any]{
		Success: false,
		Error:   err.Error(),
	}

	if errors.IsAppError(err) {
		resp.Code = string(errors.GetErrorCode(err))
	}

	c.JSON(httpCode, resp)
}

// ErrorMsg 返回错误响应（仅消息）
func (h *ResponseHelper) ErrorMsg(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, StandardResponse[any]{
		Success: false,
		Error:   message,
	})
}

// BadRequest 快捷方法 - 400 错误
func (h *ResponseHelper) BadRequest(c *gin.Context, message string) {
	h.ErrorMsg(c, http.StatusBadRequest, message)
}

// InternalError 快捷方法 - 500 错误
func (h *ResponseHelper) InternalError(c *gin.Context, err error) {
	h.Error(c, http.StatusInternalServerError, err)
}
