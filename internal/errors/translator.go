package errors

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrorTranslator 错误转换器
type ErrorTranslator struct{}

// NewErrorTranslator 创建错误转换器
func NewErrorTranslator() *ErrorTranslator {
	return &ErrorTranslator{}
}

// Translate 将各种类型的错误转换为AppError
func (t *ErrorTranslator) Translate(err error) *AppError {
	if err == nil {
		return nil
	}

	// 如果已经是AppError，直接返回
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	// 处理不同类型的错误
	switch e := err.(type) {
	case validator.ValidationErrors:
		return t.translateValidationErrors(e)
	case *net.OpError:
		return NewExternalServiceError("network", e)
	}

	// 数据库记录不存在
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFoundError("resource")
	}

	// 上下文超时
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:     ErrCodeTimeout,
			Message:  "request timed out",
			Type:     ErrorTypeExternal,
			HTTPCode: 504,
			Cause:    err,
		}
	}

	errMsg := err.Error()

	// 外部服务错误
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "timeout") {
		return NewSystemError(ErrCodeExternalService, "External service unavailable").WithCause(err)
	}

	// 默认系统错误
	return NewSystemError(ErrCodeInternalServer, "Internal server error").WithCause(err)
}

// translateValidationErrors 转换验证错误
func (t *ErrorTranslator) translateValidationErrors(validationErrors validator.ValidationErrors) *AppError {
	var details []map[string]interface{}

	for _, fieldError := range validationErrors {
		detail := map[string]interface{}{
			"field": fieldError.Field(),
			"tag":   fieldError.Tag(),
			"param": fieldError.Param(),
		}
		details = append(details, detail)
	}

	return NewValidationError("request validation failed").WithDetails(details)
}
