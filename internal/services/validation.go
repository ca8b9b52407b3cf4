package services

import (
	"github.com/go-playground/validator/v10"
)

// 包级共享的结构体验证器
var validate = validator.New()

// ValidateStruct 验证请求结构体，错误交由错误翻译层转换
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
