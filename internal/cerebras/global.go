package cerebras

import (
	"github.com/farmchat/backend-go/internal/config"
)

// 全局Cerebras服务实例
var globalService *Service

// InitGlobalService 初始化全局Cerebras服务
func InitGlobalService(cfg *config.AIConfig) {
	if cfg == nil || cfg.CerebrasAPIKey == "" {
		return
	}

	globalService = NewService(
		cfg.CerebrasAPIKey,
		cfg.BaseURL,
		cfg.DefaultModel,
		cfg.MaxTokens,
		cfg.Temperature,
		cfg.TimeoutSeconds,
		cfg.MaxRetries,
	)
}

// GetGlobalService 获取全局Cerebras服务实例
func GetGlobalService() *Service {
	return globalService
}

// IsGlobalServiceReady 检查全局服务是否就绪
func IsGlobalServiceReady() bool {
	return globalService != nil && globalService.Ready()
}
