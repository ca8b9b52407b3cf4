package vision

import (
	"github.com/farmchat/backend-go/internal/config"
)

// 全局视觉客户端实例
var globalClient *Client

// InitGlobalClient 初始化全局视觉客户端
func InitGlobalClient(cfg *config.VisionConfig) {
	if cfg == nil || cfg.OpenRouterAPIKey == "" {
		return
	}

	globalClient = NewClient(cfg.OpenRouterAPIKey, cfg.BaseURL, cfg.Model, cfg.TimeoutSeconds)
}

// GetGlobalClient 获取全局视觉客户端实例
func GetGlobalClient() *Client {
	return globalClient
}

// IsGlobalClientReady 检查全局客户端是否就绪
func IsGlobalClientReady() bool {
	return globalClient != nil && globalClient.Ready()
}
