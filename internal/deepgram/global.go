package deepgram

import (
	"github.com/farmchat/backend-go/internal/config"
)

// 全局Deepgram客户端实例
var globalClient *Client

// InitGlobalClient 初始化全局Deepgram客户端
func InitGlobalClient(cfg *config.VoiceConfig) {
	if cfg == nil || cfg.DeepgramAPIKey == "" {
		return
	}

	globalClient = NewClient(cfg.DeepgramAPIKey, cfg.Model, cfg.TimeoutSeconds)
}

// GetGlobalClient 获取全局Deepgram客户端实例
func GetGlobalClient() *Client {
	return globalClient
}

// IsGlobalClientReady 检查全局客户端是否就绪
func IsGlobalClientReady() bool {
	return globalClient != nil && globalClient.Ready()
}
