package mcp

import (
	"github.com/farmchat/backend-go/internal/config"
)

// 全局MCP网关客户端实例
var globalClient *Client

// InitGlobalClient 初始化全局MCP客户端
func InitGlobalClient(cfg *config.MCPConfig) {
	if cfg == nil || cfg.GatewayURL == "" {
		return
	}

	globalClient = NewClient(cfg.GatewayURL, cfg.GatewayToken, cfg.ToolTimeoutSec)
}

// GetGlobalClient 获取全局MCP客户端实例
func GetGlobalClient() *Client {
	return globalClient
}

// IsGlobalClientReady 检查全局客户端是否就绪
func IsGlobalClientReady() bool {
	return globalClient != nil && globalClient.Ready()
}
