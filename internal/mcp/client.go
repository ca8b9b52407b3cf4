package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/farmchat/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Client MCP工具网关客户端
type Client struct {
	gatewayURL string
	token      string
	client     *http.Client
}

// ToolResponse 网关响应信封
type ToolResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// NewClient 创建MCP网关客户端
func NewClient(gatewayURL, token string, timeoutSeconds int) *Client {
	gatewayURL = strings.TrimRight(strings.TrimSpace(gatewayURL), "/")
	if gatewayURL == "" {
		logger.Warn("MCP gateway URL is empty")
		return nil
	}

	return &Client{
		gatewayURL: gatewayURL,
		token:      token,
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// InvokeTool 调用指定工具，返回原始JSON结果
func (c *Client) InvokeTool(ctx context.Context, toolName string, params map[string]interface{}) (json.RawMessage, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("MCP client not initialized")
	}

	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("序列化工具参数失败: %w", err)
	}

	url := fmt.Sprintf("%s/tools/%s", c.gatewayURL, toolName)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("工具调用失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("MCP网关错误: HTTP %d - %s", resp.StatusCode, string(body))
	}

	var toolResp ToolResponse
	if err := json.Unmarshal(body, &toolResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	if !toolResp.Success {
		return nil, fmt.Errorf("工具执行失败: %s", toolResp.Error)
	}

	logger.Debug("MCP tool invoked",
		zap.String("tool", toolName),
		zap.Duration("elapsed", time.Since(start)))

	return toolResp.Data, nil
}

// HealthCheck 检查网关可达性
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("MCP client not initialized")
	}

	url := fmt.Sprintf("%s/health", c.gatewayURL)
	httpReq, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("网关不可达: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("网关健康检查失败: HTTP %d", resp.StatusCode)
	}
	return nil
}

// Ready 检查客户端是否就绪
func (c *Client) Ready() bool {
	return c != nil && c.client != nil
}
