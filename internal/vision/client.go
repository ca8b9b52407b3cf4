package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/farmchat/backend-go/internal/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client 视觉模型客户端，通过OpenRouter的OpenAI兼容接口访问
type Client struct {
	client *openai.Client
	model  string
}

// NewClient 创建视觉客户端
func NewClient(apiKey, baseURL, model string, timeoutSeconds int) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		logger.Warn("OpenRouter API key is empty")
		return nil
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}

	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// AnalyzeImage 以数据URL形式提交图片并返回模型分析文本
func (c *Client) AnalyzeImage(ctx context.Context, imageData []byte, mimeType, prompt string) (string, error) {
	if c == nil || c.client == nil {
		return "", fmt.Errorf("vision client not initialized")
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL: dataURL,
						},
					},
				},
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("vision analysis failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision model returned no choices")
	}

	logger.Info("Vision analysis success",
		zap.String("model", c.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

// Ready 检查客户端是否就绪
func (c *Client) Ready() bool {
	return c != nil && c.client != nil
}
