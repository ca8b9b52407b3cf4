package cerebras

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/farmchat/backend-go/internal/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Service Cerebras推理服务，通过OpenAI兼容接口访问
type Service struct {
	client       *openai.Client
	defaultModel string
	maxTokens    int
	temperature  float64
	maxRetries   int
}

// CompletionResult 一次补全的结果
type CompletionResult struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// NewService 创建Cerebras服务
func NewService(apiKey, baseURL, defaultModel string, maxTokens int, temperature float64, timeoutSeconds, maxRetries int) *Service {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		logger.Warn("Cerebras API key is empty")
		return nil
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	cfg.HTTPClient = &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}

	return &Service{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
		maxTokens:    maxTokens,
		temperature:  temperature,
		maxRetries:   maxRetries,
	}
}

// ChatCompletion 调用LLM聊天接口，瞬时错误固定间隔重试
func (s *Service) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (*CompletionResult, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("cerebras service not initialized")
	}

	req := openai.ChatCompletionRequest{
		Model:       s.defaultModel,
		Messages:    messages,
		MaxTokens:   s.maxTokens,
		Temperature: float32(s.temperature),
	}

	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			logger.Warn("Retrying Cerebras completion",
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
		}

		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			if !isRetryable(err) {
				return nil, fmt.Errorf("cerebras completion failed: %w", err)
			}
			continue
		}

		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("cerebras returned no choices")
			continue
		}

		result := &CompletionResult{
			Content:          resp.Choices[0].Message.Content,
			Model:            resp.Model,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}

		logger.Info("Cerebras ChatCompletion success",
			zap.String("model", resp.Model),
			zap.Int("prompt_tokens", resp.Usage.PromptTokens),
			zap.Int("completion_tokens", resp.Usage.CompletionTokens))

		return result, nil
	}

	return nil, fmt.Errorf("cerebras completion failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

// isRetryable 判断错误是否值得重试：超时、5xx、429
func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// 网络层错误（连接重置等）
	return strings.Contains(err.Error(), "connection") || strings.Contains(err.Error(), "timeout")
}

// Ready 检查服务是否就绪
func (s *Service) Ready() bool {
	return s != nil && s.client != nil
}
