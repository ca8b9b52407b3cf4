package deepgram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encoding/json"

	"github.com/farmchat/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Client Deepgram语音转写客户端
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// TranscriptionResult 转写结果
type TranscriptionResult struct {
	Text             string  `json:"text"`
	Confidence       float64 `json:"confidence"`
	DetectedLanguage string  `json:"detected_language"`
}

// listenResponse Deepgram /v1/listen 响应结构（仅取所需字段）
type listenResponse struct {
	Results struct {
		Channels []struct {
			DetectedLanguage string `json:"detected_language"`
			Alternatives     []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// SupportedLanguage 支持的语言
type SupportedLanguage struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewClient 创建Deepgram客户端
func NewClient(apiKey, model string, timeoutSeconds int) *Client {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		logger.Warn("Deepgram API key is empty")
		return nil
	}
	if model == "" {
		model = "nova-2"
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: "https://api.deepgram.com",
		model:   model,
		client: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// Transcribe 转写音频，自动检测语言
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType string) (*TranscriptionResult, error) {
	if c == nil || c.client == nil {
		return nil, fmt.Errorf("deepgram client not initialized")
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	params := url.Values{}
	params.Set("model", c.model)
	params.Set("detect_language", "true")
	params.Set("smart_format", "true")
	params.Set("punctuate", "true")

	endpoint := fmt.Sprintf("%s/v1/listen?%s", c.baseURL, params.Encode())
	httpReq, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	httpReq.Header.Set("Authorization", fmt.Sprintf("Token %s", c.apiKey))
	httpReq.Header.Set("Content-Type", mimeType)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("Deepgram调用失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Deepgram API错误: HTTP %d - %s", resp.StatusCode, string(body))
	}

	var parsed listenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return nil, fmt.Errorf("no transcription found in audio")
	}

	channel := parsed.Results.Channels[0]
	alt := channel.Alternatives[0]

	detected := channel.DetectedLanguage
	if detected == "" {
		detected = "unknown"
	}

	logger.Info("Deepgram transcription success",
		zap.String("model", c.model),
		zap.String("detected_language", detected),
		zap.Float64("confidence", alt.Confidence))

	return &TranscriptionResult{
		Text:             strings.TrimSpace(alt.Transcript),
		Confidence:       alt.Confidence,
		DetectedLanguage: detected,
	}, nil
}

// SupportedLanguages 返回Nova-2支持的语言列表
func (c *Client) SupportedLanguages() []SupportedLanguage {
	return []SupportedLanguage{
		{Code: "en", Name: "English"},
		{Code: "hi", Name: "Hindi"},
		{Code: "pa", Name: "Punjabi"},
		{Code: "ta", Name: "Tamil"},
		{Code: "te", Name: "Telugu"},
		{Code: "mr", Name: "Marathi"},
		{Code: "bn", Name: "Bengali"},
		{Code: "gu", Name: "Gujarati"},
		{Code: "kn", Name: "Kannada"},
		{Code: "ml", Name: "Malayalam"},
		{Code: "or", Name: "Odia"},
		{Code: "ur", Name: "Urdu"},
	}
}

// Ready 检查客户端是否就绪
func (c *Client) Ready() bool {
	return c != nil && c.client != nil
}
