package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/farmchat/backend-go/internal/deepgram"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/logger"
	"go.uber.org/zap"
)

// VoiceService 语音转写服务
type VoiceService struct {
	metrics *MetricsService
	logger  *zap.Logger
}

// TranscribeRequest 转写请求
type TranscribeRequest struct {
	AudioBase64 string `json:"audio" validate:"required"`
	MimeType    string `json:"mime_type"`
}

// TranscribeResponse 转写响应
type TranscribeResponse struct {
	Text             string  `json:"text"`
	Confidence       float64 `json:"confidence"`
	DetectedLanguage string  `json:"detected_language"`
}

// VoiceCapabilities 语音能力描述
type VoiceCapabilities struct {
	Available          bool                         `json:"available"`
	Model              string                       `json:"model"`
	AutoDetectLanguage bool                         `json:"auto_detect_language"`
	SupportedLanguages []deepgram.SupportedLanguage `json:"supported_languages"`
}

// NewVoiceService 创建语音服务
func NewVoiceService() *VoiceService {
	return &VoiceService{
		metrics: NewMetricsService(),
		logger:  logger.GetLogger(),
	}
}

// Transcribe base64音频 → 文本，语言自动检测
func (s *VoiceService) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResponse, error) {
	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	client := deepgram.GetGlobalClient()
	if client == nil {
		return nil, apperrors.NewExternalServiceError("deepgram", fmt.Errorf("STT service not configured"))
	}

	// 容忍data URL前缀
	payload := req.AudioBase64
	if idx := strings.Index(payload, "base64,"); idx >= 0 {
		payload = payload[idx+len("base64,"):]
	}

	audio, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		s.metrics.RecordTranscription("invalid_input")
		return nil, apperrors.NewValidationError("audio must be valid base64")
	}
	if len(audio) == 0 {
		s.metrics.RecordTranscription("invalid_input")
		return nil, apperrors.NewValidationError("audio payload is empty")
	}

	result, err := client.Transcribe(ctx, audio, req.MimeType)
	if err != nil {
		s.metrics.RecordTranscription("failure")
		s.logger.Error("语音转写失败", zap.Error(err))
		return nil, apperrors.NewExternalServiceError("deepgram", err)
	}

	s.metrics.RecordTranscription("success")
	return &TranscribeResponse{
		Text:             result.Text,
		Confidence:       result.Confidence,
		DetectedLanguage: result.DetectedLanguage,
	}, nil
}

// Capabilities 返回语音能力与支持的语言列表
func (s *VoiceService) Capabilities() *VoiceCapabilities {
	client := deepgram.GetGlobalClient()
	caps := &VoiceCapabilities{
		Available:          deepgram.IsGlobalClientReady(),
		Model:              "nova-2",
		AutoDetectLanguage: true,
	}
	if client != nil {
		caps.SupportedLanguages = client.SupportedLanguages()
	} else {
		caps.SupportedLanguages = []deepgram.SupportedLanguage{}
	}
	return caps
}
