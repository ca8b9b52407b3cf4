package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/deepgram"
	apperrors "github.com/farmchat/backend-go/internal/errors"
)

func TestVoiceCapabilities_NotConfigured(t *testing.T) {
	svc := NewVoiceService()

	caps := svc.Capabilities()
	assert.False(t, caps.Available)
	assert.Equal(t, "nova-2", caps.Model)
	assert.True(t, caps.AutoDetectLanguage)
	assert.Empty(t, caps.SupportedLanguages)
}

func TestVoiceTranscribe_NotConfigured(t *testing.T) {
	svc := NewVoiceService()

	_, err := svc.Transcribe(context.Background(), &TranscribeRequest{AudioBase64: "QUJD"})
	assertAppErrorCode(t, err, apperrors.ErrCodeExternalService)
}

func TestVoiceTranscribe_InvalidBase64(t *testing.T) {
	deepgram.InitGlobalClient(&config.VoiceConfig{DeepgramAPIKey: "dg-test-key"})
	require.NotNil(t, deepgram.GetGlobalClient())

	svc := NewVoiceService()

	_, err := svc.Transcribe(context.Background(), &TranscribeRequest{AudioBase64: "!!not-base64!!"})
	assertAppErrorCode(t, err, apperrors.ErrCodeValidationFailed)
}

func TestVoiceTranscribe_EmptyPayload(t *testing.T) {
	deepgram.InitGlobalClient(&config.VoiceConfig{DeepgramAPIKey: "dg-test-key"})

	svc := NewVoiceService()

	// data URL前缀之后没有内容
	_, err := svc.Transcribe(context.Background(), &TranscribeRequest{AudioBase64: "data:audio/webm;base64,"})
	assertAppErrorCode(t, err, apperrors.ErrCodeValidationFailed)
}

func TestVoiceCapabilities_Configured(t *testing.T) {
	deepgram.InitGlobalClient(&config.VoiceConfig{DeepgramAPIKey: "dg-test-key"})

	svc := NewVoiceService()

	caps := svc.Capabilities()
	assert.True(t, caps.Available)
	assert.NotEmpty(t, caps.SupportedLanguages)
}
