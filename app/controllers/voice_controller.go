package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/farmchat/backend-go/internal/services"
)

// VoiceController 语音转写
type VoiceController struct {
	BaseController
	voiceService *services.VoiceService
}

// NewVoiceController 创建语音控制器
func NewVoiceController() *VoiceController {
	return &VoiceController{
		voiceService: services.NewVoiceService(),
	}
}

// Transcribe 将base64音频转写为文本
func (c *VoiceController) Transcribe() {
	if _, ok := c.requireAuth(); !ok {
		return
	}

	var req services.TranscribeRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := c.voiceService.Transcribe(c.Ctx.Request.Context(), &req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(resp)
}

// Capabilities 返回语音服务能力与支持语言
func (c *VoiceController) Capabilities() {
	c.JSONSuccess(c.voiceService.Capabilities())
}
