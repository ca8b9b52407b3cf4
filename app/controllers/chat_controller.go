package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/farmchat/backend-go/internal/services"
)

// ChatController 对话编排入口
type ChatController struct {
	BaseController
	chatService *services.ChatService
}

// NewChatController 创建对话控制器
func NewChatController() *ChatController {
	return &ChatController{
		chatService: services.NewChatService(nil),
	}
}

// SendMessage 处理一轮农业咨询对话
func (c *ChatController) SendMessage() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	var req services.ChatRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	req.UserID = claims.UserID
	if req.Language == "" {
		req.Language = claims.Language
	}

	resp, err := c.chatService.ProcessMessage(c.Ctx.Request.Context(), &req)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(resp)
}
