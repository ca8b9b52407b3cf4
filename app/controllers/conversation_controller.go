package controllers

import (
	"net/http"
	"strconv"

	"github.com/farmchat/backend-go/internal/services"
)

// ConversationController 会话管理
type ConversationController struct {
	BaseController
	conversationService *services.ConversationService
}

// NewConversationController 创建会话控制器
func NewConversationController() *ConversationController {
	return &ConversationController{
		conversationService: services.NewConversationService(nil),
	}
}

// List 列出当前用户的会话，按最近活跃排序
func (c *ConversationController) List() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	conversations, err := c.conversationService.ListConversations(claims.UserID)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"conversations": conversations,
		"total":         len(conversations),
	})
}

// History 返回单个会话的消息历史
func (c *ConversationController) History() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	conversationID := c.Ctx.Input.Param(":id")
	if conversationID == "" {
		c.JSONError(http.StatusBadRequest, "conversation id is required")
		return
	}

	limit, _ := strconv.Atoi(c.GetString("limit", "50"))

	messages, err := c.conversationService.GetHistory(claims.UserID, conversationID, limit)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"conversation_id": conversationID,
		"messages":        messages,
	})
}

// ChatHistory 返回消息历史，conversation_id查询参数可选
func (c *ConversationController) ChatHistory() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	conversationID := c.GetString("conversation_id")
	limit, _ := strconv.Atoi(c.GetString("limit", "50"))

	messages, err := c.conversationService.GetHistory(claims.UserID, conversationID, limit)
	if err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"conversation_id": conversationID,
		"messages":        messages,
	})
}

// Delete 删除会话及其全部消息
func (c *ConversationController) Delete() {
	claims, ok := c.requireAuth()
	if !ok {
		return
	}

	conversationID := c.Ctx.Input.Param(":id")
	if conversationID == "" {
		c.JSONError(http.StatusBadRequest, "conversation id is required")
		return
	}

	if err := c.conversationService.DeleteConversation(claims.UserID, conversationID); err != nil {
		c.handleServiceError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"deleted": conversationID,
	})
}
