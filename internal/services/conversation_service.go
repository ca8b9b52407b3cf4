package services

import (
	"fmt"

	"github.com/farmchat/backend-go/internal/database"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConversationService 会话管理服务
type ConversationService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// ConversationSummary 会话列表项
type ConversationSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Language     string `json:"language"`
	LastMessage  string `json:"last_message"`
	MessageCount int64  `json:"message_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// NewConversationService 创建会话服务
func NewConversationService(db *gorm.DB) *ConversationService {
	if db == nil {
		db = database.DB
	}
	return &ConversationService{
		db:     db,
		logger: logger.GetLogger(),
	}
}

// ListConversations 列出用户会话，按更新时间倒序
func (s *ConversationService) ListConversations(userID uint) ([]ConversationSummary, error) {
	var conversations []models.Conversation
	if err := s.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	summaries := make([]ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		var count int64
		s.db.Model(&models.ChatMessage{}).
			Where("conversation_id = ?", conv.ID).
			Count(&count)

		summaries = append(summaries, ConversationSummary{
			ID:           conv.ID,
			Title:        conv.Title,
			Language:     conv.Language,
			LastMessage:  conv.LastMessage,
			MessageCount: count,
			CreatedAt:    conv.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			UpdatedAt:    conv.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return summaries, nil
}

// GetHistory 查询消息历史，conversationID为空时返回用户全部消息
func (s *ConversationService) GetHistory(userID uint, conversationID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.db.Where("user_id = ?", userID)
	if conversationID != "" {
		// 会话必须属于当前用户
		var conv models.Conversation
		err := s.db.Where("id = ? AND user_id = ?", conversationID, userID).First(&conv).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.NewNotFoundError("conversation")
			}
			return nil, fmt.Errorf("failed to load conversation: %w", err)
		}
		query = query.Where("conversation_id = ?", conversationID)
	}

	var messages []models.ChatMessage
	if err := query.Order("created_at ASC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	return messages, nil
}

// DeleteConversation 删除会话及其消息。
// 重复删除返回NotFound而不是成功，便于客户端感知。
func (s *ConversationService) DeleteConversation(userID uint, conversationID string) error {
	var conv models.Conversation
	err := s.db.Where("id = ? AND user_id = ?", conversationID, userID).First(&conv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFoundError("conversation")
		}
		return fmt.Errorf("failed to load conversation: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("conversation_id = ?", conversationID).
			Delete(&models.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Delete(&conv).Error; err != nil {
			return fmt.Errorf("failed to delete conversation: %w", err)
		}

		s.logger.Info("Conversation deleted",
			zap.String("conversation_id", conversationID),
			zap.Uint("user_id", userID))
		return nil
	})
}
