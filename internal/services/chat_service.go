package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/farmchat/backend-go/internal/cerebras"
	"github.com/farmchat/backend-go/internal/config"
	"github.com/farmchat/backend-go/internal/database"
	apperrors "github.com/farmchat/backend-go/internal/errors"
	"github.com/farmchat/backend-go/internal/kafka"
	"github.com/farmchat/backend-go/internal/logger"
	"github.com/farmchat/backend-go/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChatService 对话编排服务：分类 → 工具调用 → 提示词组装 → LLM → 持久化
type ChatService struct {
	db         *gorm.DB
	classifier *QueryClassifier
	invoker    *ToolInvoker
	composer   *PromptComposer
	retriever  *KnowledgeRetriever
	profiles   *FarmProfileService
	metrics    *MetricsService
	logger     *zap.Logger
}

// ChatRequest 对话请求
type ChatRequest struct {
	UserID         uint   `json:"-"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message" validate:"required,min=1,max=4000"`
	Language       string `json:"language"`
}

// ChatResponse 对话响应
type ChatResponse struct {
	Message        string   `json:"message"`
	ToolsUsed      []string `json:"tools_used"`
	ConversationID string   `json:"conversation_id"`
	Language       string   `json:"language"`
}

// NewChatService 创建对话服务
func NewChatService(db *gorm.DB) *ChatService {
	if db == nil {
		db = database.DB
	}

	historyWindow := 6
	topK := 2
	if cfg := config.AppConfig; cfg != nil {
		if cfg.Chat.HistoryWindow > 0 {
			historyWindow = cfg.Chat.HistoryWindow
		}
		if cfg.Chat.KnowledgeTopK > 0 {
			topK = cfg.Chat.KnowledgeTopK
		}
	}

	return &ChatService{
		db:         db,
		classifier: NewQueryClassifier(),
		invoker:    NewDefaultToolInvoker(),
		composer:   NewPromptComposer(historyWindow),
		retriever:  NewKnowledgeRetriever(topK),
		profiles:   NewFarmProfileService(db),
		metrics:    NewMetricsService(),
		logger:     logger.GetLogger(),
	}
}

// ProcessMessage 处理一条用户消息并返回编排后的回复
func (s *ChatService) ProcessMessage(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	start := time.Now()

	if err := ValidateStruct(req); err != nil {
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = s.classifier.DetectLanguage(req.Message)
	}

	conversation, err := s.ensureConversation(req.UserID, req.ConversationID, req.Message, language)
	if err != nil {
		s.metrics.RecordChatRequest("error", time.Since(start))
		return nil, err
	}

	tools := s.classifier.Classify(req.Message)

	// 先落用户消息，再开始编排
	userMsg := &models.ChatMessage{
		ConversationID: conversation.ID,
		UserID:         req.UserID,
		Role:           "user",
		Content:        req.Message,
		QueryType:      strings.Join(tools, ","),
		Language:       language,
		CreatedAt:      time.Now(),
	}
	if err := s.db.Create(userMsg).Error; err != nil {
		s.metrics.RecordChatRequest("error", time.Since(start))
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	toolParams := map[string]interface{}{
		"query":    req.Message,
		"language": language,
	}
	toolResults := s.invoker.InvokeAll(ctx, tools, toolParams)
	for _, tool := range tools {
		outcome := "failure"
		if _, ok := toolResults[tool]; ok {
			outcome = "success"
		}
		s.metrics.RecordToolInvocation(tool, outcome)
	}

	// tools_used只包含实际返回数据的工具，顺序跟随分类结果
	toolsUsed := make([]string, 0, len(toolResults))
	for _, tool := range tools {
		if _, ok := toolResults[tool]; ok {
			toolsUsed = append(toolsUsed, tool)
		}
	}

	history, err := s.recentHistory(conversation.ID, userMsg.ID)
	if err != nil {
		s.logger.Warn("加载历史失败，继续无历史回答", zap.Error(err))
	}

	knowledge := s.retriever.Retrieve(req.Message)
	profileContext := s.profiles.PromptContext(req.UserID)

	messages := s.composer.Compose(req.Message, history, toolResults, knowledge, profileContext)

	llm := cerebras.GetGlobalService()
	if llm == nil {
		s.metrics.RecordChatRequest("llm_unavailable", time.Since(start))
		return nil, apperrors.NewLLMUnavailableError(fmt.Errorf("cerebras service not configured"))
	}

	llmStart := time.Now()
	completion, err := llm.ChatCompletion(ctx, messages)
	if err != nil {
		s.logger.Error("LLM调用失败",
			zap.String("conversation_id", conversation.ID),
			zap.Error(err))
		s.metrics.RecordChatRequest("llm_error", time.Since(start))
		return nil, apperrors.NewLLMUnavailableError(err)
	}
	s.metrics.RecordLLMCall(time.Since(llmStart), completion.PromptTokens, completion.CompletionTokens)

	toolsJSON, _ := json.Marshal(toolsUsed)
	usageJSON, _ := json.Marshal(map[string]int{
		"prompt_tokens":     completion.PromptTokens,
		"completion_tokens": completion.CompletionTokens,
		"total_tokens":      completion.TotalTokens,
	})

	assistantMsg := &models.ChatMessage{
		ConversationID: conversation.ID,
		UserID:         req.UserID,
		Role:           "assistant",
		Content:        completion.Content,
		ToolsUsed:      string(toolsJSON),
		Language:       language,
		UsageInfo:      string(usageJSON),
		CreatedAt:      time.Now(),
	}
	if err := s.db.Create(assistantMsg).Error; err != nil {
		s.metrics.RecordChatRequest("error", time.Since(start))
		return nil, fmt.Errorf("failed to persist assistant message: %w", err)
	}

	preview := truncateRunes(completion.Content, 200)
	s.db.Model(conversation).Updates(map[string]interface{}{
		"last_message": preview,
		"updated_at":   time.Now(),
	})

	// 审计事件异步发送，失败不影响响应
	go func() {
		if err := kafka.SendChatEvent(conversation.ID, req.UserID, "assistant",
			completion.Content, strings.Join(tools, ","), language, toolsUsed,
			&kafka.UsageInfo{
				InputTokens:  completion.PromptTokens,
				OutputTokens: completion.CompletionTokens,
				TotalTokens:  completion.TotalTokens,
			}); err != nil {
			logger.Warn("发送对话审计事件失败", zap.Error(err))
		}
	}()

	s.metrics.RecordChatRequest("success", time.Since(start))
	s.logger.Info("Chat message processed",
		zap.String("conversation_id", conversation.ID),
		zap.Uint("user_id", req.UserID),
		zap.Strings("tools_used", toolsUsed),
		zap.Duration("elapsed", time.Since(start)))

	return &ChatResponse{
		Message:        completion.Content,
		ToolsUsed:      toolsUsed,
		ConversationID: conversation.ID,
		Language:       language,
	}, nil
}

// truncateRunes 按字符数截断，避免在多字节字符中间切断
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// ensureConversation 查找或创建会话，标题取首条消息前缀
func (s *ChatService) ensureConversation(userID uint, conversationID, firstMessage, language string) (*models.Conversation, error) {
	if conversationID != "" {
		var conv models.Conversation
		err := s.db.Where("id = ? AND user_id = ?", conversationID, userID).First(&conv).Error
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFoundError("conversation")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation: %w", err)
		}
		return &conv, nil
	}

	title := truncateRunes(firstMessage, 60)

	conv := &models.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Language:  language,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.db.Create(conv).Error; err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	s.logger.Info("Conversation created",
		zap.String("conversation_id", conv.ID),
		zap.Uint("user_id", userID))
	return conv, nil
}

// recentHistory 加载本轮用户消息之前的历史
func (s *ChatService) recentHistory(conversationID string, beforeMessageID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.Where("conversation_id = ? AND id < ?", conversationID, beforeMessageID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}
