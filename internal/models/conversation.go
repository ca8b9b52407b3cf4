package models

import (
	"time"
)

// Conversation 会话表
type Conversation struct {
	ID          string    `gorm:"primaryKey;column:id;size:64" json:"id"`
	UserID      uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Title       string    `gorm:"size:255" json:"title"`
	Language    string    `gorm:"size:10;default:en" json:"language"`
	LastMessage string    `gorm:"type:text;column:last_message" json:"last_message"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// ChatMessage 聊天消息表
type ChatMessage struct {
	ID             uint      `gorm:"primaryKey;column:id" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;size:64;not null;index" json:"conversation_id"`
	UserID         uint      `gorm:"column:user_id;not null;index" json:"user_id"`
	Role           string    `gorm:"size:20;not null" json:"role"` // user/assistant
	Content        string    `gorm:"type:text;not null" json:"content"`
	QueryType      string    `gorm:"column:query_type;size:50" json:"query_type"`
	ToolsUsed      string    `gorm:"type:jsonb;column:tools_used" json:"tools_used"`
	Language       string    `gorm:"size:10" json:"language"`
	UsageInfo      string    `gorm:"type:jsonb;column:usage_info" json:"usage_info"`
	CreatedAt      time.Time `gorm:"column:created_at;not null;index" json:"created_at"`

	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
