package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/farmchat/backend-go/internal/logger"
	"go.uber.org/zap"
)

// Producer Kafka生产者
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// ChatEvent 对话审计事件
type ChatEvent struct {
	ConversationID string     `json:"conversation_id"`
	UserID         uint       `json:"user_id"`
	QueryType      string     `json:"query_type"`
	Language       string     `json:"language"`
	ToolsUsed      []string   `json:"tools_used"`
	Message        EventData  `json:"message"`
	Usage          *UsageInfo `json:"usage,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// EventData 事件消息数据
type EventData struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UsageInfo Token使用信息
type UsageInfo struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

var globalProducer *Producer

// InitProducer 初始化Kafka生产者
func InitProducer(brokers []string, topic string) error {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return fmt.Errorf("创建Kafka生产者失败: %w", err)
	}

	globalProducer = &Producer{
		producer: producer,
		topic:    topic,
	}

	logger.Info("Kafka生产者初始化成功", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return nil
}

// GetProducer 获取全局生产者实例
func GetProducer() *Producer {
	return globalProducer
}

// SendEvent 发送事件到Kafka
func (p *Producer) SendEvent(event *ChatEvent) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("Kafka生产者未初始化")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	kafkaMsg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d-%s", event.UserID, event.ConversationID)),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("user_id"),
				Value: []byte(fmt.Sprintf("%d", event.UserID)),
			},
			{
				Key:   []byte("query_type"),
				Value: []byte(event.QueryType),
			},
		},
	}

	partition, offset, err := p.producer.SendMessage(kafkaMsg)
	if err != nil {
		logger.Error("发送Kafka消息失败", zap.Error(err))
		return fmt.Errorf("发送消息失败: %w", err)
	}

	logger.Debug("Kafka消息发送成功",
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		zap.String("conversation_id", event.ConversationID))

	return nil
}

// Close 关闭生产者
func (p *Producer) Close() error {
	if p != nil && p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// SendChatEvent 发送对话审计事件（便捷方法）
func SendChatEvent(conversationID string, userID uint, role, content, queryType, language string, toolsUsed []string, usage *UsageInfo) error {
	producer := GetProducer()
	if producer == nil {
		// Kafka未配置时静默跳过，不影响主流程
		logger.Warn("Kafka生产者未初始化，跳过消息发送")
		return nil
	}

	event := &ChatEvent{
		ConversationID: conversationID,
		UserID:         userID,
		QueryType:      queryType,
		Language:       language,
		ToolsUsed:      toolsUsed,
		Message: EventData{
			Role:      role,
			Content:   content,
			Timestamp: time.Now(),
		},
		Usage:     usage,
		Timestamp: time.Now(),
	}

	return producer.SendEvent(event)
}
