package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"github.com/farmchat/backend-go/internal/logger"
	"go.uber.org/zap"
)

// ChatEventHandler 对话事件处理函数
type ChatEventHandler func(ctx context.Context, event *ChatEvent) error

// Consumer 对话事件消费者，用于统计与审计
type Consumer struct {
	consumer sarama.ConsumerGroup
	groupID  string
	topics   []string
	handler  ChatEventHandler
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

var globalConsumer *Consumer

// InitConsumer 初始化消费者并开始消费
func InitConsumer(brokers []string, groupID, topic string, handler ChatEventHandler) error {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Return.Errors = true
	config.Version = sarama.V2_6_0_0

	consumerGroup, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return fmt.Errorf("创建Kafka消费者组失败: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	globalConsumer = &Consumer{
		consumer: consumerGroup,
		groupID:  groupID,
		topics:   []string{topic},
		handler:  handler,
		ctx:      ctx,
		cancel:   cancel,
	}

	logger.Info("Kafka消费者初始化成功",
		zap.Strings("brokers", brokers),
		zap.String("group_id", groupID),
		zap.String("topic", topic))

	go globalConsumer.start()
	return nil
}

// GetConsumer 获取全局消费者实例
func GetConsumer() *Consumer {
	return globalConsumer
}

// start 消费循环，rebalance后自动重入
func (c *Consumer) start() {
	if c == nil || c.consumer == nil {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				logger.Info("Kafka消费者停止")
				return
			default:
				h := &chatEventGroupHandler{handler: c.handler}
				if err := c.consumer.Consume(c.ctx, c.topics, h); err != nil {
					logger.Error("Kafka消费失败", zap.Error(err))
				}
			}
		}
	}()

	// 错误通道单独排空
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			case err, ok := <-c.consumer.Errors():
				if !ok {
					return
				}
				logger.Error("Kafka消费者错误", zap.Error(err))
			}
		}
	}()
}

// Close 停止消费者并等待退出
func (c *Consumer) Close() error {
	if c == nil {
		return nil
	}
	c.cancel()
	c.wg.Wait()
	return c.consumer.Close()
}

// chatEventGroupHandler sarama消费者组回调
type chatEventGroupHandler struct {
	handler ChatEventHandler
}

func (h *chatEventGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *chatEventGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *chatEventGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		var event ChatEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Warn("解析对话事件失败，跳过",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			session.MarkMessage(msg, "")
			continue
		}

		if h.handler != nil {
			if err := h.handler(session.Context(), &event); err != nil {
				logger.Error("处理对话事件失败",
					zap.String("conversation_id", event.ConversationID),
					zap.Error(err))
			}
		}
		session.MarkMessage(msg, "")
	}
	return nil
}
