package service

import (
	"context"
	"time"

	"desk-wallet/internal/model"
	"desk-wallet/internal/service/mq"
	"desk-wallet/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RelayService 负责将本地消息表的消息搬运到 MQ
type RelayService struct {
	db       *gorm.DB
	producer mq.Producer
	interval time.Duration
	batch    int
}

func NewRelayService(db *gorm.DB, producer mq.Producer) *RelayService {
	return &RelayService{
		db:       db,
		producer: producer,
		interval: 500 * time.Millisecond,
		batch:    50,
	}
}

// Start 阻塞直到 ctx 结束
func (s *RelayService) Start(ctx context.Context) {
	logger.Info("relay service started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("relay service stopped")
			return
		case <-ticker.C:
			s.processPendingMessages(ctx)
		}
	}
}

// processPendingMessages 返回成功投递的条数
func (s *RelayService) processPendingMessages(ctx context.Context) int {
	var messages []model.OutboxMessage
	err := s.db.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("id ASC").
		Limit(s.batch).
		Find(&messages).Error
	if err != nil {
		logger.Error("relay query outbox failed", zap.Error(err))
		return 0
	}

	sent := 0
	for _, msg := range messages {
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			logger.Warn("relay publish failed", zap.Uint64("id", msg.ID), zap.Error(err))
			// 保持顺序: 同一批后面的消息下次再发
			break
		}

		// 发送成功后才更新状态 => 至少一次投递, 消费方按 Key 幂等
		if err := s.db.WithContext(ctx).Model(&msg).Update("status", model.OutboxSent).Error; err != nil {
			logger.Error("relay update outbox failed", zap.Uint64("id", msg.ID), zap.Error(err))
			break
		}
		sent++
	}
	if sent > 0 {
		logger.Debug("relay delivered outbox messages", zap.Int("count", sent))
	}
	return sent
}
