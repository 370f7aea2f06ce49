package service

import (
	"context"
	"encoding/json"
	"time"

	"desk-wallet/internal/event"
	"desk-wallet/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotifyService 把广播结果写入广播历史, 并在同一事务中写本地消息表, 由 RelayService 投递到 MQ
type NotifyService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewNotifyService(db *gorm.DB) *NotifyService {
	return &NotifyService{db: db, now: time.Now}
}

func announcementStatus(r model.BroadcastResult) string {
	switch {
	case r.Deferred:
		return model.AnnouncementDeferred
	case r.Success:
		return model.AnnouncementAnnounced
	default:
		return model.AnnouncementFailed
	}
}

// NewAnnouncedEvent 结果到事件的映射
func NewAnnouncedEvent(signer string, r model.BroadcastResult, at time.Time) event.TransactionAnnounced {
	return event.TransactionAnnounced{
		Hash:     r.Hash,
		Type:     uint16(r.Type),
		TypeName: r.Type.String(),
		Signer:   signer,
		Success:  r.Success,
		Error:    r.Error,
		Deferred: r.Deferred,
		At:       at,
	}
}

// Publish 同一笔交易再次上报 (例如 deferred 之后完成) 时更新其状态
func (s *NotifyService) Publish(ctx context.Context, signer string, results []model.BroadcastResult) error {
	if len(results) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range results {
			record := model.AnnouncementRecord{
				Hash:   r.Hash,
				TxType: uint16(r.Type),
				Signer: signer,
				Status: announcementStatus(r),
				Error:  r.Error,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "hash"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "error", "updated_at"}),
			}).Create(&record).Error
			if err != nil {
				return err
			}

			payload, err := json.Marshal(NewAnnouncedEvent(signer, r, s.now()))
			if err != nil {
				return err
			}
			outbox := model.OutboxMessage{
				Topic:   event.TopicAnnounce,
				Key:     r.Hash,
				Payload: payload,
				Status:  model.OutboxPending,
			}
			if err := tx.Create(&outbox).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// History 最近的广播记录
func (s *NotifyService) History(ctx context.Context, limit int) ([]model.AnnouncementRecord, error) {
	var records []model.AnnouncementRecord
	err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&records).Error
	return records, err
}
