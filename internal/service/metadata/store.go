package metadata

import (
	"context"

	"desk-wallet/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store 元数据本地缓存, 按 (generation hash, 地址) 分区
type Store interface {
	List(ctx context.Context, generationHash, addr string) ([]model.MetadataEntry, error)
	Save(ctx context.Context, generationHash, addr string, entries []model.MetadataEntry) error
}

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) List(ctx context.Context, generationHash, addr string) ([]model.MetadataEntry, error) {
	var records []model.MetadataRecord
	err := s.db.WithContext(ctx).
		Where("generation_hash = ? AND address = ?", generationHash, addr).
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	entries := make([]model.MetadataEntry, len(records))
	for i := range records {
		entries[i] = records[i].Entry()
	}
	return entries, nil
}

// Save 以 composite hash 去重, 已存在的条目更新 value
func (s *GormStore) Save(ctx context.Context, generationHash, addr string, entries []model.MetadataEntry) error {
	if len(entries) == 0 {
		return nil
	}
	records := make([]model.MetadataRecord, len(entries))
	for i, e := range entries {
		records[i] = model.MetadataRecord{
			GenerationHash: generationHash,
			Address:        addr,
			CompositeHash:  e.CompositeHash,
			MetadataType:   uint8(e.MetadataType),
			SourceAddress:  e.SourceAddress,
			TargetAddress:  e.TargetAddress,
			ScopedKey:      e.ScopedKey,
			TargetID:       e.TargetID,
			Value:          e.Value,
		}
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "generation_hash"}, {Name: "composite_hash"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&records).Error
}
