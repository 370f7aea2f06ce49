package model

import "time"

// MetadataRecord 元数据本地缓存表, 按网络 (generation hash) 与地址分区
type MetadataRecord struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	GenerationHash string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_metadata_entry" json:"generation_hash"`
	Address        string    `gorm:"type:varchar(40);not null;index" json:"address"`
	CompositeHash  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_metadata_entry" json:"composite_hash"`
	MetadataType   uint8     `gorm:"not null" json:"metadata_type"`
	SourceAddress  string    `gorm:"type:varchar(40);not null" json:"source_address"`
	TargetAddress  string    `gorm:"type:varchar(40);not null" json:"target_address"`
	ScopedKey      string    `gorm:"type:varchar(16);not null" json:"scoped_key"`
	TargetID       string    `gorm:"type:varchar(16)" json:"target_id"`
	Value          string    `gorm:"type:text" json:"value"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (MetadataRecord) TableName() string {
	return "metadata_entries"
}

func (r *MetadataRecord) Entry() MetadataEntry {
	return MetadataEntry{
		CompositeHash: r.CompositeHash,
		MetadataType:  MetadataType(r.MetadataType),
		SourceAddress: r.SourceAddress,
		TargetAddress: r.TargetAddress,
		ScopedKey:     r.ScopedKey,
		TargetID:      r.TargetID,
		Value:         r.Value,
	}
}

// AnnouncementRecord 广播历史, deferred 的 bonded 交易在后台任务完成后更新状态
type AnnouncementRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Hash      string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"hash"`
	TxType    uint16    `gorm:"not null" json:"tx_type"`
	Signer    string    `gorm:"type:varchar(66)" json:"signer"`
	Status    string    `gorm:"type:varchar(20);not null;index" json:"status"` // ANNOUNCED, FAILED, DEFERRED
	Error     string    `gorm:"type:text" json:"error"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (AnnouncementRecord) TableName() string {
	return "announcements"
}

const (
	AnnouncementAnnounced = "ANNOUNCED"
	AnnouncementFailed    = "FAILED"
	AnnouncementDeferred  = "DEFERRED"
)

// OutboxMessage 本地消息表 (Transactional Outbox): 与广播记录同一个事务写入, 由 relay 搬运到 MQ
type OutboxMessage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string    `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string    `gorm:"type:varchar(64)" json:"key"`
	Payload   []byte    `gorm:"type:bytea;not null" json:"payload"`
	Status    string    `gorm:"type:varchar(50);not null;default:'PENDING';index" json:"status"` // PENDING, SENT
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

const (
	OutboxPending = "PENDING"
	OutboxSent    = "SENT"
)

// Contact 地址簿联系人, 地址唯一
type Contact struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Address       string    `gorm:"type:varchar(40);not null;uniqueIndex" json:"address"`
	Name          string    `gorm:"type:varchar(64);not null" json:"name"`
	Phone         string    `gorm:"type:varchar(32)" json:"phone"`
	Email         string    `gorm:"type:varchar(128)" json:"email"`
	Notes         string    `gorm:"type:text" json:"notes"`
	IsBlackListed bool      `gorm:"not null;default:false" json:"is_black_listed"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}

// AllModels 返回所有需要迁移的数据库模型对象
func AllModels() []interface{} {
	return []interface{}{
		&MetadataRecord{},
		&AnnouncementRecord{},
		&OutboxMessage{},
		&Contact{},
	}
}
