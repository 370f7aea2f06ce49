// Package gateway 远程节点网关: 广播、链上状态查询与确认推送。
package gateway

import (
	"context"

	"desk-wallet/internal/model"
)

// Gateway 交易广播与状态查询
type Gateway interface {
	Announce(ctx context.Context, tx *model.SignedTransaction) error
	AnnounceAggregateBonded(ctx context.Context, tx *model.SignedTransaction) error
	AnnounceCosignature(ctx context.Context, c *model.CosignatureSignedTransaction) error
	TransactionStatus(ctx context.Context, hash string) (*model.TransactionStatus, error)
}

// AccountReader 读链上账户相关状态, 结果由 account 服务缓存
type AccountReader interface {
	AccountInfo(ctx context.Context, address string) (*model.AccountInfo, error)
	MultisigInfo(ctx context.Context, address string) (*model.MultisigInfo, error)
	OwnedMosaics(ctx context.Context, address string) ([]model.MosaicInfo, error)
	OwnedNamespaces(ctx context.Context, address string) ([]model.NamespaceInfo, error)
	SearchMetadata(ctx context.Context, criteria MetadataCriteria) ([]model.MetadataEntry, error)
}

type MetadataCriteria struct {
	TargetAddress string `json:"targetAddress,omitempty"`
	SourceAddress string `json:"sourceAddress,omitempty"`
	ScopedKey     string `json:"scopedMetadataKey,omitempty"`
	TargetID      string `json:"targetId,omitempty"`
}

// Subscription 一个地址上的确认事件流
type Subscription interface {
	Events() <-chan model.ConfirmationEvent
	// Err 监听出错时收到一个错误; Unsubscribe 后关闭
	Err() <-chan error
	Unsubscribe()
}

// Listener 推送连接; 先 Open, 再按地址订阅, 用完 Close
type Listener interface {
	Open(ctx context.Context) error
	Confirmed(ctx context.Context, address string) (Subscription, error)
	Close() error
}

// ListenerFactory 每次 bonded 广播都使用新的监听连接
type ListenerFactory func() Listener
