// Package transaction 交易管道: 聚合与哈希锁、签名编排、广播与确认跟踪。
package transaction

import (
	"context"
	"fmt"
	"time"

	"desk-wallet/internal/diagnostic"
	"desk-wallet/internal/gateway"
	"desk-wallet/internal/model"
	"desk-wallet/pkg/config"
	"desk-wallet/pkg/logger"

	"go.uber.org/zap"
)

// Network 管道使用的网络参数
type Network struct {
	Type                        model.NetworkType
	GenerationHash              string
	EpochAdjustment             int64
	CurrencyMosaicID            model.MosaicID
	LockedFundsPerAggregate     uint64
	LockDuration                uint64
	MaxTransactionsPerAggregate int
	Deadline                    time.Duration
	ConfirmationTimeout         time.Duration
}

func NetworkFromConfig(c config.NetworkConfig) (Network, error) {
	currency, err := model.ParseMosaicID(c.CurrencyMosaicID)
	if err != nil {
		return Network{}, fmt.Errorf("network.currency_mosaic_id: %w", err)
	}
	return Network{
		Type:                        model.NetworkType(c.NetworkType),
		GenerationHash:              c.GenerationHash,
		EpochAdjustment:             c.EpochAdjustment,
		CurrencyMosaicID:            currency,
		LockedFundsPerAggregate:     c.LockedFundsPerAggregate,
		LockDuration:                c.LockDuration,
		MaxTransactionsPerAggregate: c.MaxTransactionsPerAggregate,
		Deadline:                    c.Deadline,
		ConfirmationTimeout:         c.ConfirmationTimeout,
	}, nil
}

// Deferrer 接手超时未确认哈希锁对应的 bonded 交易, 由后台任务在锁确认后广播
type Deferrer interface {
	DeferPartial(ctx context.Context, lockHash string, partial *model.SignedTransaction) error
}

type Service struct {
	gateway   gateway.Gateway
	listeners gateway.ListenerFactory
	network   Network
	sink      diagnostic.Sink
	deferrer  Deferrer
	now       func() time.Time
}

type Option func(*Service)

func WithSink(sink diagnostic.Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithDeferrer 未设置时, 哈希锁等待超时直接判定失败
func WithDeferrer(d Deferrer) Option {
	return func(s *Service) { s.deferrer = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(gw gateway.Gateway, listeners gateway.ListenerFactory, network Network, opts ...Option) *Service {
	s := &Service{
		gateway:   gw,
		listeners: listeners,
		network:   network,
		sink:      diagnostic.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Network() Network { return s.network }

// record 写诊断日志; sink 出错或 panic 都不影响调用方
func (s *Service) record(level diagnostic.Level, msg string, fields map[string]string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("diagnostic sink panicked", zap.Any("panic", r), zap.String("message", msg))
		}
	}()
	if err := s.sink.Write(diagnostic.Record{Level: level, Message: msg, Fields: fields}); err != nil {
		logger.Warn("diagnostic sink write failed", zap.Error(err), zap.String("message", msg))
	}
}
