// Package account 链上账户状态的读穿透缓存与按地址的确认订阅
package account

import (
	"context"
	"fmt"
	"time"

	"desk-wallet/internal/gateway"
	"desk-wallet/internal/model"
	"desk-wallet/internal/view"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/cache"
	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/monitor"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	viewInfo       = "info"
	viewMultisig   = "multisig"
	viewMosaics    = "mosaics"
	viewNamespaces = "namespaces"
)

var allViews = []string{viewInfo, viewMultisig, viewMosaics, viewNamespaces}

type Service struct {
	reader   gateway.AccountReader
	cache    cache.Cache
	ttl      time.Duration
	currency *model.MosaicInfo
	// currencyAliases 网络货币的命名空间别名, 如 symbol.xym
	currencyAliases []string
	group           singleflight.Group
}

type Option func(*Service)

// WithCurrency 网络货币不一定由钱包账户持有, MosaicTable 与 MosaicAliases 总是包含它
func WithCurrency(info model.MosaicInfo, aliases ...string) Option {
	return func(s *Service) {
		s.currency = &info
		s.currencyAliases = aliases
	}
}

func NewService(reader gateway.AccountReader, c cache.Cache, ttl time.Duration, opts ...Option) *Service {
	s := &Service{reader: reader, cache: c, ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(view, addr string) string {
	return "account:" + view + ":" + addr
}

func normalize(addr string) (string, error) {
	a, err := address.Normalize(addr)
	if err != nil {
		return "", fmt.Errorf("%w: %q", errno.ErrInvalidAddress, addr)
	}
	return a, nil
}

// readThrough 命中缓存直接返回; 未命中时同一个键的并发请求只访问一次网关
func readThrough[T any](ctx context.Context, s *Service, view, addr string, load func(context.Context, string) (T, error)) (T, error) {
	var zero T
	a, err := normalize(addr)
	if err != nil {
		return zero, err
	}
	key := cacheKey(view, a)

	var cached T
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		monitor.ObserveCache(view, true)
		return cached, nil
	}
	monitor.ObserveCache(view, false)

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		val, err := load(ctx, a)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, val, s.ttl); err != nil {
			logger.Warn("account cache set failed", zap.String("key", key), zap.Error(err))
		}
		return val, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (s *Service) Info(ctx context.Context, addr string) (*model.AccountInfo, error) {
	return readThrough(ctx, s, viewInfo, addr, s.reader.AccountInfo)
}

// Balances 网关出错时返回空列表
func (s *Service) Balances(ctx context.Context, addr string) ([]model.Mosaic, error) {
	info, err := s.Info(ctx, addr)
	if err != nil {
		if _, verr := normalize(addr); verr != nil {
			return nil, verr
		}
		logger.Warn("load balances failed", zap.String("address", addr), zap.Error(err))
		return []model.Mosaic{}, nil
	}
	if info.Mosaics == nil {
		return []model.Mosaic{}, nil
	}
	return info.Mosaics, nil
}

func (s *Service) Multisig(ctx context.Context, addr string) (*model.MultisigInfo, error) {
	return readThrough(ctx, s, viewMultisig, addr, s.reader.MultisigInfo)
}

func (s *Service) OwnedMosaics(ctx context.Context, addr string) ([]model.MosaicInfo, error) {
	return readThrough(ctx, s, viewMosaics, addr, s.reader.OwnedMosaics)
}

func (s *Service) OwnedNamespaces(ctx context.Context, addr string) ([]model.NamespaceInfo, error) {
	return readThrough(ctx, s, viewNamespaces, addr, s.reader.OwnedNamespaces)
}

// Invalidate 删除该地址的全部缓存视图
func (s *Service) Invalidate(ctx context.Context, addr string) error {
	a, err := normalize(addr)
	if err != nil {
		return err
	}
	for _, v := range allViews {
		if err := s.cache.Delete(ctx, cacheKey(v, a)); err != nil {
			return err
		}
	}
	return nil
}

// Refresh 失效后立即重新加载账户信息与多签信息
func (s *Service) Refresh(ctx context.Context, addr string) error {
	if err := s.Invalidate(ctx, addr); err != nil {
		return err
	}
	if _, err := s.Info(ctx, addr); err != nil {
		return err
	}
	_, err := s.Multisig(ctx, addr)
	return err
}

// Signers 钱包自身 + 其作为联署人的多签账户
func (s *Service) Signers(ctx context.Context, wallet model.PublicAccount) ([]model.SignerInfo, error) {
	ms, err := s.Multisig(ctx, wallet.Address)
	if err != nil {
		return nil, err
	}

	self := model.SignerInfo{PublicKey: wallet.PublicKey, Address: wallet.Address}
	if ms.IsMultisig() {
		self.RequiredCosignatures = ms.MinApproval
	}
	signers := []model.SignerInfo{self}

	for _, addr := range ms.MultisigAddresses {
		info, err := s.Multisig(ctx, addr)
		if err != nil {
			return nil, err
		}
		acc, err := s.Info(ctx, addr)
		if err != nil {
			return nil, err
		}
		signers = append(signers, model.SignerInfo{
			PublicKey:            acc.PublicKey,
			Address:              acc.Address,
			RequiredCosignatures: info.MinApproval,
			Multisig:             true,
		})
	}
	return signers, nil
}

// MosaicTable 汇总这些地址拥有的马赛克, 供视图换算可分性
func (s *Service) MosaicTable(ctx context.Context, addresses ...string) (view.MosaicTable, error) {
	table := view.MosaicTable{}
	if s.currency != nil {
		table[s.currency.ID] = *s.currency
	}
	for _, addr := range addresses {
		mosaics, err := s.OwnedMosaics(ctx, addr)
		if err != nil {
			return nil, err
		}
		for _, m := range mosaics {
			table[m.ID] = m
		}
	}
	return table, nil
}

// MosaicAliases 命名空间 -> 马赛克: 网络货币别名加上这些地址拥有的马赛克别名
func (s *Service) MosaicAliases(ctx context.Context, addresses ...string) (map[model.NamespaceID]model.MosaicID, error) {
	aliases := map[model.NamespaceID]model.MosaicID{}
	if s.currency != nil {
		for _, name := range s.currencyAliases {
			ns, err := model.NamespaceIDFromFullName(name)
			if err != nil {
				logger.Warn("invalid currency alias", zap.String("alias", name), zap.Error(err))
				continue
			}
			aliases[ns] = s.currency.ID
		}
	}
	for _, addr := range addresses {
		namespaces, err := s.OwnedNamespaces(ctx, addr)
		if err != nil {
			return nil, err
		}
		for _, ns := range namespaces {
			if ns.AliasMosaic != 0 {
				aliases[ns.ID] = ns.AliasMosaic
			}
		}
	}
	return aliases, nil
}
