// Package metadata 元数据读穿透缓存与元数据交易构造
package metadata

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"desk-wallet/internal/gateway"
	"desk-wallet/internal/model"
	"desk-wallet/internal/service/transaction"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/crypto_util"
	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/safe_random"
	"desk-wallet/pkg/validator"

	"go.uber.org/zap"
)

var timeNow = time.Now

type Service struct {
	reader  gateway.AccountReader
	store   Store
	network transaction.Network
}

func NewService(reader gateway.AccountReader, store Store, network transaction.Network) *Service {
	return &Service{reader: reader, store: store, network: network}
}

// List 地址作为目标或来源的全部元数据, 以 composite hash 去重。
// 网关不可用时返回本地缓存。
func (s *Service) List(ctx context.Context, addr string) ([]model.MetadataEntry, error) {
	a, err := address.Normalize(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errno.ErrInvalidAddress, addr)
	}

	stored, err := s.store.List(ctx, s.network.GenerationHash, a)
	if err != nil {
		logger.Warn("load stored metadata failed", zap.String("address", a), zap.Error(err))
	}

	fresh, err := s.search(ctx, a)
	if err != nil {
		logger.Warn("search metadata failed, using stored entries", zap.String("address", a), zap.Error(err))
		return stored, nil
	}
	if err := s.store.Save(ctx, s.network.GenerationHash, a, fresh); err != nil {
		logger.Warn("save metadata failed", zap.String("address", a), zap.Error(err))
	}
	return fresh, nil
}

func (s *Service) search(ctx context.Context, addr string) ([]model.MetadataEntry, error) {
	asTarget, err := s.reader.SearchMetadata(ctx, gateway.MetadataCriteria{TargetAddress: addr})
	if err != nil {
		return nil, err
	}
	asSource, err := s.reader.SearchMetadata(ctx, gateway.MetadataCriteria{SourceAddress: addr})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(asTarget)+len(asSource))
	out := make([]model.MetadataEntry, 0, len(asTarget)+len(asSource))
	for _, e := range append(asTarget, asSource...) {
		if seen[e.CompositeHash] {
			continue
		}
		seen[e.CompositeHash] = true
		out = append(out, e)
	}
	return out, nil
}

// ByTargetID 过滤出指定马赛克或命名空间的元数据
func ByTargetID(entries []model.MetadataEntry, targetID string) []model.MetadataEntry {
	out := []model.MetadataEntry{}
	for _, e := range entries {
		if strings.EqualFold(e.TargetID, targetID) {
			out = append(out, e)
		}
	}
	return out
}

// Form 元数据交易表单; ScopedKey 为空时随机生成
type Form struct {
	MetadataType  model.MetadataType `json:"metadata_type" binding:"lte=2"`
	SourceAddress string             `json:"source_address" binding:"required,address"`
	TargetAddress string             `json:"target_address" binding:"required,address"`
	ScopedKey     string             `json:"scoped_key" binding:"omitempty,hexadecimal,max=16"`
	TargetID      string             `json:"target_id" binding:"omitempty,hexadecimal,max=16"`
	Value         string             `json:"value" binding:"max=1024"`
	MaxFee        uint64             `json:"max_fee"`
}

// NewScopedKey 随机 8 字节经 Blake3 压缩为 uint64
func NewScopedKey() (uint64, error) {
	seed, err := safe_random.GenerateRandomBytes(8)
	if err != nil {
		return 0, err
	}
	return crypto_util.Blake3Uint64(seed), nil
}

// NewMetadataTransaction 已存在同键元数据时, Value 为新旧值的异或, ValueSizeDelta 为长度差
func (s *Service) NewMetadataTransaction(ctx context.Context, form Form) (*model.Transaction, error) {
	if err := validator.Struct(form); err != nil {
		return nil, err
	}
	target, err := address.Normalize(form.TargetAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: target %q", errno.ErrInvalidAddress, form.TargetAddress)
	}
	source, err := address.Normalize(form.SourceAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: source %q", errno.ErrInvalidAddress, form.SourceAddress)
	}

	var scopedKey uint64
	if form.ScopedKey != "" {
		scopedKey, err = strconv.ParseUint(form.ScopedKey, 16, 64)
	} else {
		scopedKey, err = NewScopedKey()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scoped key: %v", errno.ErrValidation, err)
	}

	var targetID uint64
	switch form.MetadataType {
	case model.AccountMetadata:
	case model.MosaicMetadata, model.NamespaceMetadata:
		if targetID, err = strconv.ParseUint(form.TargetID, 16, 64); err != nil {
			return nil, fmt.Errorf("%w: target id %q", errno.ErrValidation, form.TargetID)
		}
	default:
		return nil, fmt.Errorf("%w: metadata type %d", errno.ErrValidation, form.MetadataType)
	}

	keyHex := fmt.Sprintf("%016X", scopedKey)
	criteria := gateway.MetadataCriteria{TargetAddress: target, SourceAddress: source, ScopedKey: keyHex}
	if form.MetadataType != model.AccountMetadata {
		criteria.TargetID = fmt.Sprintf("%016X", targetID)
	}
	existing, err := s.reader.SearchMetadata(ctx, criteria)
	if err != nil {
		return nil, err
	}

	value := []byte(form.Value)
	delta := len(value)
	for _, e := range existing {
		if e.MetadataType != form.MetadataType {
			continue
		}
		old := []byte(e.Value)
		delta = len(value) - len(old)
		value = xor(old, value)
		break
	}

	return &model.Transaction{
		NetworkType: s.network.Type,
		Version:     model.Version,
		Deadline:    model.NewDeadline(timeNow(), s.network.EpochAdjustment, s.network.Deadline),
		MaxFee:      form.MaxFee,
		Body: &model.Metadata{
			MetadataType:   form.MetadataType,
			TargetAddress:  target,
			ScopedKey:      scopedKey,
			TargetID:       targetID,
			ValueSizeDelta: int16(delta),
			Value:          value,
		},
	}, nil
}

// xor 结果长度取两者较长者, 短的一方按 0 补齐
func xor(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		var x, y byte
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		out[i] = x ^ y
	}
	return out
}
