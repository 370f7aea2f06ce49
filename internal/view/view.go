// Package view 把表单数据转换为交易 (parse), 把交易还原为可展示的值与明细 (use)。
package view

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/errno"

	"github.com/shopspring/decimal"
)

// View 一笔交易的展示模型
type View interface {
	Transaction() *model.Transaction
	// Values 规范化后的字段表, parse 与 use 得到的键一致
	Values() Values
	// ResolveDetailItems 有序的展示明细, 对同一交易结果确定
	ResolveDetailItems() []DetailItem
}

type Values map[string]interface{}

type DetailItem struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	IsMosaic  bool   `json:"isMosaic,omitempty"`
	IsAddress bool   `json:"isAddress,omitempty"`
}

// MosaicTable 马赛克 ID -> 链上信息, 用于换算可分性
type MosaicTable map[model.MosaicID]model.MosaicInfo

// Context 构造与展示交易时需要的网络与账户状态快照
type Context struct {
	NetworkType     model.NetworkType
	EpochAdjustment int64
	DeadlineWindow  time.Duration
	DefaultMaxFee   uint64
	MaxMessageSize  int

	Mosaics MosaicTable
	// MosaicAliases 命名空间 -> 其别名指向的马赛克
	MosaicAliases map[model.NamespaceID]model.MosaicID
	// CurrentAddress 当前钱包地址, 用于判断转入/转出与派生马赛克 ID
	CurrentAddress string
	// FeeMultipliers 区块高度 -> 手续费乘数
	FeeMultipliers map[uint64]uint32

	Now func() time.Time
}

func (c Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// header 新交易的公共头, maxFee 为 0 时用默认手续费
func (c Context) header(maxFee uint64, body model.Body) *model.Transaction {
	if maxFee == 0 {
		maxFee = c.DefaultMaxFee
	}
	return &model.Transaction{
		NetworkType: c.NetworkType,
		Version:     model.Version,
		Deadline:    model.NewDeadline(c.now(), c.EpochAdjustment, c.DeadlineWindow),
		MaxFee:      maxFee,
		Body:        body,
	}
}

// divisibility 未知马赛克按 0 处理, 展示原始数量
func (c Context) divisibility(id model.MosaicID) uint8 {
	if info, ok := c.Mosaics[id]; ok {
		return info.Divisibility
	}
	return 0
}

type base struct {
	tx     *model.Transaction
	values Values
}

func (b *base) Transaction() *model.Transaction { return b.tx }
func (b *base) Values() Values                  { return b.values }

// commonValues 所有交易共有的展示字段
func (c Context) commonValues(tx *model.Transaction) Values {
	v := Values{
		"type":         tx.Type().String(),
		"maxFee":       tx.MaxFee,
		"deadline":     tx.Deadline,
		"hasBlockInfo": tx.Info != nil && tx.Info.Height > 0,
	}
	if tx.Info != nil {
		v["hash"] = tx.Info.Hash
		v["height"] = tx.Info.Height
		if mult, ok := c.FeeMultipliers[tx.Info.Height]; ok {
			v["effectiveFee"] = uint64(model.Size(tx)) * uint64(mult)
		}
	}
	return v
}

func invalid(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", errno.ErrValidation, field, err)
}

// ToAbsolute 相对数量 * 10^divisibility, 必须为非负整数且不超过 uint64
func ToAbsolute(relative string, divisibility uint8) (uint64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(relative))
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", relative)
	}
	abs := d.Shift(int32(divisibility))
	if !abs.Equal(abs.Truncate(0)) {
		return 0, fmt.Errorf("amount %s exceeds divisibility %d", relative, divisibility)
	}
	n := abs.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("amount %s out of range", relative)
	}
	return n.Uint64(), nil
}

// ToRelative 绝对数量按可分性换算为展示字符串
func ToRelative(absolute uint64, divisibility uint8) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(absolute), -int32(divisibility))
	return d.StringFixed(int32(divisibility))
}

func (c Context) formatMosaic(m model.Mosaic) string {
	return ToRelative(m.Amount, c.divisibility(m.ID)) + " " + m.ID.Hex()
}

// resolveMosaicID 支持 Hex ID 或 "@命名空间" 别名; 别名必须能解析到真实马赛克,
// 否则无法确定可分性
func (c Context) resolveMosaicID(s string) (model.MosaicID, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "@") {
		ns, err := model.NamespaceIDFromFullName(s[1:])
		if err != nil {
			return 0, err
		}
		id, ok := c.MosaicAliases[ns]
		if !ok {
			return 0, fmt.Errorf("alias %s is not linked to a known mosaic", s)
		}
		return id, nil
	}
	return model.ParseMosaicID(s)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
