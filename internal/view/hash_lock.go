package view

import (
	"strconv"
	"strings"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/validator"
)

type HashLockForm struct {
	MosaicID string `json:"mosaic_id" binding:"required"`
	Amount   string `json:"amount" binding:"required,amount"`
	Duration uint64 `json:"duration" binding:"required"`
	// Hash 被锁定的已签名聚合交易哈希
	Hash   string `json:"hash" binding:"required,len=64,hexadecimal"`
	MaxFee uint64 `json:"max_fee"`
}

type HashLockView struct {
	base
	ctx  Context
	body *model.HashLock
}

func ParseHashLock(c Context, form HashLockForm) (*HashLockView, error) {
	if err := validator.Struct(form); err != nil {
		return nil, err
	}
	id, err := c.resolveMosaicID(form.MosaicID)
	if err != nil {
		return nil, invalid("mosaic_id", err)
	}
	amount, err := ToAbsolute(form.Amount, c.divisibility(id))
	if err != nil {
		return nil, invalid("amount", err)
	}
	body := &model.HashLock{
		Mosaic:   model.Mosaic{ID: id, Amount: amount},
		Duration: form.Duration,
		Hash:     strings.ToUpper(form.Hash),
	}
	return newHashLockView(c, c.header(form.MaxFee, body), body), nil
}

func newHashLockView(c Context, tx *model.Transaction, body *model.HashLock) *HashLockView {
	v := &HashLockView{base: base{tx: tx, values: c.commonValues(tx)}, ctx: c, body: body}
	v.values["mosaic"] = body.Mosaic
	v.values["duration"] = body.Duration
	v.values["aggregateHash"] = body.Hash
	return v
}

func (v *HashLockView) ResolveDetailItems() []DetailItem {
	return []DetailItem{
		{Key: "locked_mosaic", Value: v.ctx.formatMosaic(v.body.Mosaic), IsMosaic: true},
		{Key: "duration", Value: strconv.FormatUint(v.body.Duration, 10)},
		{Key: "inner_transaction_hash", Value: v.body.Hash},
	}
}
