package view

import (
	"strconv"

	"desk-wallet/internal/model"
)

// UnknownView 钱包不提供编辑界面的交易, 只透传类型与少量摘要
type UnknownView struct {
	base
	items []DetailItem
}

func newUnknownView(c Context, tx *model.Transaction, items ...DetailItem) *UnknownView {
	v := &UnknownView{base: base{tx: tx, values: c.commonValues(tx)}}
	v.items = append([]DetailItem{{Key: "transaction_type", Value: tx.Type().String()}}, items...)
	return v
}

func (v *UnknownView) ResolveDetailItems() []DetailItem {
	return append([]DetailItem(nil), v.items...)
}

func aggregateItems(body *model.Aggregate) []DetailItem {
	return []DetailItem{
		{Key: "inner_transactions", Value: strconv.Itoa(len(body.InnerTransactions))},
		{Key: "cosignatures", Value: strconv.Itoa(len(body.Cosignatures))},
	}
}

func metadataItems(body *model.Metadata) []DetailItem {
	items := []DetailItem{
		{Key: "target_address", Value: body.TargetAddress, IsAddress: true},
		{Key: "scoped_key", Value: model.MosaicID(body.ScopedKey).Hex()},
	}
	if body.MetadataType != model.AccountMetadata {
		items = append(items, DetailItem{Key: "target_id", Value: model.MosaicID(body.TargetID).Hex()})
	}
	return append(items, DetailItem{Key: "value_size_delta", Value: strconv.Itoa(int(body.ValueSizeDelta))})
}
