package view

import (
	"fmt"
	"strconv"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/safe_random"
	"desk-wallet/pkg/validator"
)

const MaxDivisibility = 6

type MosaicDefinitionForm struct {
	Divisibility  uint8  `json:"divisibility" binding:"max=6"`
	SupplyMutable bool   `json:"supply_mutable"`
	Transferable  bool   `json:"transferable"`
	Restrictable  bool   `json:"restrictable"`
	Permanent     bool   `json:"permanent"`
	Duration      uint64 `json:"duration" binding:"required_unless=Permanent true"`
	// Nonce 为空时随机生成
	Nonce  *uint32 `json:"nonce"`
	MaxFee uint64  `json:"max_fee"`
}

type MosaicDefinitionView struct {
	base
	body *model.MosaicDefinition
}

func ParseMosaicDefinition(c Context, form MosaicDefinitionForm) (*MosaicDefinitionView, error) {
	if err := validator.Struct(form); err != nil {
		return nil, err
	}
	owner, err := address.Normalize(c.CurrentAddress)
	if err != nil {
		return nil, invalid("owner", err)
	}

	var nonce uint32
	if form.Nonce != nil {
		nonce = *form.Nonce
	} else if nonce, err = safe_random.GenerateNonce(); err != nil {
		return nil, err
	}

	duration := form.Duration
	if form.Permanent {
		duration = 0
	}
	body := &model.MosaicDefinition{
		Nonce:    nonce,
		MosaicID: model.MosaicIDFromNonce(nonce, owner),
		Flags: model.MosaicFlags{
			SupplyMutable: form.SupplyMutable,
			Transferable:  form.Transferable,
			Restrictable:  form.Restrictable,
		},
		Divisibility: form.Divisibility,
		Duration:     duration,
	}
	return newMosaicDefinitionView(c, c.header(form.MaxFee, body), body), nil
}

func newMosaicDefinitionView(c Context, tx *model.Transaction, body *model.MosaicDefinition) *MosaicDefinitionView {
	v := &MosaicDefinitionView{base: base{tx: tx, values: c.commonValues(tx)}, body: body}
	v.values["mosaicId"] = body.MosaicID.Hex()
	v.values["nonce"] = body.Nonce
	v.values["divisibility"] = body.Divisibility
	v.values["supplyMutable"] = body.Flags.SupplyMutable
	v.values["transferable"] = body.Flags.Transferable
	v.values["restrictable"] = body.Flags.Restrictable
	v.values["permanent"] = body.Duration == 0
	v.values["duration"] = body.Duration
	return v
}

func (v *MosaicDefinitionView) ResolveDetailItems() []DetailItem {
	duration := "unlimited"
	if v.body.Duration > 0 {
		duration = strconv.FormatUint(v.body.Duration, 10)
	}
	return []DetailItem{
		{Key: "mosaic_id", Value: v.body.MosaicID.Hex()},
		{Key: "divisibility", Value: strconv.Itoa(int(v.body.Divisibility))},
		{Key: "duration", Value: duration},
		{Key: "supply_mutable", Value: boolString(v.body.Flags.SupplyMutable)},
		{Key: "transferable", Value: boolString(v.body.Flags.Transferable)},
		{Key: "restrictable", Value: boolString(v.body.Flags.Restrictable)},
	}
}

type MosaicSupplyChangeForm struct {
	MosaicID string `json:"mosaic_id" binding:"required,hexadecimal,max=16"`
	Action   string `json:"action" binding:"required,oneof=increase decrease"`
	// Delta 相对数量
	Delta  string `json:"delta" binding:"required,amount"`
	MaxFee uint64 `json:"max_fee"`
}

type MosaicSupplyChangeView struct {
	base
	ctx  Context
	body *model.MosaicSupplyChange
}

func ParseMosaicSupplyChange(c Context, form MosaicSupplyChangeForm) (*MosaicSupplyChangeView, error) {
	if err := validator.Struct(form); err != nil {
		return nil, err
	}
	id, err := model.ParseMosaicID(form.MosaicID)
	if err != nil {
		return nil, invalid("mosaic_id", err)
	}
	delta, err := ToAbsolute(form.Delta, c.divisibility(id))
	if err != nil {
		return nil, invalid("delta", err)
	}
	if delta == 0 {
		return nil, invalid("delta", fmt.Errorf("must be positive"))
	}

	action := model.SupplyIncrease
	if form.Action == "decrease" {
		action = model.SupplyDecrease
	}
	body := &model.MosaicSupplyChange{MosaicID: id, Action: action, Delta: delta}
	return newMosaicSupplyChangeView(c, c.header(form.MaxFee, body), body), nil
}

func newMosaicSupplyChangeView(c Context, tx *model.Transaction, body *model.MosaicSupplyChange) *MosaicSupplyChangeView {
	v := &MosaicSupplyChangeView{base: base{tx: tx, values: c.commonValues(tx)}, ctx: c, body: body}
	v.values["mosaicId"] = body.MosaicID.Hex()
	v.values["action"] = supplyActionName(body.Action)
	v.values["delta"] = body.Delta
	return v
}

func (v *MosaicSupplyChangeView) ResolveDetailItems() []DetailItem {
	return []DetailItem{
		{Key: "mosaic_id", Value: v.body.MosaicID.Hex()},
		{Key: "direction", Value: supplyActionName(v.body.Action)},
		{Key: "delta", Value: ToRelative(v.body.Delta, v.ctx.divisibility(v.body.MosaicID))},
	}
}

func supplyActionName(a model.SupplyAction) string {
	if a == model.SupplyIncrease {
		return "increase"
	}
	return "decrease"
}
