package view

import (
	"fmt"
	"strings"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/validator"
)

type MosaicAttachment struct {
	// MosaicID Hex ID 或 "@symbol.xym" 别名
	MosaicID string `json:"mosaic_id" binding:"required"`
	Amount   string `json:"amount" binding:"required,amount"`
}

type TransferForm struct {
	Recipient string             `json:"recipient" binding:"required,recipient"`
	Mosaics   []MosaicAttachment `json:"mosaics" binding:"dive"`
	Message   string             `json:"message"`
	Encrypted bool               `json:"encrypted"`
	MaxFee    uint64             `json:"max_fee"`
}

type TransferView struct {
	base
	ctx  Context
	body *model.Transfer
}

// ParseTransfer 校验并构造转账交易; 非法标识返回 nil 视图和校验错误
func ParseTransfer(c Context, form TransferForm) (*TransferView, error) {
	if err := validator.Struct(form); err != nil {
		return nil, err
	}

	recipient := strings.TrimSpace(form.Recipient)
	if strings.HasPrefix(recipient, "@") {
		ns, err := model.NamespaceIDFromFullName(recipient[1:])
		if err != nil {
			return nil, invalid("recipient", err)
		}
		recipient = "@" + ns.Hex()
	} else {
		addr, err := address.Normalize(recipient)
		if err != nil {
			return nil, invalid("recipient", err)
		}
		recipient = addr
	}

	if c.MaxMessageSize > 0 && len(form.Message) > c.MaxMessageSize {
		return nil, invalid("message", fmt.Errorf("longer than %d bytes", c.MaxMessageSize))
	}

	mosaics := make([]model.Mosaic, 0, len(form.Mosaics))
	seen := make(map[model.MosaicID]bool, len(form.Mosaics))
	for i, att := range form.Mosaics {
		id, err := c.resolveMosaicID(att.MosaicID)
		if err != nil {
			return nil, invalid(fmt.Sprintf("mosaics[%d].mosaic_id", i), err)
		}
		if seen[id] {
			return nil, invalid(fmt.Sprintf("mosaics[%d].mosaic_id", i), fmt.Errorf("duplicate mosaic %s", id.Hex()))
		}
		seen[id] = true
		amount, err := ToAbsolute(att.Amount, c.divisibility(id))
		if err != nil {
			return nil, invalid(fmt.Sprintf("mosaics[%d].amount", i), err)
		}
		mosaics = append(mosaics, model.Mosaic{ID: id, Amount: amount})
	}

	body := &model.Transfer{Recipient: recipient, Mosaics: mosaics, Message: form.Message, Encrypted: form.Encrypted}
	return newTransferView(c, c.header(form.MaxFee, body), body), nil
}

func newTransferView(c Context, tx *model.Transaction, body *model.Transfer) *TransferView {
	v := &TransferView{base: base{tx: tx, values: c.commonValues(tx)}, ctx: c, body: body}
	v.values["recipient"] = body.Recipient
	v.values["mosaics"] = body.Mosaics
	v.values["message"] = body.Message
	v.values["encrypted"] = body.Encrypted
	v.values["isIncoming"] = c.CurrentAddress != "" && body.Recipient == c.CurrentAddress
	return v
}

func (v *TransferView) ResolveDetailItems() []DetailItem {
	items := []DetailItem{{Key: "recipient", Value: v.body.Recipient, IsAddress: true}}
	for _, m := range v.body.Mosaics {
		items = append(items, DetailItem{Key: "mosaics", Value: v.ctx.formatMosaic(m), IsMosaic: true})
	}
	message := v.body.Message
	if v.body.Encrypted {
		message = "(encrypted)"
	}
	return append(items, DetailItem{Key: "message", Value: message})
}
