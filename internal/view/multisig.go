package view

import (
	"fmt"
	"strconv"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/validator"
)

// MaxCosignatories 单个多签账户的联署人上限
const MaxCosignatories = 25

type MultisigModificationForm struct {
	MinApprovalDelta int8     `json:"min_approval_delta" binding:"min=-25,max=25"`
	MinRemovalDelta  int8     `json:"min_removal_delta" binding:"min=-25,max=25"`
	Additions        []string `json:"additions" binding:"max=25,dive,address"`
	Deletions        []string `json:"deletions" binding:"max=25,dive,address"`
	MaxFee           uint64   `json:"max_fee"`
}

type MultisigModificationView struct {
	base
	body *model.MultisigAccountModification
}

func ParseMultisigModification(c Context, form MultisigModificationForm) (*MultisigModificationView, error) {
	if err := validator.Struct(form); err != nil {
		return nil, err
	}
	if form.MinApprovalDelta == 0 && form.MinRemovalDelta == 0 && len(form.Additions) == 0 && len(form.Deletions) == 0 {
		return nil, invalid("modification", fmt.Errorf("nothing to change"))
	}

	additions, err := normalizeAll(form.Additions)
	if err != nil {
		return nil, invalid("additions", err)
	}
	deletions, err := normalizeAll(form.Deletions)
	if err != nil {
		return nil, invalid("deletions", err)
	}
	seen := make(map[string]bool, len(additions))
	for _, a := range additions {
		seen[a] = true
	}
	for _, d := range deletions {
		if seen[d] {
			return nil, invalid("deletions", fmt.Errorf("%s is both added and removed", d))
		}
	}

	body := &model.MultisigAccountModification{
		MinApprovalDelta: form.MinApprovalDelta,
		MinRemovalDelta:  form.MinRemovalDelta,
		AddressAdditions: additions,
		AddressDeletions: deletions,
	}
	return newMultisigModificationView(c, c.header(form.MaxFee, body), body), nil
}

func normalizeAll(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, a := range in {
		addr, err := address.Normalize(a)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", a, err)
		}
		out = append(out, addr)
	}
	return out, nil
}

func newMultisigModificationView(c Context, tx *model.Transaction, body *model.MultisigAccountModification) *MultisigModificationView {
	v := &MultisigModificationView{base: base{tx: tx, values: c.commonValues(tx)}, body: body}
	v.values["minApprovalDelta"] = body.MinApprovalDelta
	v.values["minRemovalDelta"] = body.MinRemovalDelta
	v.values["additions"] = body.AddressAdditions
	v.values["deletions"] = body.AddressDeletions
	return v
}

func (v *MultisigModificationView) ResolveDetailItems() []DetailItem {
	items := []DetailItem{
		{Key: "min_approval_delta", Value: strconv.Itoa(int(v.body.MinApprovalDelta))},
		{Key: "min_removal_delta", Value: strconv.Itoa(int(v.body.MinRemovalDelta))},
	}
	for _, a := range v.body.AddressAdditions {
		items = append(items, DetailItem{Key: "cosignatory_added", Value: a, IsAddress: true})
	}
	for _, d := range v.body.AddressDeletions {
		items = append(items, DetailItem{Key: "cosignatory_removed", Value: d, IsAddress: true})
	}
	return items
}
