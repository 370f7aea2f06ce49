package view

import (
	"fmt"
	"strconv"
	"strings"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/validator"
)

type NamespaceRegistrationForm struct {
	// Name 根命名空间为单段名称, 子命名空间为叶子名称
	Name             string `json:"name" binding:"required,max=64"`
	RegistrationType string `json:"registration_type" binding:"required,oneof=root sub"`
	ParentName       string `json:"parent_name" binding:"required_if=RegistrationType sub"`
	Duration         uint64 `json:"duration" binding:"required_if=RegistrationType root"`
	MaxFee           uint64 `json:"max_fee"`
}

type NamespaceRegistrationView struct {
	base
	body *model.NamespaceRegistration
}

func ParseNamespaceRegistration(c Context, form NamespaceRegistrationForm) (*NamespaceRegistrationView, error) {
	if err := validator.Struct(form); err != nil {
		return nil, err
	}
	if strings.Contains(form.Name, ".") {
		return nil, invalid("name", fmt.Errorf("name must be a single part"))
	}

	body := &model.NamespaceRegistration{Name: form.Name}
	if form.RegistrationType == "sub" {
		parent, err := model.NamespaceIDFromFullName(form.ParentName)
		if err != nil {
			return nil, invalid("parent_name", err)
		}
		full := form.ParentName + "." + form.Name
		if _, err := model.NamespacePath(full); err != nil {
			return nil, invalid("name", err)
		}
		body.RegistrationType = model.SubNamespace
		body.ParentID = parent
		body.NamespaceID = model.NamespaceIDFromName(form.Name, parent)
	} else {
		if _, err := model.NamespacePath(form.Name); err != nil {
			return nil, invalid("name", err)
		}
		body.RegistrationType = model.RootNamespace
		body.Duration = form.Duration
		body.NamespaceID = model.NamespaceIDFromName(form.Name, 0)
	}
	return newNamespaceRegistrationView(c, c.header(form.MaxFee, body), body), nil
}

func newNamespaceRegistrationView(c Context, tx *model.Transaction, body *model.NamespaceRegistration) *NamespaceRegistrationView {
	v := &NamespaceRegistrationView{base: base{tx: tx, values: c.commonValues(tx)}, body: body}
	v.values["name"] = body.Name
	v.values["namespaceId"] = body.NamespaceID.Hex()
	v.values["registrationType"] = registrationTypeName(body.RegistrationType)
	if body.RegistrationType == model.SubNamespace {
		v.values["parentId"] = body.ParentID.Hex()
	} else {
		v.values["duration"] = body.Duration
	}
	return v
}

func (v *NamespaceRegistrationView) ResolveDetailItems() []DetailItem {
	items := []DetailItem{
		{Key: "namespace_name", Value: v.body.Name},
		{Key: "namespace_id", Value: v.body.NamespaceID.Hex()},
		{Key: "registration_type", Value: registrationTypeName(v.body.RegistrationType)},
	}
	if v.body.RegistrationType == model.SubNamespace {
		return append(items, DetailItem{Key: "parent_namespace_id", Value: v.body.ParentID.Hex()})
	}
	return append(items, DetailItem{Key: "duration", Value: strconv.FormatUint(v.body.Duration, 10)})
}

func registrationTypeName(t model.NamespaceRegistrationType) string {
	if t == model.SubNamespace {
		return "sub"
	}
	return "root"
}

// AliasForm AliasTarget 为 40 位地址时生成地址别名, 否则按马赛克 ID 处理
type AliasForm struct {
	NamespaceName string `json:"namespace_name" binding:"required"`
	AliasTarget   string `json:"alias_target" binding:"required"`
	Action        string `json:"action" binding:"required,oneof=link unlink"`
	MaxFee        uint64 `json:"max_fee"`
}

// AliasView 地址别名与马赛克别名共用
type AliasView struct {
	base
	namespaceID model.NamespaceID
	target      string
	isAddress   bool
	action      model.AliasAction
}

func ParseAlias(c Context, form AliasForm) (*AliasView, error) {
	if err := validator.Struct(form); err != nil {
		return nil, err
	}
	ns, err := model.NamespaceIDFromFullName(form.NamespaceName)
	if err != nil {
		return nil, invalid("namespace_name", err)
	}
	action := model.AliasLink
	if form.Action == "unlink" {
		action = model.AliasUnlink
	}

	if addr, err := address.Normalize(form.AliasTarget); err == nil {
		body := &model.AddressAlias{NamespaceID: ns, Address: addr, Action: action}
		return newAddressAliasView(c, c.header(form.MaxFee, body), body), nil
	}
	mosaic, err := model.ParseMosaicID(form.AliasTarget)
	if err != nil || mosaic.IsAlias() {
		return nil, invalid("alias_target", fmt.Errorf("%q is neither an address nor a mosaic id", form.AliasTarget))
	}
	body := &model.MosaicAlias{NamespaceID: ns, MosaicID: mosaic, Action: action}
	return newMosaicAliasView(c, c.header(form.MaxFee, body), body), nil
}

func newAddressAliasView(c Context, tx *model.Transaction, body *model.AddressAlias) *AliasView {
	return newAliasView(c, tx, body.NamespaceID, body.Address, true, body.Action)
}

func newMosaicAliasView(c Context, tx *model.Transaction, body *model.MosaicAlias) *AliasView {
	return newAliasView(c, tx, body.NamespaceID, body.MosaicID.Hex(), false, body.Action)
}

func newAliasView(c Context, tx *model.Transaction, ns model.NamespaceID, target string, isAddress bool, action model.AliasAction) *AliasView {
	v := &AliasView{
		base:        base{tx: tx, values: c.commonValues(tx)},
		namespaceID: ns,
		target:      target,
		isAddress:   isAddress,
		action:      action,
	}
	v.values["namespaceId"] = ns.Hex()
	v.values["aliasTarget"] = target
	v.values["aliasType"] = v.aliasType()
	v.values["action"] = aliasActionName(action)
	return v
}

func (v *AliasView) aliasType() string {
	if v.isAddress {
		return "address"
	}
	return "mosaic"
}

func (v *AliasView) ResolveDetailItems() []DetailItem {
	return []DetailItem{
		{Key: "namespace_id", Value: v.namespaceID.Hex()},
		{Key: "alias_type", Value: v.aliasType()},
		{Key: "alias_target", Value: v.target, IsAddress: v.isAddress},
		{Key: "action", Value: aliasActionName(v.action)},
	}
}

func aliasActionName(a model.AliasAction) string {
	if a == model.AliasLink {
		return "link"
	}
	return "unlink"
}
