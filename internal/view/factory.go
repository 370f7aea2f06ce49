package view

import "desk-wallet/internal/model"

// Of 按交易体类型选择视图; 新增交易体后这里会编译失败, 直到补上对应分支
func Of(c Context, tx *model.Transaction) View {
	f := &factory{ctx: c, tx: tx}
	if tx.Body == nil {
		return newUnknownView(c, tx)
	}
	_ = tx.Body.Accept(f)
	return f.view
}

// All 对一组交易依次取视图, 顺序不变
func All(c Context, txs []*model.Transaction) []View {
	views := make([]View, 0, len(txs))
	for _, tx := range txs {
		views = append(views, Of(c, tx))
	}
	return views
}

type factory struct {
	ctx  Context
	tx   *model.Transaction
	view View
}

func (f *factory) VisitTransfer(b *model.Transfer) error {
	f.view = newTransferView(f.ctx, f.tx, b)
	return nil
}

func (f *factory) VisitMosaicDefinition(b *model.MosaicDefinition) error {
	f.view = newMosaicDefinitionView(f.ctx, f.tx, b)
	return nil
}

func (f *factory) VisitMosaicSupplyChange(b *model.MosaicSupplyChange) error {
	f.view = newMosaicSupplyChangeView(f.ctx, f.tx, b)
	return nil
}

func (f *factory) VisitNamespaceRegistration(b *model.NamespaceRegistration) error {
	f.view = newNamespaceRegistrationView(f.ctx, f.tx, b)
	return nil
}

func (f *factory) VisitAddressAlias(b *model.AddressAlias) error {
	f.view = newAddressAliasView(f.ctx, f.tx, b)
	return nil
}

func (f *factory) VisitMosaicAlias(b *model.MosaicAlias) error {
	f.view = newMosaicAliasView(f.ctx, f.tx, b)
	return nil
}

func (f *factory) VisitMultisigAccountModification(b *model.MultisigAccountModification) error {
	f.view = newMultisigModificationView(f.ctx, f.tx, b)
	return nil
}

func (f *factory) VisitHashLock(b *model.HashLock) error {
	f.view = newHashLockView(f.ctx, f.tx, b)
	return nil
}

func (f *factory) VisitAggregate(b *model.Aggregate) error {
	f.view = newUnknownView(f.ctx, f.tx, aggregateItems(b)...)
	return nil
}

func (f *factory) VisitMetadata(b *model.Metadata) error {
	f.view = newUnknownView(f.ctx, f.tx, metadataItems(b)...)
	return nil
}

func (f *factory) VisitOpaque(*model.Opaque) error {
	f.view = newUnknownView(f.ctx, f.tx)
	return nil
}
