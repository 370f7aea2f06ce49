package view

import (
	"strings"
	"testing"
	"time"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	currency   = model.MosaicID(0x5F160D7851F3CB30)
	walletAddr = "7E5F4552091A69125D5DFCB7B8C2659029395BDF"
	otherAddr  = "2B5AD5C4795C026514F8317C7A215E218DCCD6CF"
)

func currencyAlias() model.NamespaceID {
	ns, _ := model.NamespaceIDFromFullName("symbol.xym")
	return ns
}

func testContext() Context {
	return Context{
		NetworkType:     model.TestNet,
		EpochAdjustment: 1637848847,
		DeadlineWindow:  2 * time.Hour,
		DefaultMaxFee:   20000,
		MaxMessageSize:  1024,
		Mosaics: MosaicTable{
			currency: {ID: currency, Divisibility: 6},
		},
		MosaicAliases:  map[model.NamespaceID]model.MosaicID{currencyAlias(): currency},
		CurrentAddress: walletAddr,
		FeeMultipliers: map[uint64]uint32{10: 100},
		Now:            func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestToAbsolute(t *testing.T) {
	tests := []struct {
		in      string
		div     uint8
		want    uint64
		wantErr bool
	}{
		{"1.5", 6, 1500000, false},
		{"0", 6, 0, false},
		{"10", 0, 10, false},
		{"0.0000001", 6, 0, true},
		{"-1", 6, 0, true},
		{"abc", 6, 0, true},
		{"18446744073709551616", 0, 0, true},
	}
	for _, tt := range tests {
		got, err := ToAbsolute(tt.in, tt.div)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "1.500000", ToRelative(1500000, 6))
	assert.Equal(t, "42", ToRelative(42, 0))
}

func TestParseTransfer(t *testing.T) {
	c := testContext()
	v, err := ParseTransfer(c, TransferForm{
		Recipient: strings.ToLower(otherAddr),
		Mosaics:   []MosaicAttachment{{MosaicID: currency.Hex(), Amount: "1.25"}},
		Message:   "rent",
	})
	require.NoError(t, err)

	tx := v.Transaction()
	assert.Equal(t, model.TypeTransfer, tx.Type())
	assert.Equal(t, uint64(20000), tx.MaxFee)
	assert.Equal(t, model.TestNet, tx.NetworkType)
	assert.Equal(t, model.NewDeadline(c.Now(), c.EpochAdjustment, c.DeadlineWindow), tx.Deadline)

	body := tx.Body.(*model.Transfer)
	assert.Equal(t, otherAddr, body.Recipient)
	assert.Equal(t, []model.Mosaic{{ID: currency, Amount: 1250000}}, body.Mosaics)
	assert.Equal(t, false, v.Values()["isIncoming"])

	assert.Equal(t, []DetailItem{
		{Key: "recipient", Value: otherAddr, IsAddress: true},
		{Key: "mosaics", Value: "1.250000 5F160D7851F3CB30", IsMosaic: true},
		{Key: "message", Value: "rent"},
	}, v.ResolveDetailItems())

	// use(tx) 得到与 parse 相同的值与明细
	used := Of(c, tx)
	assert.Equal(t, v.Values(), used.Values())
	assert.Equal(t, v.ResolveDetailItems(), used.ResolveDetailItems())
}

func TestParseTransfer_AliasAndUnknownMosaic(t *testing.T) {
	c := testContext()
	v, err := ParseTransfer(c, TransferForm{
		Recipient: "@alice",
		Mosaics:   []MosaicAttachment{{MosaicID: "00000000000000AA", Amount: "7"}},
		MaxFee:    5,
	})
	require.NoError(t, err)

	body := v.Transaction().Body.(*model.Transfer)
	alice, _ := model.NamespaceIDFromFullName("alice")
	assert.Equal(t, "@"+alice.Hex(), body.Recipient)
	// 未知马赛克按可分性 0 处理
	assert.Equal(t, uint64(7), body.Mosaics[0].Amount)
	assert.Equal(t, uint64(5), v.Transaction().MaxFee)
}

func TestParseTransfer_MosaicAlias(t *testing.T) {
	c := testContext()
	v, err := ParseTransfer(c, TransferForm{
		Recipient: otherAddr,
		Mosaics:   []MosaicAttachment{{MosaicID: "@symbol.xym", Amount: "1.5"}},
	})
	require.NoError(t, err)

	// 别名解析为真实马赛克, 按其可分性换算
	body := v.Transaction().Body.(*model.Transfer)
	assert.Equal(t, []model.Mosaic{{ID: currency, Amount: 1500000}}, body.Mosaics)

	byHex, err := ParseTransfer(c, TransferForm{
		Recipient: otherAddr,
		Mosaics:   []MosaicAttachment{{MosaicID: currency.Hex(), Amount: "1.5"}},
	})
	require.NoError(t, err)
	assert.Equal(t, byHex.Transaction().Body, v.Transaction().Body)

	_, err = ParseHashLock(c, HashLockForm{
		MosaicID: "@symbol.xym",
		Amount:   "10",
		Duration: 100,
		Hash:     strings.Repeat("AB", 32),
	})
	require.NoError(t, err)
}

func TestParseTransfer_UnlinkedAlias(t *testing.T) {
	c := testContext()
	for _, amount := range []string{"1", "1.5"} {
		v, err := ParseTransfer(c, TransferForm{
			Recipient: otherAddr,
			Mosaics:   []MosaicAttachment{{MosaicID: "@unknown.coin", Amount: amount}},
		})
		assert.Nil(t, v)
		assert.ErrorIs(t, err, errno.ErrValidation)
	}

	c.MosaicAliases = nil
	_, err := ParseTransfer(c, TransferForm{
		Recipient: otherAddr,
		Mosaics:   []MosaicAttachment{{MosaicID: "@symbol.xym", Amount: "1"}},
	})
	assert.ErrorIs(t, err, errno.ErrValidation)
}

func TestParseTransfer_Invalid(t *testing.T) {
	c := testContext()
	forms := map[string]TransferForm{
		"bad recipient":  {Recipient: "XYZ"},
		"bad mosaic id":  {Recipient: otherAddr, Mosaics: []MosaicAttachment{{MosaicID: "nothex", Amount: "1"}}},
		"too precise":    {Recipient: otherAddr, Mosaics: []MosaicAttachment{{MosaicID: currency.Hex(), Amount: "0.0000001"}}},
		"duplicate":      {Recipient: otherAddr, Mosaics: []MosaicAttachment{{MosaicID: currency.Hex(), Amount: "1"}, {MosaicID: currency.Hex(), Amount: "2"}}},
		"long message":   {Recipient: otherAddr, Message: strings.Repeat("x", 1025)},
		"bad alias name": {Recipient: "@Bad.Name"},
	}
	for name, form := range forms {
		t.Run(name, func(t *testing.T) {
			v, err := ParseTransfer(c, form)
			assert.Nil(t, v)
			assert.ErrorIs(t, err, errno.ErrValidation)
		})
	}
}

func TestTransferView_Incoming(t *testing.T) {
	c := testContext()
	v, err := ParseTransfer(c, TransferForm{Recipient: walletAddr})
	require.NoError(t, err)
	assert.Equal(t, true, v.Values()["isIncoming"])
}

func TestParseMosaicDefinition(t *testing.T) {
	c := testContext()
	nonce := uint32(42)
	v, err := ParseMosaicDefinition(c, MosaicDefinitionForm{
		Divisibility: 2, Transferable: true, Permanent: true, Nonce: &nonce,
	})
	require.NoError(t, err)

	body := v.Transaction().Body.(*model.MosaicDefinition)
	assert.Equal(t, model.MosaicIDFromNonce(42, walletAddr), body.MosaicID)
	assert.Zero(t, body.Duration)
	assert.Equal(t, []DetailItem{
		{Key: "mosaic_id", Value: body.MosaicID.Hex()},
		{Key: "divisibility", Value: "2"},
		{Key: "duration", Value: "unlimited"},
		{Key: "supply_mutable", Value: "false"},
		{Key: "transferable", Value: "true"},
		{Key: "restrictable", Value: "false"},
	}, v.ResolveDetailItems())

	_, err = ParseMosaicDefinition(c, MosaicDefinitionForm{Divisibility: 7, Permanent: true})
	assert.ErrorIs(t, err, errno.ErrValidation)
	_, err = ParseMosaicDefinition(c, MosaicDefinitionForm{Divisibility: 0})
	assert.ErrorIs(t, err, errno.ErrValidation, "duration required when not permanent")
}

func TestParseMosaicSupplyChange(t *testing.T) {
	c := testContext()
	v, err := ParseMosaicSupplyChange(c, MosaicSupplyChangeForm{MosaicID: currency.Hex(), Action: "decrease", Delta: "0.5"})
	require.NoError(t, err)

	body := v.Transaction().Body.(*model.MosaicSupplyChange)
	assert.Equal(t, model.SupplyDecrease, body.Action)
	assert.Equal(t, uint64(500000), body.Delta)
	assert.Equal(t, "0.500000", v.ResolveDetailItems()[2].Value)

	_, err = ParseMosaicSupplyChange(c, MosaicSupplyChangeForm{MosaicID: currency.Hex(), Action: "increase", Delta: "0"})
	assert.ErrorIs(t, err, errno.ErrValidation)
}

func TestParseNamespaceRegistration(t *testing.T) {
	c := testContext()
	root, err := ParseNamespaceRegistration(c, NamespaceRegistrationForm{Name: "alice", RegistrationType: "root", Duration: 86400})
	require.NoError(t, err)
	rootBody := root.Transaction().Body.(*model.NamespaceRegistration)
	assert.Equal(t, model.NamespaceIDFromName("alice", 0), rootBody.NamespaceID)

	sub, err := ParseNamespaceRegistration(c, NamespaceRegistrationForm{Name: "savings", RegistrationType: "sub", ParentName: "alice"})
	require.NoError(t, err)
	subBody := sub.Transaction().Body.(*model.NamespaceRegistration)
	assert.Equal(t, rootBody.NamespaceID, subBody.ParentID)
	assert.Equal(t, "parent_namespace_id", sub.ResolveDetailItems()[3].Key)

	_, err = ParseNamespaceRegistration(c, NamespaceRegistrationForm{Name: "savings", RegistrationType: "sub"})
	assert.ErrorIs(t, err, errno.ErrValidation)
	_, err = ParseNamespaceRegistration(c, NamespaceRegistrationForm{Name: "a.b", RegistrationType: "root", Duration: 1})
	assert.ErrorIs(t, err, errno.ErrValidation)
}

func TestParseAlias(t *testing.T) {
	c := testContext()
	addrAlias, err := ParseAlias(c, AliasForm{NamespaceName: "alice", AliasTarget: otherAddr, Action: "link"})
	require.NoError(t, err)
	assert.Equal(t, model.TypeAddressAlias, addrAlias.Transaction().Type())
	assert.True(t, addrAlias.ResolveDetailItems()[2].IsAddress)

	mosaicAlias, err := ParseAlias(c, AliasForm{NamespaceName: "alice.token", AliasTarget: currency.Hex(), Action: "unlink"})
	require.NoError(t, err)
	assert.Equal(t, model.TypeMosaicAlias, mosaicAlias.Transaction().Type())
	assert.Equal(t, "unlink", mosaicAlias.Values()["action"])

	// use 得到一致的明细
	assert.Equal(t, mosaicAlias.ResolveDetailItems(), Of(c, mosaicAlias.Transaction()).ResolveDetailItems())

	v, err := ParseAlias(c, AliasForm{NamespaceName: "alice", AliasTarget: "zz", Action: "link"})
	assert.Nil(t, v)
	assert.ErrorIs(t, err, errno.ErrValidation)
}

func TestParseMultisigModification(t *testing.T) {
	c := testContext()
	v, err := ParseMultisigModification(c, MultisigModificationForm{
		MinApprovalDelta: 1, MinRemovalDelta: 1, Additions: []string{strings.ToLower(otherAddr)},
	})
	require.NoError(t, err)
	assert.Equal(t, []DetailItem{
		{Key: "min_approval_delta", Value: "1"},
		{Key: "min_removal_delta", Value: "1"},
		{Key: "cosignatory_added", Value: otherAddr, IsAddress: true},
	}, v.ResolveDetailItems())

	_, err = ParseMultisigModification(c, MultisigModificationForm{})
	assert.ErrorIs(t, err, errno.ErrValidation)
	_, err = ParseMultisigModification(c, MultisigModificationForm{Additions: []string{otherAddr}, Deletions: []string{otherAddr}})
	assert.ErrorIs(t, err, errno.ErrValidation)
	_, err = ParseMultisigModification(c, MultisigModificationForm{Additions: []string{"short"}})
	assert.ErrorIs(t, err, errno.ErrValidation)
}

func TestParseHashLock(t *testing.T) {
	c := testContext()
	hash := strings.Repeat("ab", 32)
	v, err := ParseHashLock(c, HashLockForm{MosaicID: currency.Hex(), Amount: "10", Duration: 1000, Hash: hash})
	require.NoError(t, err)
	assert.Equal(t, []DetailItem{
		{Key: "locked_mosaic", Value: "10.000000 5F160D7851F3CB30", IsMosaic: true},
		{Key: "duration", Value: "1000"},
		{Key: "inner_transaction_hash", Value: strings.ToUpper(hash)},
	}, v.ResolveDetailItems())

	_, err = ParseHashLock(c, HashLockForm{MosaicID: currency.Hex(), Amount: "10", Duration: 1000, Hash: "abc"})
	assert.ErrorIs(t, err, errno.ErrValidation)
}

func TestOf_UnknownAndEffectiveFee(t *testing.T) {
	c := testContext()
	tx := &model.Transaction{
		NetworkType: model.TestNet,
		Version:     model.Version,
		Body:        &model.Opaque{TxType: model.TypeSecretLock, Data: []byte{1}},
		Info:        &model.TransactionInfo{Height: 10, Hash: "AA"},
	}
	v := Of(c, tx)
	assert.IsType(t, &UnknownView{}, v)
	assert.Equal(t, []DetailItem{{Key: "transaction_type", Value: "secret_lock"}}, v.ResolveDetailItems())
	assert.Equal(t, true, v.Values()["hasBlockInfo"])
	assert.Equal(t, uint64(model.Size(tx))*100, v.Values()["effectiveFee"])

	agg := &model.Transaction{Body: &model.Aggregate{InnerTransactions: []*model.Transaction{tx}}}
	items := Of(c, agg).ResolveDetailItems()
	assert.Equal(t, "aggregate_complete", items[0].Value)
	assert.Equal(t, DetailItem{Key: "inner_transactions", Value: "1"}, items[1])
}
