package signer

import (
	"context"
	"strings"
	"testing"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/keystore"
	"desk-wallet/pkg/kms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic       = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testPath           = "m/44'/4343'/0'/0'/0'"
	testGenerationHash = "57F7DA205008026C776CB6AED843393F04CD458E0AA2D9F1D5F31A402072B2D6"
)

func newTransfer() *model.Transaction {
	return &model.Transaction{
		NetworkType: model.TestNet,
		Version:     model.Version,
		Deadline:    1,
		MaxFee:      100,
		Body: &model.Transfer{
			Recipient: "7E5F4552091A69125D5DFCB7B8C2659029395BDF",
			Mosaics:   []model.Mosaic{{ID: 0x5F160D7851F3CB30, Amount: 1}},
		},
	}
}

func TestAccount_SignDeterministic(t *testing.T) {
	ctx := context.Background()
	acc, err := FromMnemonic(testMnemonic, testPath)
	require.NoError(t, err)

	tx := newTransfer()
	a, err := acc.Sign(ctx, tx, testGenerationHash)
	require.NoError(t, err)
	b, err := acc.Sign(ctx, tx, testGenerationHash)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, acc.PublicAccount().PublicKey, a.SignerPublicKey)
	require.NoError(t, Verify(a, testGenerationHash))
	// 原交易未被修改
	assert.Empty(t, tx.SignerPublicKey)

	// 不同网络的签名不同
	other, err := acc.Sign(ctx, tx, strings.Repeat("00", 32))
	require.NoError(t, err)
	assert.NotEqual(t, a.Hash, other.Hash)
	assert.Error(t, Verify(other, testGenerationHash))
}

func TestAccount_SignMalformed(t *testing.T) {
	acc, err := FromMnemonic(testMnemonic, testPath)
	require.NoError(t, err)

	_, err = acc.Sign(context.Background(), &model.Transaction{}, testGenerationHash)
	assert.ErrorIs(t, err, errno.ErrSigning)
}

func TestAccount_SignCanceled(t *testing.T) {
	acc, err := FromMnemonic(testMnemonic, testPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = acc.Sign(ctx, newTransfer(), testGenerationHash)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUnlock(t *testing.T) {
	ks, err := keystore.EncryptMnemonic(testMnemonic, "pw", keystore.WithScryptN(keystore.LightScryptN))
	require.NoError(t, err)

	_, err = Unlock(ks, "wrong", testPath)
	assert.ErrorIs(t, err, errno.ErrPasswordIncorrect)

	acc, err := Unlock(ks, "pw", testPath)
	require.NoError(t, err)
	expected, err := FromMnemonic(testMnemonic, testPath)
	require.NoError(t, err)
	assert.Equal(t, expected.PublicAccount(), acc.PublicAccount())
}

func TestKMSSigner_MatchesAccount(t *testing.T) {
	ctx := context.Background()
	acc, err := FromMnemonic(testMnemonic, testPath)
	require.NoError(t, err)

	km := kms.NewLocalKMS()
	keyID, err := km.ImportKey(ctx, acc.PrivateKey())
	require.NoError(t, err)
	device, err := NewKMSSigner(ctx, km, keyID)
	require.NoError(t, err)

	assert.Equal(t, acc.PublicAccount(), device.PublicAccount())

	fromAccount, err := acc.Sign(ctx, newTransfer(), testGenerationHash)
	require.NoError(t, err)
	fromDevice, err := device.Sign(ctx, newTransfer(), testGenerationHash)
	require.NoError(t, err)
	assert.Equal(t, fromAccount, fromDevice)
}

func TestKMSSigner_DeviceRejects(t *testing.T) {
	ctx := context.Background()
	km := kms.NewLocalKMS()
	keyID, err := km.CreateKey(ctx, kms.KeyTypeSecp256k1)
	require.NoError(t, err)
	device, err := NewKMSSigner(ctx, km, keyID)
	require.NoError(t, err)

	require.NoError(t, km.Disable(ctx, keyID))
	_, err = device.Sign(ctx, newTransfer(), testGenerationHash)
	assert.ErrorIs(t, err, errno.ErrSigning)
	assert.ErrorIs(t, err, kms.ErrKeyDisabled)
}

func TestSignCosignature(t *testing.T) {
	acc, err := FromMnemonic(testMnemonic, testPath)
	require.NoError(t, err)

	parent := strings.Repeat("CD", 32)
	cosig, err := acc.SignCosignature(context.Background(), parent)
	require.NoError(t, err)
	assert.Equal(t, parent, cosig.ParentHash)
	assert.Equal(t, acc.PublicAccount().PublicKey, cosig.SignerPublicKey)
	require.NoError(t, VerifyCosignature(cosig))

	_, err = acc.SignCosignature(context.Background(), "short")
	assert.ErrorIs(t, err, errno.ErrSigning)
}

func TestKeystoreUnlocker(t *testing.T) {
	acc, err := FromMnemonic(testMnemonic, testPath)
	require.NoError(t, err)
	ks, err := keystore.EncryptMnemonic(testMnemonic, "pw",
		keystore.WithScryptN(keystore.LightScryptN),
		keystore.WithAccount(acc.PublicAccount().Address, testPath))
	require.NoError(t, err)
	path := t.TempDir() + "/wallet.json"
	require.NoError(t, ks.SaveToFile(path))

	u := KeystoreUnlocker{Path: path, DerivationPath: "m/44'/4343'/1'/0'/0'"}
	addr, err := u.Address()
	require.NoError(t, err)
	assert.Equal(t, acc.PublicAccount().Address, addr)

	_, err = u.Unlock("wrong")
	assert.ErrorIs(t, err, errno.ErrPasswordIncorrect)

	// keystore 中记录的路径优先
	sgn, err := u.Unlock("pw")
	require.NoError(t, err)
	assert.Equal(t, acc.PublicAccount(), sgn.PublicAccount())

	_, err = KeystoreUnlocker{Path: t.TempDir() + "/missing.json"}.Address()
	assert.ErrorIs(t, err, errno.ErrKeystoreNotFound)
}

func TestKeystoreUnlocker_ChangePassword(t *testing.T) {
	ks, err := keystore.EncryptMnemonic(testMnemonic, "pw",
		keystore.WithScryptN(keystore.LightScryptN),
		keystore.WithAccount("7E5F4552091A69125D5DFCB7B8C2659029395BDF", testPath))
	require.NoError(t, err)
	path := t.TempDir() + "/wallet.json"
	require.NoError(t, ks.SaveToFile(path))
	u := KeystoreUnlocker{Path: path}

	assert.ErrorIs(t, u.ChangePassword("wrong", "pw2", ""), errno.ErrPasswordIncorrect)
	_, err = u.Unlock("pw")
	require.NoError(t, err)

	require.NoError(t, u.ChangePassword("pw", "pw2", "hint"))
	_, err = u.Unlock("pw")
	assert.ErrorIs(t, err, errno.ErrPasswordIncorrect)
	sgn, err := u.Unlock("pw2")
	require.NoError(t, err)
	expected, err := FromMnemonic(testMnemonic, testPath)
	require.NoError(t, err)
	assert.Equal(t, expected.PublicAccount(), sgn.PublicAccount())
}
