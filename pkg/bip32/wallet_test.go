package bip32

import (
	"encoding/hex"
	"testing"

	"desk-wallet/pkg/bip39"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMasterKeyFromSeed(t *testing.T) {
	// 使用 BIP-39 生成种子
	mnemonicService := bip39.NewMnemonicService()
	mnemonic, err := mnemonicService.GenerateMnemonic()
	require.NoError(t, err)
	seed, err := mnemonicService.MnemonicToSeed(mnemonic, "")
	require.NoError(t, err)

	wallet, err := NewMasterKeyFromSeed(seed)
	require.NoError(t, err)
	require.NotNil(t, wallet.MasterKey())
	assert.True(t, wallet.MasterKey().IsPrivate())
}

func TestNewMasterKeyFromSeed_InvalidSeed(t *testing.T) {
	_, err := NewMasterKeyFromSeed([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrInvalidSeed)
}

func TestDerivePath(t *testing.T) {
	// BIP-32 测试向量 1 的种子
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")

	wallet, err := NewMasterKeyFromSeed(seed)
	require.NoError(t, err)

	// m/0H 对应测试向量中的 xprv
	child, err := wallet.DerivePath("m/0'")
	require.NoError(t, err)
	assert.Equal(t, "xprv9uHRZZhk6KAJC1avXpDAp4MDc3sQKNxDiPvvkX8Br5ngLNv1TxvUxt4cV1rGL5hj6KCesnDYUhd7oWgT11eZG7XnxHrnYeSvkzY7d2bhkJ7", child.String())

	// 多层路径
	child, err = wallet.DerivePath("m/44h/4343h/0h/0h/0h")
	require.NoError(t, err)

	// 验证公钥转换
	pubKey, err := child.Neuter()
	require.NoError(t, err)
	assert.False(t, pubKey.IsPrivate())
	_, err = pubKey.ECDSA()
	assert.ErrorIs(t, err, ErrPublicOnly)
}

func TestDerivePath_Invalid(t *testing.T) {
	seed, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	wallet, err := NewMasterKeyFromSeed(seed)
	require.NoError(t, err)

	for _, path := range []string{"44'/0'", "m/abc", "m/44'//0"} {
		_, err := wallet.DerivePath(path)
		assert.ErrorIs(t, err, ErrInvalidPath, path)
	}
}

func TestDeriveAccountKey_Deterministic(t *testing.T) {
	seed, _ := hex.DecodeString("fffcf9f6da3247d8a846f4b6113e6173")

	a, err := DeriveAccountKey(seed, "m/44'/4343'/0'/0'/0'")
	require.NoError(t, err)
	b, err := DeriveAccountKey(seed, "m/44'/4343'/0'/0'/0'")
	require.NoError(t, err)
	c, err := DeriveAccountKey(seed, "m/44'/4343'/1'/0'/0'")
	require.NoError(t, err)

	assert.Equal(t, a.D, b.D)
	assert.NotEqual(t, a.D, c.D)
}
