package kms

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalKMS_Secp256k1(t *testing.T) {
	ctx := context.Background()
	kms := NewLocalKMS()

	keyID, err := kms.CreateKey(ctx, KeyTypeSecp256k1)
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("Secp256k1 签名消息"))
	sig, err := kms.Sign(ctx, keyID, digest)
	require.NoError(t, err)
	assert.Len(t, sig, 65)

	require.NoError(t, kms.Verify(ctx, keyID, digest, sig))

	// 恢复出的公钥与 KMS 中的一致
	pub, err := kms.GetPublicKey(ctx, keyID)
	require.NoError(t, err)
	recovered, err := crypto.SigToPub(digest, sig)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(*pub), crypto.PubkeyToAddress(*recovered))

	// 篡改摘要
	err = kms.Verify(ctx, keyID, crypto.Keccak256([]byte("tampered")), sig)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestLocalKMS_ImportKeyMatchesLocalSign(t *testing.T) {
	ctx := context.Background()
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)

	kms := NewLocalKMS()
	keyID, err := kms.ImportKey(ctx, priv)
	require.NoError(t, err)

	digest := crypto.Keccak256([]byte("deterministic"))
	fromKMS, err := kms.Sign(ctx, keyID, digest)
	require.NoError(t, err)
	local, err := crypto.Sign(digest, priv)
	require.NoError(t, err)

	assert.Equal(t, local, fromKMS)
}

func TestLocalKMS_Errors(t *testing.T) {
	ctx := context.Background()
	kms := NewLocalKMS()

	_, err := kms.CreateKey(ctx, KeyType("RSA"))
	assert.Error(t, err)

	_, err = kms.Sign(ctx, "missing", make([]byte, 32))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	keyID, err := kms.CreateKey(ctx, KeyTypeSecp256k1)
	require.NoError(t, err)

	_, err = kms.Sign(ctx, keyID, []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidDigest)

	require.NoError(t, kms.Disable(ctx, keyID))
	_, err = kms.Sign(ctx, keyID, make([]byte, 32))
	assert.ErrorIs(t, err, ErrKeyDisabled)
}

func TestLocalKMS_ConfirmationRejected(t *testing.T) {
	ctx := context.Background()
	rejected := errors.New("用户在设备上拒绝")
	kms := NewLocalKMS().WithConfirmation(func(context.Context, string) error { return rejected })

	keyID, err := kms.CreateKey(ctx, KeyTypeSecp256k1)
	require.NoError(t, err)

	_, err = kms.Sign(ctx, keyID, make([]byte, 32))
	assert.ErrorIs(t, err, rejected)
}

func TestLocalKMS_ContextCanceled(t *testing.T) {
	kms := NewLocalKMS()
	keyID, err := kms.CreateKey(context.Background(), KeyTypeSecp256k1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = kms.Sign(ctx, keyID, make([]byte, 32))
	assert.ErrorIs(t, err, context.Canceled)
}
