package signer

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/errno"

	"github.com/ethereum/go-ethereum/crypto"
)

// Signer 持有签名能力的账户: 本地解锁的私钥, 或外部签名设备
type Signer interface {
	PublicAccount() model.PublicAccount
	// Sign 对同一私钥与同一输入的结果是确定的
	Sign(ctx context.Context, tx *model.Transaction, generationHash string) (*model.SignedTransaction, error)
	SignCosignature(ctx context.Context, parentHash string) (*model.CosignatureSignedTransaction, error)
}

// digestFunc 对 32 字节摘要签名, 返回 65 字节签名
type digestFunc func(ctx context.Context, digest []byte) ([]byte, error)

func publicAccount(pub *ecdsa.PublicKey) model.PublicAccount {
	return model.PublicAccount{
		PublicKey: strings.ToUpper(hex.EncodeToString(crypto.CompressPubkey(pub))),
		Address:   address.FromPublicKey(pub),
	}
}

func signTransaction(ctx context.Context, public model.PublicAccount, sign digestFunc, tx *model.Transaction, generationHash string) (*model.SignedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// 签名者公钥属于被签名的数据, 在副本上设置
	c := tx.Clone()
	c.SignerPublicKey = public.PublicKey

	data, err := model.Encode(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errno.ErrSigning, err)
	}
	digest, err := model.SigningDigest(data, generationHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errno.ErrSigning, err)
	}
	sig, err := sign(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errno.ErrSigning, err)
	}
	return model.NewSignedTransaction(c, data, sig, generationHash)
}

func signCosignature(ctx context.Context, public model.PublicAccount, sign digestFunc, parentHash string) (*model.CosignatureSignedTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	digest, err := model.CosignatureDigest(parentHash)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errno.ErrSigning, err)
	}
	sig, err := sign(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errno.ErrSigning, err)
	}
	return &model.CosignatureSignedTransaction{
		ParentHash:      strings.ToUpper(parentHash),
		Signature:       strings.ToUpper(hex.EncodeToString(sig)),
		SignerPublicKey: public.PublicKey,
	}, nil
}

// Verify 校验已签名交易的签名与公钥
func Verify(signed *model.SignedTransaction, generationHash string) error {
	sig, signer, data, err := model.OpenPayload(signed.Payload)
	if err != nil {
		return err
	}
	digest, err := model.SigningDigest(data, generationHash)
	if err != nil {
		return err
	}
	if len(sig) < 64 || !crypto.VerifySignature(signer, digest, sig[:64]) {
		return fmt.Errorf("%w: signature mismatch", errno.ErrSigning)
	}
	return nil
}

// VerifyCosignature 校验联署签名
func VerifyCosignature(c *model.CosignatureSignedTransaction) error {
	digest, err := model.CosignatureDigest(c.ParentHash)
	if err != nil {
		return err
	}
	sig, err := hex.DecodeString(c.Signature)
	if err != nil {
		return err
	}
	pub, err := hex.DecodeString(c.SignerPublicKey)
	if err != nil {
		return err
	}
	if len(sig) < 64 || !crypto.VerifySignature(pub, digest, sig[:64]) {
		return fmt.Errorf("%w: cosignature mismatch", errno.ErrSigning)
	}
	return nil
}
