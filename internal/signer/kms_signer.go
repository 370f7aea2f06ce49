package signer

import (
	"context"
	"fmt"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/kms"
)

// KMSSigner 通过 KeyManager 签名, 私钥不离开签名设备
type KMSSigner struct {
	km     kms.KeyManager
	keyID  string
	public model.PublicAccount
}

func NewKMSSigner(ctx context.Context, km kms.KeyManager, keyID string) (*KMSSigner, error) {
	pub, err := km.GetPublicKey(ctx, keyID)
	if err != nil {
		return nil, fmt.Errorf("get public key %s: %w", keyID, err)
	}
	return &KMSSigner{km: km, keyID: keyID, public: publicAccount(pub)}, nil
}

func (s *KMSSigner) PublicAccount() model.PublicAccount {
	return s.public
}

func (s *KMSSigner) Sign(ctx context.Context, tx *model.Transaction, generationHash string) (*model.SignedTransaction, error) {
	return signTransaction(ctx, s.public, s.signDigest, tx, generationHash)
}

func (s *KMSSigner) SignCosignature(ctx context.Context, parentHash string) (*model.CosignatureSignedTransaction, error) {
	return signCosignature(ctx, s.public, s.signDigest, parentHash)
}

func (s *KMSSigner) signDigest(ctx context.Context, digest []byte) ([]byte, error) {
	return s.km.Sign(ctx, s.keyID, digest)
}
