package kms

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"sync"
	"time"

	"desk-wallet/pkg/safe_random"

	"github.com/ethereum/go-ethereum/crypto"
)

// keyEntry 是内部存储结构，包含私钥（敏感数据）和元数据
type keyEntry struct {
	Metadata   KeyMetadata
	PrivateKey *ecdsa.PrivateKey
}

// LocalKMS 是 KeyManager 接口的本地内存实现。
// 它模拟了一个硬件签名设备，私钥存储在内存中，不直接暴露给外部。
type LocalKMS struct {
	mu   sync.RWMutex
	keys map[string]*keyEntry

	// confirm 模拟设备上的人工确认, 为 nil 时立即签名
	confirm func(ctx context.Context, keyID string) error
}

// NewLocalKMS 创建一个新的 LocalKMS 实例。
func NewLocalKMS() *LocalKMS {
	return &LocalKMS{
		keys: make(map[string]*keyEntry),
	}
}

// WithConfirmation 设置签名前的确认回调
func (kms *LocalKMS) WithConfirmation(fn func(ctx context.Context, keyID string) error) *LocalKMS {
	kms.confirm = fn
	return kms
}

// CreateKey 创建一个新的密钥，并返回其 ID。
func (kms *LocalKMS) CreateKey(ctx context.Context, kType KeyType) (string, error) {
	if kType != KeyTypeSecp256k1 {
		return "", fmt.Errorf("不支持的密钥类型: %s", kType)
	}
	priv, err := crypto.GenerateKey()
	if err != nil {
		return "", err
	}
	return kms.ImportKey(ctx, priv)
}

// ImportKey 导入已有私钥
func (kms *LocalKMS) ImportKey(_ context.Context, priv *ecdsa.PrivateKey) (string, error) {
	if priv == nil {
		return "", ErrUnsupportedOp
	}

	// 生成一个随机 Key ID
	keyID, err := safe_random.GenerateRandomHexString(16)
	if err != nil {
		return "", fmt.Errorf("生成 KeyID 失败: %w", err)
	}

	kms.mu.Lock()
	defer kms.mu.Unlock()
	kms.keys[keyID] = &keyEntry{
		Metadata: KeyMetadata{
			KeyID:     keyID,
			Type:      KeyTypeSecp256k1,
			CreatedAt: time.Now().Unix(),
			Enabled:   true,
		},
		PrivateKey: priv,
	}
	return keyID, nil
}

// GetPublicKey 获取指定密钥 ID 的公钥。
func (kms *LocalKMS) GetPublicKey(_ context.Context, keyID string) (*ecdsa.PublicKey, error) {
	entry, err := kms.entry(keyID)
	if err != nil {
		return nil, err
	}
	return &entry.PrivateKey.PublicKey, nil
}

// Sign 使用指定的密钥对摘要进行签名。
func (kms *LocalKMS) Sign(ctx context.Context, keyID string, digest []byte) ([]byte, error) {
	if len(digest) != 32 {
		return nil, ErrInvalidDigest
	}
	entry, err := kms.entry(keyID)
	if err != nil {
		return nil, err
	}

	if kms.confirm != nil {
		if err := kms.confirm(ctx, keyID); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return crypto.Sign(digest, entry.PrivateKey)
}

// Verify 验证签名是否有效。
func (kms *LocalKMS) Verify(_ context.Context, keyID string, digest []byte, signature []byte) error {
	entry, err := kms.entry(keyID)
	if err != nil {
		return err
	}
	if len(signature) < 64 {
		return ErrInvalidSignature
	}
	pub := crypto.CompressPubkey(&entry.PrivateKey.PublicKey)
	if !crypto.VerifySignature(pub, digest, signature[:64]) {
		return ErrInvalidSignature
	}
	return nil
}

func (kms *LocalKMS) Disable(_ context.Context, keyID string) error {
	kms.mu.Lock()
	defer kms.mu.Unlock()

	entry, exists := kms.keys[keyID]
	if !exists {
		return ErrKeyNotFound
	}
	entry.Metadata.Enabled = false
	return nil
}

func (kms *LocalKMS) entry(keyID string) (*keyEntry, error) {
	kms.mu.RLock()
	defer kms.mu.RUnlock()

	entry, exists := kms.keys[keyID]
	if !exists {
		return nil, ErrKeyNotFound
	}
	if !entry.Metadata.Enabled {
		return nil, ErrKeyDisabled
	}
	return entry, nil
}
