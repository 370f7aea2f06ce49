package kms

import (
	"context"
	"crypto/ecdsa"
	"errors"
)

// KeyType 定义了支持的密钥类型
type KeyType string

const (
	KeyTypeSecp256k1 KeyType = "Secp256k1"
)

// KeyMetadata 包含密钥的元数据，不包含敏感的私钥信息
type KeyMetadata struct {
	KeyID     string  `json:"key_id"`
	Type      KeyType `json:"type"`
	CreatedAt int64   `json:"created_at"`
	Enabled   bool    `json:"enabled"`
}

// KeyManager 定义了密钥管理服务的核心行为。
// 钱包把它当作外部签名设备使用: 私钥永远不会离开 KMS, 每次签名都可能阻塞 (例如等待设备确认), 所以带 ctx。
type KeyManager interface {
	// CreateKey 创建一个新的密钥，并返回其 ID。
	CreateKey(ctx context.Context, kType KeyType) (string, error)

	// ImportKey 导入已有私钥 (例如从助记词派生), 返回其 ID。
	ImportKey(ctx context.Context, priv *ecdsa.PrivateKey) (string, error)

	// GetPublicKey 获取指定密钥 ID 的公钥。
	GetPublicKey(ctx context.Context, keyID string) (*ecdsa.PublicKey, error)

	// Sign 对 32 字节摘要签名, 返回 [R || S || V] 共 65 字节。
	Sign(ctx context.Context, keyID string, digest []byte) ([]byte, error)

	// Verify 验证签名是否有效。
	Verify(ctx context.Context, keyID string, digest []byte, signature []byte) error

	// Disable 禁用密钥, 之后的签名请求全部拒绝
	Disable(ctx context.Context, keyID string) error
}

var (
	ErrKeyNotFound      = errors.New("密钥未找到")
	ErrKeyDisabled      = errors.New("密钥已禁用")
	ErrUnsupportedOp    = errors.New("该密钥类型不支持此操作")
	ErrInvalidSignature = errors.New("签名无效")
	ErrInvalidDigest    = errors.New("摘要长度必须为 32 字节")
)
