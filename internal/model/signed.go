package model

import (
	"encoding/hex"
	"fmt"
	"strings"

	"desk-wallet/pkg/crypto_util"

	"github.com/ethereum/go-ethereum/rlp"
)

// SignedTransaction 可以直接广播的已签名交易
type SignedTransaction struct {
	Payload         string          `json:"payload"`
	Hash            string          `json:"hash"`
	Type            TransactionType `json:"type"`
	SignerPublicKey string          `json:"signerPublicKey"`
	NetworkType     NetworkType     `json:"networkType"`
}

// CosignatureSignedTransaction 对他人发起的 bonded 聚合交易的联署
type CosignatureSignedTransaction struct {
	ParentHash      string `json:"parentHash"`
	Signature       string `json:"signature"`
	SignerPublicKey string `json:"signerPublicKey"`
}

type envelope struct {
	Signature []byte
	Signer    []byte
	Data      []byte
}

// SigningDigest 签名摘要 = Keccak256(generationHash || data), 不同网络的签名互不通用
func SigningDigest(data []byte, generationHash string) ([]byte, error) {
	gen, err := decodeHex(generationHash)
	if err != nil {
		return nil, fmt.Errorf("invalid generation hash: %w", err)
	}
	return crypto_util.Keccak256(gen, data), nil
}

// CosignatureDigest 联署签名覆盖父交易哈希
func CosignatureDigest(parentHash string) ([]byte, error) {
	parent, err := decodeHex(parentHash)
	if err != nil || len(parent) != 32 {
		return nil, fmt.Errorf("%w: invalid parent hash %q", ErrMalformedTransaction, parentHash)
	}
	return crypto_util.Keccak256(parent), nil
}

// NewSignedTransaction 组装 payload 并计算交易哈希:
// hash = Keccak256(signature[0:32] || signer || generationHash || data)
func NewSignedTransaction(tx *Transaction, data, signature []byte, generationHash string) (*SignedTransaction, error) {
	signer, err := decodeHex(tx.SignerPublicKey)
	if err != nil || len(signer) == 0 {
		return nil, fmt.Errorf("%w: missing signer public key", ErrMalformedTransaction)
	}
	if len(signature) < 32 {
		return nil, fmt.Errorf("%w: signature too short", ErrMalformedTransaction)
	}
	gen, err := decodeHex(generationHash)
	if err != nil {
		return nil, fmt.Errorf("invalid generation hash: %w", err)
	}

	payload, err := rlp.EncodeToBytes(&envelope{Signature: signature, Signer: signer, Data: data})
	if err != nil {
		return nil, err
	}

	return &SignedTransaction{
		Payload:         strings.ToUpper(hex.EncodeToString(payload)),
		Hash:            crypto_util.CalculateKeccak256(signature[:32], signer, gen, data),
		Type:            tx.Type(),
		SignerPublicKey: strings.ToUpper(tx.SignerPublicKey),
		NetworkType:     tx.NetworkType,
	}, nil
}

// OpenPayload 拆出签名、公钥与签名数据, 供节点侧或测试校验
func OpenPayload(payloadHex string) (signature, signer, data []byte, err error) {
	raw, err := hex.DecodeString(payloadHex)
	if err != nil {
		return nil, nil, nil, err
	}
	var env envelope
	if err := rlp.DecodeBytes(raw, &env); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	return env.Signature, env.Signer, env.Data, nil
}

// BroadcastResult 单笔交易的广播结果
type BroadcastResult struct {
	Hash    string          `json:"hash"`
	Type    TransactionType `json:"type"`
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	// Deferred 哈希锁在超时前未确认, bonded 交易交给后台任务继续等待
	Deferred bool `json:"deferred,omitempty"`
}

// TransactionGroup 节点返回的交易所处阶段
type TransactionGroup string

const (
	GroupUnconfirmed TransactionGroup = "unconfirmed"
	GroupConfirmed   TransactionGroup = "confirmed"
	GroupPartial     TransactionGroup = "partial"
	GroupFailed      TransactionGroup = "failed"
)

type TransactionStatus struct {
	Hash   string           `json:"hash"`
	Group  TransactionGroup `json:"group"`
	Code   string           `json:"code"`
	Height uint64           `json:"height"`
}

// ConfirmationEvent 监听器推送的 "某地址有交易被确认"
type ConfirmationEvent struct {
	Hash    string `json:"hash"`
	Height  uint64 `json:"height"`
	Address string `json:"address"`
}
