package model

import "fmt"

// TransactionType 链上交易类型
type TransactionType uint16

const (
	TypeTransfer                    TransactionType = 0x4154
	TypeMosaicDefinition            TransactionType = 0x414D
	TypeMosaicSupplyChange          TransactionType = 0x424D
	TypeNamespaceRegistration       TransactionType = 0x414E
	TypeAddressAlias                TransactionType = 0x424E
	TypeMosaicAlias                 TransactionType = 0x434E
	TypeMultisigAccountModification TransactionType = 0x4155
	TypeHashLock                    TransactionType = 0x4148
	TypeAggregateComplete           TransactionType = 0x4141
	TypeAggregateBonded             TransactionType = 0x4241
	TypeAccountMetadata             TransactionType = 0x4144
	TypeMosaicMetadata              TransactionType = 0x4244
	TypeNamespaceMetadata           TransactionType = 0x4344
	TypeSecretLock                  TransactionType = 0x4152
	TypeSecretProof                 TransactionType = 0x4252
	TypeAccountKeyLink              TransactionType = 0x414C
)

var typeNames = map[TransactionType]string{
	TypeTransfer:                    "transfer",
	TypeMosaicDefinition:            "mosaic_definition",
	TypeMosaicSupplyChange:          "mosaic_supply_change",
	TypeNamespaceRegistration:       "namespace_registration",
	TypeAddressAlias:                "address_alias",
	TypeMosaicAlias:                 "mosaic_alias",
	TypeMultisigAccountModification: "multisig_account_modification",
	TypeHashLock:                    "hash_lock",
	TypeAggregateComplete:           "aggregate_complete",
	TypeAggregateBonded:             "aggregate_bonded",
	TypeAccountMetadata:             "account_metadata",
	TypeMosaicMetadata:              "mosaic_metadata",
	TypeNamespaceMetadata:           "namespace_metadata",
	TypeSecretLock:                  "secret_lock",
	TypeSecretProof:                 "secret_proof",
	TypeAccountKeyLink:              "account_key_link",
}

func (t TransactionType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown_0x%04X", uint16(t))
}

// Version 当前所有交易体的版本
const Version uint8 = 1

// Transaction 未签名交易: 公共头 + 按类型区分的交易体。
// 进入暂存区后除 MaxFee 外不再修改。
type Transaction struct {
	NetworkType     NetworkType `json:"networkType"`
	Version         uint8       `json:"version"`
	Deadline        Deadline    `json:"deadline"`
	MaxFee          uint64      `json:"maxFee"`
	SignerPublicKey string      `json:"signerPublicKey,omitempty"`
	Body            Body        `json:"-"`

	// 已上链交易才有
	Info *TransactionInfo `json:"info,omitempty"`
}

type TransactionInfo struct {
	Height uint64 `json:"height"`
	Hash   string `json:"hash"`
	Index  uint32 `json:"index"`
}

// Type 由交易体决定
func (t *Transaction) Type() TransactionType {
	if t.Body == nil {
		return 0
	}
	return t.Body.Kind()
}

// Clone 浅拷贝头部, 交易体按不可变值共享
func (t *Transaction) Clone() *Transaction {
	c := *t
	if t.Info != nil {
		info := *t.Info
		c.Info = &info
	}
	return &c
}

// ToAggregate 转为聚合交易的内部交易: 指定签名账户, 去掉手续费与截止时间
func (t *Transaction) ToAggregate(signer PublicAccount) *Transaction {
	c := t.Clone()
	c.SignerPublicKey = signer.PublicKey
	c.MaxFee = 0
	c.Deadline = 0
	c.Info = nil
	return c
}

// IsAggregate 是否为聚合交易 (complete / bonded)
func (t *Transaction) IsAggregate() bool {
	_, ok := t.Body.(*Aggregate)
	return ok
}
