package model

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
)

var ErrMalformedTransaction = errors.New("malformed transaction")

// wireHeader 签名数据 = RLP(header), 交易体单独编码后放在 Body 中
type wireHeader struct {
	Type     uint16
	Network  uint8
	Version  uint8
	Deadline uint64
	MaxFee   uint64
	Signer   []byte
	Body     []byte
}

type wireMosaic struct {
	ID     uint64
	Amount uint64
}

type wireTransfer struct {
	Recipient string
	Mosaics   []wireMosaic
	Message   []byte
	Encrypted bool
}

type wireMosaicDefinition struct {
	Nonce        uint32
	ID           uint64
	Flags        uint8
	Divisibility uint8
	Duration     uint64
}

type wireSupplyChange struct {
	ID     uint64
	Action uint8
	Delta  uint64
}

type wireNamespace struct {
	RegistrationType uint8
	ID               uint64
	ParentID         uint64
	Duration         uint64
	Name             string
}

type wireAddressAlias struct {
	NamespaceID uint64
	Address     string
	Action      uint8
}

type wireMosaicAlias struct {
	NamespaceID uint64
	MosaicID    uint64
	Action      uint8
}

// RLP 不支持有符号整数, 差值按补码存为 uint8
type wireMultisig struct {
	MinApprovalDelta uint8
	MinRemovalDelta  uint8
	Additions        []string
	Deletions        []string
}

type wireHashLock struct {
	MosaicID uint64
	Amount   uint64
	Duration uint64
	Hash     []byte
}

type wireCosignature struct {
	Signer    []byte
	Signature []byte
}

type wireAggregate struct {
	Inner        [][]byte
	Cosignatures []wireCosignature
}

type wireMetadata struct {
	MetadataType   uint8
	Target         string
	ScopedKey      uint64
	TargetID       uint64
	ValueSizeDelta uint16
	Value          []byte
}

// Encode 交易的规范编码, 即签名所覆盖的数据
func Encode(tx *Transaction) ([]byte, error) {
	if tx == nil || tx.Body == nil {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedTransaction)
	}
	enc := &bodyEncoder{}
	if err := tx.Body.Accept(enc); err != nil {
		return nil, err
	}
	signer, err := decodeHex(tx.SignerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: signer public key: %v", ErrMalformedTransaction, err)
	}
	return rlp.EncodeToBytes(&wireHeader{
		Type:     uint16(tx.Type()),
		Network:  uint8(tx.NetworkType),
		Version:  tx.Version,
		Deadline: uint64(tx.Deadline),
		MaxFee:   tx.MaxFee,
		Signer:   signer,
		Body:     enc.out,
	})
}

// Size 签名后 payload 的近似字节数 (编码 + 签名 + 公钥), 用于计算实际手续费
func Size(tx *Transaction) int {
	data, err := Encode(tx)
	if err != nil {
		return 0
	}
	return len(data) + 65 + 33
}

type bodyEncoder struct {
	out []byte
}

func (e *bodyEncoder) put(v interface{}) error {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTransaction, err)
	}
	e.out = b
	return nil
}

func (e *bodyEncoder) VisitTransfer(b *Transfer) error {
	mosaics := make([]wireMosaic, len(b.Mosaics))
	for i, m := range b.Mosaics {
		mosaics[i] = wireMosaic{ID: uint64(m.ID), Amount: m.Amount}
	}
	return e.put(&wireTransfer{Recipient: b.Recipient, Mosaics: mosaics, Message: []byte(b.Message), Encrypted: b.Encrypted})
}

func (e *bodyEncoder) VisitMosaicDefinition(b *MosaicDefinition) error {
	return e.put(&wireMosaicDefinition{
		Nonce:        b.Nonce,
		ID:           uint64(b.MosaicID),
		Flags:        b.Flags.Byte(),
		Divisibility: b.Divisibility,
		Duration:     b.Duration,
	})
}

func (e *bodyEncoder) VisitMosaicSupplyChange(b *MosaicSupplyChange) error {
	return e.put(&wireSupplyChange{ID: uint64(b.MosaicID), Action: uint8(b.Action), Delta: b.Delta})
}

func (e *bodyEncoder) VisitNamespaceRegistration(b *NamespaceRegistration) error {
	return e.put(&wireNamespace{
		RegistrationType: uint8(b.RegistrationType),
		ID:               uint64(b.NamespaceID),
		ParentID:         uint64(b.ParentID),
		Duration:         b.Duration,
		Name:             b.Name,
	})
}

func (e *bodyEncoder) VisitAddressAlias(b *AddressAlias) error {
	return e.put(&wireAddressAlias{NamespaceID: uint64(b.NamespaceID), Address: b.Address, Action: uint8(b.Action)})
}

func (e *bodyEncoder) VisitMosaicAlias(b *MosaicAlias) error {
	return e.put(&wireMosaicAlias{NamespaceID: uint64(b.NamespaceID), MosaicID: uint64(b.MosaicID), Action: uint8(b.Action)})
}

func (e *bodyEncoder) VisitMultisigAccountModification(b *MultisigAccountModification) error {
	return e.put(&wireMultisig{
		MinApprovalDelta: uint8(b.MinApprovalDelta),
		MinRemovalDelta:  uint8(b.MinRemovalDelta),
		Additions:        nonNil(b.AddressAdditions),
		Deletions:        nonNil(b.AddressDeletions),
	})
}

func (e *bodyEncoder) VisitHashLock(b *HashLock) error {
	hash, err := decodeHex(b.Hash)
	if err != nil || len(hash) != 32 {
		return fmt.Errorf("%w: hash lock must reference a 32 byte hash", ErrMalformedTransaction)
	}
	return e.put(&wireHashLock{MosaicID: uint64(b.Mosaic.ID), Amount: b.Mosaic.Amount, Duration: b.Duration, Hash: hash})
}

func (e *bodyEncoder) VisitAggregate(b *Aggregate) error {
	w := wireAggregate{Inner: make([][]byte, 0, len(b.InnerTransactions))}
	for i, inner := range b.InnerTransactions {
		if inner.IsAggregate() {
			return fmt.Errorf("%w: nested aggregate at index %d", ErrMalformedTransaction, i)
		}
		data, err := Encode(inner)
		if err != nil {
			return fmt.Errorf("inner transaction %d: %w", i, err)
		}
		w.Inner = append(w.Inner, data)
	}
	for _, c := range b.Cosignatures {
		signer, err := decodeHex(c.SignerPublicKey)
		if err != nil {
			return fmt.Errorf("%w: cosigner: %v", ErrMalformedTransaction, err)
		}
		sig, err := decodeHex(c.Signature)
		if err != nil {
			return fmt.Errorf("%w: cosignature: %v", ErrMalformedTransaction, err)
		}
		w.Cosignatures = append(w.Cosignatures, wireCosignature{Signer: signer, Signature: sig})
	}
	return e.put(&w)
}

func (e *bodyEncoder) VisitMetadata(b *Metadata) error {
	return e.put(&wireMetadata{
		MetadataType:   uint8(b.MetadataType),
		Target:         b.TargetAddress,
		ScopedKey:      b.ScopedKey,
		TargetID:       b.TargetID,
		ValueSizeDelta: uint16(b.ValueSizeDelta),
		Value:          b.Value,
	})
}

func (e *bodyEncoder) VisitOpaque(b *Opaque) error {
	e.out = append([]byte(nil), b.Data...)
	return nil
}

func decodeHex(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
