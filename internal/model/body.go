package model

// Body 交易体, 封闭的联合类型: 只有本包内的类型可以实现
type Body interface {
	Kind() TransactionType
	Accept(v BodyVisitor) error
	sealed()
}

// BodyVisitor 每种交易体一个方法, 新增交易体时所有分派点都会编译失败, 直到补齐处理
type BodyVisitor interface {
	VisitTransfer(*Transfer) error
	VisitMosaicDefinition(*MosaicDefinition) error
	VisitMosaicSupplyChange(*MosaicSupplyChange) error
	VisitNamespaceRegistration(*NamespaceRegistration) error
	VisitAddressAlias(*AddressAlias) error
	VisitMosaicAlias(*MosaicAlias) error
	VisitMultisigAccountModification(*MultisigAccountModification) error
	VisitHashLock(*HashLock) error
	VisitAggregate(*Aggregate) error
	VisitMetadata(*Metadata) error
	VisitOpaque(*Opaque) error
}

type Transfer struct {
	// Recipient 40 位 Hex 地址, 或以 '@' 开头的命名空间别名 ID (Hex)
	Recipient string
	Mosaics   []Mosaic
	Message   string
	// Encrypted 仅标记消息是否为加密消息, 加密由外部完成
	Encrypted bool
}

type MosaicFlags struct {
	SupplyMutable bool
	Transferable  bool
	Restrictable  bool
}

func (f MosaicFlags) Byte() uint8 {
	var b uint8
	if f.SupplyMutable {
		b |= 1
	}
	if f.Transferable {
		b |= 2
	}
	if f.Restrictable {
		b |= 4
	}
	return b
}

func MosaicFlagsFromByte(b uint8) MosaicFlags {
	return MosaicFlags{SupplyMutable: b&1 != 0, Transferable: b&2 != 0, Restrictable: b&4 != 0}
}

type MosaicDefinition struct {
	Nonce        uint32
	MosaicID     MosaicID
	Flags        MosaicFlags
	Divisibility uint8
	// Duration 为 0 表示永久
	Duration uint64
}

type SupplyAction uint8

const (
	SupplyDecrease SupplyAction = 0
	SupplyIncrease SupplyAction = 1
)

type MosaicSupplyChange struct {
	MosaicID MosaicID
	Action   SupplyAction
	Delta    uint64
}

type NamespaceRegistrationType uint8

const (
	RootNamespace NamespaceRegistrationType = 0
	SubNamespace  NamespaceRegistrationType = 1
)

type NamespaceRegistration struct {
	RegistrationType NamespaceRegistrationType
	Name             string
	NamespaceID      NamespaceID
	// 根命名空间用 Duration, 子命名空间用 ParentID
	Duration uint64
	ParentID NamespaceID
}

type AliasAction uint8

const (
	AliasUnlink AliasAction = 0
	AliasLink   AliasAction = 1
)

type AddressAlias struct {
	NamespaceID NamespaceID
	Address     string
	Action      AliasAction
}

type MosaicAlias struct {
	NamespaceID NamespaceID
	MosaicID    MosaicID
	Action      AliasAction
}

type MultisigAccountModification struct {
	MinApprovalDelta int8
	MinRemovalDelta  int8
	AddressAdditions []string
	AddressDeletions []string
}

// HashLock 为 bonded 聚合交易锁定资金, Hash 为已签名聚合交易的哈希
type HashLock struct {
	Mosaic   Mosaic
	Duration uint64
	Hash     string
}

type Cosignature struct {
	SignerPublicKey string `json:"signerPublicKey"`
	Signature       string `json:"signature"`
}

// Aggregate complete 或 bonded, 内部交易顺序即执行顺序
type Aggregate struct {
	Bonded            bool
	InnerTransactions []*Transaction
	Cosignatures      []Cosignature
}

type MetadataType uint8

const (
	AccountMetadata   MetadataType = 0
	MosaicMetadata    MetadataType = 1
	NamespaceMetadata MetadataType = 2
)

// Metadata 账户/马赛克/命名空间元数据; Value 为与旧值异或后的增量
type Metadata struct {
	MetadataType   MetadataType
	TargetAddress  string
	ScopedKey      uint64
	TargetID       uint64
	ValueSizeDelta int16
	Value          []byte
}

// Opaque 钱包不解析的交易, 原样透传
type Opaque struct {
	TxType TransactionType
	Data   []byte
}

func (*Transfer) Kind() TransactionType                    { return TypeTransfer }
func (*MosaicDefinition) Kind() TransactionType            { return TypeMosaicDefinition }
func (*MosaicSupplyChange) Kind() TransactionType          { return TypeMosaicSupplyChange }
func (*NamespaceRegistration) Kind() TransactionType       { return TypeNamespaceRegistration }
func (*AddressAlias) Kind() TransactionType                { return TypeAddressAlias }
func (*MosaicAlias) Kind() TransactionType                 { return TypeMosaicAlias }
func (*MultisigAccountModification) Kind() TransactionType { return TypeMultisigAccountModification }
func (*HashLock) Kind() TransactionType                    { return TypeHashLock }
func (o *Opaque) Kind() TransactionType                    { return o.TxType }

func (a *Aggregate) Kind() TransactionType {
	if a.Bonded {
		return TypeAggregateBonded
	}
	return TypeAggregateComplete
}

func (m *Metadata) Kind() TransactionType {
	switch m.MetadataType {
	case MosaicMetadata:
		return TypeMosaicMetadata
	case NamespaceMetadata:
		return TypeNamespaceMetadata
	default:
		return TypeAccountMetadata
	}
}

func (b *Transfer) Accept(v BodyVisitor) error         { return v.VisitTransfer(b) }
func (b *MosaicDefinition) Accept(v BodyVisitor) error { return v.VisitMosaicDefinition(b) }
func (b *MosaicSupplyChange) Accept(v BodyVisitor) error {
	return v.VisitMosaicSupplyChange(b)
}
func (b *NamespaceRegistration) Accept(v BodyVisitor) error {
	return v.VisitNamespaceRegistration(b)
}
func (b *AddressAlias) Accept(v BodyVisitor) error { return v.VisitAddressAlias(b) }
func (b *MosaicAlias) Accept(v BodyVisitor) error  { return v.VisitMosaicAlias(b) }
func (b *MultisigAccountModification) Accept(v BodyVisitor) error {
	return v.VisitMultisigAccountModification(b)
}
func (b *HashLock) Accept(v BodyVisitor) error  { return v.VisitHashLock(b) }
func (b *Aggregate) Accept(v BodyVisitor) error { return v.VisitAggregate(b) }
func (b *Metadata) Accept(v BodyVisitor) error  { return v.VisitMetadata(b) }
func (b *Opaque) Accept(v BodyVisitor) error    { return v.VisitOpaque(b) }

func (*Transfer) sealed()                    {}
func (*MosaicDefinition) sealed()            {}
func (*MosaicSupplyChange) sealed()          {}
func (*NamespaceRegistration) sealed()       {}
func (*AddressAlias) sealed()                {}
func (*MosaicAlias) sealed()                 {}
func (*MultisigAccountModification) sealed() {}
func (*HashLock) sealed()                    {}
func (*Aggregate) sealed()                   {}
func (*Metadata) sealed()                    {}
func (*Opaque) sealed()                      {}
