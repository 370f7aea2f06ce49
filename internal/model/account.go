package model

// AccountInfo 账户链上状态
type AccountInfo struct {
	Address    string   `json:"address"`
	PublicKey  string   `json:"publicKey"`
	Height     uint64   `json:"height"`
	Importance uint64   `json:"importance"`
	Mosaics    []Mosaic `json:"mosaics"`
}

// MultisigInfo 多签信息; MultisigAddresses 为本账户作为联署人的多签账户
type MultisigInfo struct {
	AccountAddress       string   `json:"accountAddress"`
	MinApproval          uint32   `json:"minApproval"`
	MinRemoval           uint32   `json:"minRemoval"`
	CosignatoryAddresses []string `json:"cosignatoryAddresses"`
	MultisigAddresses    []string `json:"multisigAddresses"`
}

func (m *MultisigInfo) IsMultisig() bool {
	return m != nil && m.MinApproval > 0
}

type MosaicInfo struct {
	ID           MosaicID    `json:"id"`
	Supply       uint64      `json:"supply"`
	Divisibility uint8       `json:"divisibility"`
	Owner        string      `json:"ownerAddress"`
	Flags        MosaicFlags `json:"flags"`
	Duration     uint64      `json:"duration"`
	StartHeight  uint64      `json:"startHeight"`
	Name         string      `json:"name,omitempty"`
}

type NamespaceInfo struct {
	ID          NamespaceID `json:"id"`
	Name        string      `json:"name"`
	ParentID    NamespaceID `json:"parentId"`
	Owner       string      `json:"ownerAddress"`
	StartHeight uint64      `json:"startHeight"`
	EndHeight   uint64      `json:"endHeight"`
	// 别名目标, 两者至多一个非空
	AliasAddress string   `json:"aliasAddress,omitempty"`
	AliasMosaic  MosaicID `json:"aliasMosaicId,omitempty"`
}

// MetadataEntry 链上元数据条目, 以 CompositeHash 去重
type MetadataEntry struct {
	CompositeHash string       `json:"compositeHash"`
	MetadataType  MetadataType `json:"metadataType"`
	SourceAddress string       `json:"sourceAddress"`
	TargetAddress string       `json:"targetAddress"`
	ScopedKey     string       `json:"scopedMetadataKey"`
	TargetID      string       `json:"targetId"`
	Value         string       `json:"value"`
}

// SignerInfo 钱包可用的签名身份: 自身或其作为联署人的多签账户
type SignerInfo struct {
	PublicKey            string `json:"publicKey"`
	Address              string `json:"address"`
	RequiredCosignatures uint32 `json:"requiredCosignatures"`
	Multisig             bool   `json:"multisig"`
}
