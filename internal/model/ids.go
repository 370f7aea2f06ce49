package model

import (
	"encoding/binary"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"desk-wallet/pkg/crypto_util"
)

// NetworkType 网络标识, 104 主网 / 152 测试网
type NetworkType uint8

const (
	MainNet NetworkType = 104
	TestNet NetworkType = 152
)

func (n NetworkType) String() string {
	switch n {
	case MainNet:
		return "MAIN_NET"
	case TestNet:
		return "TEST_NET"
	default:
		return "UNKNOWN(" + strconv.Itoa(int(n)) + ")"
	}
}

// 命名空间 ID 最高位为 1, 马赛克 ID 最高位为 0, 交易里的 "未解析马赛克 ID" 据此区分
const namespaceFlag = uint64(1) << 63

// MosaicID 也用来承载别名形式的未解析 ID (最高位为 1)
type MosaicID uint64

func (id MosaicID) Hex() string {
	return fmt.Sprintf("%016X", uint64(id))
}

func (id MosaicID) String() string { return id.Hex() }

// IsAlias 是否为指向马赛克的命名空间别名
func (id MosaicID) IsAlias() bool {
	return uint64(id)&namespaceFlag != 0
}

type NamespaceID uint64

func (id NamespaceID) Hex() string {
	return fmt.Sprintf("%016X", uint64(id))
}

func (id NamespaceID) String() string { return id.Hex() }

// AsMosaicID 以别名方式引用马赛克
func (id NamespaceID) AsMosaicID() MosaicID {
	return MosaicID(id)
}

func parseHexID(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if len(s) == 0 || len(s) > 16 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return strconv.ParseUint(s, 16, 64)
}

func ParseMosaicID(s string) (MosaicID, error) {
	v, err := parseHexID(s)
	return MosaicID(v), err
}

func ParseNamespaceID(s string) (NamespaceID, error) {
	v, err := parseHexID(s)
	if err == nil && v&namespaceFlag == 0 {
		return 0, fmt.Errorf("invalid namespace id %q", s)
	}
	return NamespaceID(v), err
}

var namespacePart = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

const (
	MaxNamespacePartLength = 64
	MaxNamespaceDepth      = 3
)

// NamespaceIDFromName 由父 ID 与名称片段派生子命名空间 ID
func NamespaceIDFromName(name string, parent NamespaceID) NamespaceID {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(parent))
	digest := crypto_util.Keccak256(buf[:], []byte(name))
	return NamespaceID(binary.LittleEndian.Uint64(digest[:8]) | namespaceFlag)
}

// NamespacePath 解析 "a.b.c" 形式的全名, 返回从根到叶的 ID
func NamespacePath(fullName string) ([]NamespaceID, error) {
	parts := strings.Split(fullName, ".")
	if len(parts) > MaxNamespaceDepth {
		return nil, fmt.Errorf("namespace %q too deep", fullName)
	}
	path := make([]NamespaceID, 0, len(parts))
	var parent NamespaceID
	for _, part := range parts {
		if len(part) > MaxNamespacePartLength || !namespacePart.MatchString(part) {
			return nil, fmt.Errorf("invalid namespace name %q", part)
		}
		id := NamespaceIDFromName(part, parent)
		path = append(path, id)
		parent = id
	}
	return path, nil
}

// NamespaceIDFromFullName 取路径最后一段
func NamespaceIDFromFullName(fullName string) (NamespaceID, error) {
	path, err := NamespacePath(fullName)
	if err != nil {
		return 0, err
	}
	return path[len(path)-1], nil
}

// MosaicIDFromNonce 马赛克 ID = Keccak(nonce || owner)[:8], 最高位清零
func MosaicIDFromNonce(nonce uint32, owner string) MosaicID {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], nonce)
	digest := crypto_util.Keccak256(buf[:], []byte(owner))
	return MosaicID(binary.LittleEndian.Uint64(digest[:8]) &^ namespaceFlag)
}

// Mosaic 资产及其绝对数量 (最小单位)
type Mosaic struct {
	ID     MosaicID `json:"id"`
	Amount uint64   `json:"amount"`
}

type PublicAccount struct {
	PublicKey string `json:"publicKey"`
	Address   string `json:"address"`
}

// Deadline 相对网络创世纪元的毫秒数
type Deadline uint64

// NewDeadline now + window, 以网络纪元为零点
func NewDeadline(now time.Time, epochAdjustment int64, window time.Duration) Deadline {
	ms := now.Add(window).UnixMilli() - epochAdjustment*1000
	if ms < 0 {
		return 0
	}
	return Deadline(ms)
}

func (d Deadline) Time(epochAdjustment int64) time.Time {
	return time.UnixMilli(int64(d) + epochAdjustment*1000).UTC()
}
