package address

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

// Length 原始地址的 Hex 长度 (20 字节)
const Length = 40

var ErrInvalidAddress = errors.New("invalid address")

// FromPublicKey 将公钥转换为原始地址 (大写 Hex, 无 0x 前缀)
// 1. Keccak-256(未压缩公钥去掉 0x04) 2. 取后 20 字节
func FromPublicKey(pub *ecdsa.PublicKey) string {
	addr := crypto.PubkeyToAddress(*pub)
	return strings.ToUpper(hex.EncodeToString(addr.Bytes()))
}

// FromPublicKeyHex 支持压缩 (33 bytes) 与未压缩 (65 bytes) 公钥
func FromPublicKeyHex(pubHex string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(pubHex, "0x"))
	if err != nil {
		return "", err
	}
	var pub *ecdsa.PublicKey
	switch len(raw) {
	case 33:
		pub, err = crypto.DecompressPubkey(raw)
	case 65:
		pub, err = crypto.UnmarshalPubkey(raw)
	default:
		return "", errors.New("invalid public key length")
	}
	if err != nil {
		return "", err
	}
	return FromPublicKey(pub), nil
}

// Normalize 去掉 0x 与分隔符, 转为大写并校验长度
func Normalize(addr string) (string, error) {
	addr = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(addr), "0x"), "0X")
	addr = strings.ToUpper(strings.ReplaceAll(addr, "-", ""))
	if !IsValid(addr) {
		return "", ErrInvalidAddress
	}
	return addr, nil
}

// IsValid 只接受 40 位大写/小写 Hex
func IsValid(addr string) bool {
	if len(addr) != Length {
		return false
	}
	_, err := hex.DecodeString(addr)
	return err == nil
}

// Pretty 每 6 个字符插入一个 '-', 便于人工核对
func Pretty(addr string) string {
	var sb strings.Builder
	for i := 0; i < len(addr); i++ {
		if i > 0 && i%6 == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(addr[i])
	}
	return sb.String()
}
