package crypto_util

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// CalculateSHA256 计算输入的 SHA256 哈希值。
func CalculateSHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Keccak256 返回多段输入拼接后的 Keccak256 摘要。
// 交易哈希、签名摘要、命名空间/马赛克 ID 都基于它。
func Keccak256(data ...[]byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	for _, d := range data {
		hash.Write(d)
	}
	return hash.Sum(nil)
}

// CalculateKeccak256 计算输入的 Keccak256 哈希值 (大写 Hex, 与链上哈希的展示格式一致)。
func CalculateKeccak256(data ...[]byte) string {
	return strings.ToUpper(hex.EncodeToString(Keccak256(data...)))
}

// CalculateBlake3 计算输入的 Blake3 哈希值。
func CalculateBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Blake3Uint64 取 Blake3 摘要的前 8 字节 (小端) 作为 uint64, 用于元数据 scoped key
func Blake3Uint64(data []byte) uint64 {
	hash := blake3.Sum256(data)
	return binary.LittleEndian.Uint64(hash[:8])
}
