package bip39

import (
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"
)

var ErrInvalidMnemonic = errors.New("无效的助记词")

// MnemonicService 提供助记词相关的功能
type MnemonicService struct {
	bitSize int
}

// NewMnemonicService 创建一个新的助记词服务实例, 默认 24 个单词 (256 bits)
func NewMnemonicService() *MnemonicService {
	return &MnemonicService{bitSize: 256}
}

// WithWords 按单词数设置熵长度, 只接受 12/15/18/21/24
func (s *MnemonicService) WithWords(words int) (*MnemonicService, error) {
	if words < 12 || words > 24 || words%3 != 0 {
		return nil, fmt.Errorf("不支持的单词数: %d", words)
	}
	// 每 3 个单词对应 32 bits 熵
	return &MnemonicService{bitSize: words / 3 * 32}, nil
}

// GenerateMnemonic 生成一个新的随机助记词 (BIP-39)。
func (s *MnemonicService) GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(s.bitSize)
	if err != nil {
		return "", fmt.Errorf("生成熵失败: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("生成助记词失败: %w", err)
	}

	return mnemonic, nil
}

// ValidateMnemonic 验证助记词是否有效。
func (s *MnemonicService) ValidateMnemonic(mnemonic string) bool {
	return bip39.IsMnemonicValid(mnemonic)
}

// MnemonicToSeed 校验助记词后转换为种子 (BIP-39 Seed)。
// passphrase 为可选的 "第25个单词", 不需要时传空字符串。
func (s *MnemonicService) MnemonicToSeed(mnemonic string, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	return seed, nil
}
