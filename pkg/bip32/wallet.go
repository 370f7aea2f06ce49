package bip32

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// HDKey 实现了 ExtendedKey 接口，封装了 hdkeychain.ExtendedKey
type HDKey struct {
	key *hdkeychain.ExtendedKey
}

func (k *HDKey) String() string {
	return k.key.String()
}

func (k *HDKey) ECPubKey() (*btcec.PublicKey, error) {
	return k.key.ECPubKey()
}

func (k *HDKey) ECPrivKey() (*btcec.PrivateKey, error) {
	return k.key.ECPrivKey()
}

func (k *HDKey) ECDSA() (*ecdsa.PrivateKey, error) {
	if !k.key.IsPrivate() {
		return nil, ErrPublicOnly
	}
	priv, err := k.key.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return priv.ToECDSA(), nil
}

func (k *HDKey) Derive(index uint32) (ExtendedKey, error) {
	childKey, err := k.key.Derive(index)
	if err != nil {
		return nil, fmt.Errorf("派生子密钥失败: %w", err)
	}
	return &HDKey{key: childKey}, nil
}

func (k *HDKey) IsPrivate() bool {
	return k.key.IsPrivate()
}

func (k *HDKey) Neuter() (ExtendedKey, error) {
	neuterKey, err := k.key.Neuter()
	if err != nil {
		return nil, fmt.Errorf("转换公钥失败: %w", err)
	}
	return &HDKey{key: neuterKey}, nil
}

// Wallet 实现 HDWallet 接口
type Wallet struct {
	masterKey *HDKey
}

// NewMasterKeyFromSeed 使用 BIP-39 种子生成主密钥。
// 链参数只决定 xprv/xpub 的版本字节, 不影响派生出的私钥。
func NewMasterKeyFromSeed(seed []byte) (*Wallet, error) {
	if len(seed) < hdkeychain.MinSeedBytes || len(seed) > hdkeychain.MaxSeedBytes {
		return nil, ErrInvalidSeed
	}

	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("生成主密钥失败: %w", err)
	}

	return &Wallet{masterKey: &HDKey{key: masterKey}}, nil
}

func (w *Wallet) MasterKey() ExtendedKey {
	return w.masterKey
}

// DerivePath 解析路径并派生密钥
// 支持格式: m/44'/4343'/0'/0'/0' 或 m/44h/4343h/0h/0h/0h
func (w *Wallet) DerivePath(path string) (ExtendedKey, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == "m" {
		return w.masterKey, nil
	}
	if !strings.HasPrefix(path, "m/") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	var current ExtendedKey = w.masterKey
	for _, segment := range strings.Split(path[2:], "/") {
		isHardened := false
		if strings.HasSuffix(segment, "'") || strings.HasSuffix(segment, "h") {
			isHardened = true
			segment = segment[:len(segment)-1]
		}

		val, err := strconv.ParseUint(segment, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: 路径段 '%s': %v", ErrInvalidPath, segment, err)
		}
		index := uint32(val)
		if isHardened {
			index += hdkeychain.HardenedKeyStart
		}

		if current, err = current.Derive(index); err != nil {
			return nil, err
		}
	}

	return current, nil
}

// DeriveAccountKey 从种子按路径派生账户私钥
func DeriveAccountKey(seed []byte, path string) (*ecdsa.PrivateKey, error) {
	wallet, err := NewMasterKeyFromSeed(seed)
	if err != nil {
		return nil, err
	}
	key, err := wallet.DerivePath(path)
	if err != nil {
		return nil, err
	}
	return key.ECDSA()
}
