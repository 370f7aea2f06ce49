package signer

import (
	"context"
	"crypto/ecdsa"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/bip32"
	"desk-wallet/pkg/bip39"
	"desk-wallet/pkg/keystore"

	"github.com/ethereum/go-ethereum/crypto"
)

// Account 内存中的已解锁账户, 只在一次签名流程内存活
type Account struct {
	key    *ecdsa.PrivateKey
	public model.PublicAccount
}

func NewAccount(key *ecdsa.PrivateKey) *Account {
	return &Account{key: key, public: publicAccount(&key.PublicKey)}
}

// Unlock 用密码解开 keystore, 按其中记录的路径 (缺省用 defaultPath) 派生账户私钥。
// 密码错误返回 errno.ErrPasswordIncorrect, 调用方可以让用户重新输入。
func Unlock(ks *keystore.EncryptedKeyJSON, password, defaultPath string) (*Account, error) {
	mnemonic, err := keystore.DecryptMnemonic(ks, password)
	if err != nil {
		return nil, err
	}
	return FromMnemonic(mnemonic, firstNonEmpty(ks.Path, defaultPath))
}

// FromMnemonic 助记词 -> 种子 -> BIP-32 路径派生
func FromMnemonic(mnemonic, path string) (*Account, error) {
	seed, err := bip39.NewMnemonicService().MnemonicToSeed(mnemonic, "")
	if err != nil {
		return nil, err
	}
	key, err := bip32.DeriveAccountKey(seed, path)
	if err != nil {
		return nil, err
	}
	return NewAccount(key), nil
}

func (a *Account) PublicAccount() model.PublicAccount {
	return a.public
}

// PrivateKey 供导入外部签名设备使用
func (a *Account) PrivateKey() *ecdsa.PrivateKey {
	return a.key
}

func (a *Account) Sign(ctx context.Context, tx *model.Transaction, generationHash string) (*model.SignedTransaction, error) {
	return signTransaction(ctx, a.public, a.signDigest, tx, generationHash)
}

func (a *Account) SignCosignature(ctx context.Context, parentHash string) (*model.CosignatureSignedTransaction, error) {
	return signCosignature(ctx, a.public, a.signDigest, parentHash)
}

func (a *Account) signDigest(_ context.Context, digest []byte) ([]byte, error) {
	return crypto.Sign(digest, a.key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
