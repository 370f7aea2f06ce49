package signer

import (
	"desk-wallet/pkg/keystore"
)

// KeystoreUnlocker 每次解锁都重新读取 keystore 文件, 解锁后的账户不在流程之间保留
type KeystoreUnlocker struct {
	Path           string
	DerivationPath string
}

// Address keystore 中明文保存的地址, 不需要密码
func (u KeystoreUnlocker) Address() (string, error) {
	ks, err := keystore.LoadFromFile(u.Path)
	if err != nil {
		return "", err
	}
	return ks.Address, nil
}

func (u KeystoreUnlocker) Unlock(password string) (Signer, error) {
	ks, err := keystore.LoadFromFile(u.Path)
	if err != nil {
		return nil, err
	}
	return Unlock(ks, password, u.DerivationPath)
}

// ChangePassword 重新加密 keystore 文件, 旧密码错误时文件不变
func (u KeystoreUnlocker) ChangePassword(oldPassword, newPassword, hint string) error {
	ks, err := keystore.LoadFromFile(u.Path)
	if err != nil {
		return err
	}
	updated, err := keystore.ChangePassword(ks, oldPassword, newPassword, hint)
	if err != nil {
		return err
	}
	return updated.SaveToFile(u.Path)
}
