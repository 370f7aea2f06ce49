package keystore

import (
	"path/filepath"
	"testing"

	"desk-wallet/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestEncryptDecryptMnemonic(t *testing.T) {
	password := "secure-password"

	// 1. Encrypt
	keyJSON, err := EncryptMnemonic(testMnemonic, password, WithScryptN(LightScryptN))
	require.NoError(t, err)
	assert.Equal(t, "aes-256-gcm", keyJSON.Crypto.Cipher)
	assert.Equal(t, LightScryptN, keyJSON.Crypto.KDFParams.N)
	assert.Len(t, keyJSON.Id, 36)

	// 2. Decrypt with correct password
	plaintext, err := DecryptMnemonic(keyJSON, password)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, plaintext)

	// 3. Decrypt with wrong password
	_, err = DecryptMnemonic(keyJSON, "wrong-password")
	assert.ErrorIs(t, err, errno.ErrPasswordIncorrect)
}

func TestFileSaveLoad(t *testing.T) {
	password := "123456"
	filename := filepath.Join(t.TempDir(), "wallet.json")

	keyJSON, err := EncryptMnemonic(testMnemonic, password,
		WithScryptN(LightScryptN),
		WithAccount("7E5F4552091A69125D5DFCB7B8C2659029395BDF", "m/44'/4343'/0'/0'/0'"))
	require.NoError(t, err)

	require.NoError(t, keyJSON.SaveToFile(filename))

	loaded, err := LoadFromFile(filename)
	require.NoError(t, err)
	assert.Equal(t, keyJSON.Id, loaded.Id)
	assert.Equal(t, "7E5F4552091A69125D5DFCB7B8C2659029395BDF", loaded.Address)
	assert.Equal(t, "m/44'/4343'/0'/0'/0'", loaded.Path)

	decrypted, err := DecryptMnemonic(loaded, password)
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, decrypted)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, errno.ErrKeystoreNotFound)
}

func TestChangePassword(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "wallet.json")
	keyJSON, err := EncryptMnemonic(testMnemonic, "old-password",
		WithScryptN(LightScryptN),
		WithAccount("7E5F4552091A69125D5DFCB7B8C2659029395BDF", "m/44'/4343'/0'/0'/0'"))
	require.NoError(t, err)

	_, err = ChangePassword(keyJSON, "wrong", "new-password", "")
	assert.ErrorIs(t, err, errno.ErrPasswordIncorrect)

	_, err = ChangePassword(keyJSON, "old-password", "", "")
	assert.ErrorIs(t, err, errno.ErrValidation)

	updated, err := ChangePassword(keyJSON, "old-password", "new-password", "pet name")
	require.NoError(t, err)
	assert.Equal(t, keyJSON.Id, updated.Id)
	assert.Equal(t, keyJSON.Address, updated.Address)
	assert.Equal(t, keyJSON.Path, updated.Path)
	assert.Equal(t, "pet name", updated.Hint)
	assert.Equal(t, LightScryptN, updated.Crypto.KDFParams.N)
	assert.NotEqual(t, keyJSON.Crypto.KDFParams.Salt, updated.Crypto.KDFParams.Salt)

	require.NoError(t, updated.SaveToFile(filename))
	loaded, err := LoadFromFile(filename)
	require.NoError(t, err)

	_, err = DecryptMnemonic(loaded, "old-password")
	assert.ErrorIs(t, err, errno.ErrPasswordIncorrect)
	mnemonic, err := DecryptMnemonic(loaded, "new-password")
	require.NoError(t, err)
	assert.Equal(t, testMnemonic, mnemonic)
}
