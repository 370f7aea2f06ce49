package cmd

import (
	"errors"
	"fmt"
	"os"

	"desk-wallet/internal/signer"
	"desk-wallet/pkg/bip39"
	"desk-wallet/pkg/keystore"

	"github.com/spf13/cobra"
)

// newCmd 代表 new 命令
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "创建一个新的钱包",
	Long:  `生成随机 BIP-39 助记词，派生账户地址，并用密码加密保存为 keystore 文件。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		words, _ := cmd.Flags().GetInt("words")
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(keystoreFile); err == nil && !force {
			return fmt.Errorf("%s 已存在, 使用 --force 覆盖", keystoreFile)
		}

		mnemonicService, err := bip39.NewMnemonicService().WithWords(words)
		if err != nil {
			return err
		}
		mnemonic, err := mnemonicService.GenerateMnemonic()
		if err != nil {
			return fmt.Errorf("生成助记词失败: %w", err)
		}

		path := cfg.Wallet.DerivationPath
		acc, err := signer.FromMnemonic(mnemonic, path)
		if err != nil {
			return err
		}

		password, err := readPassword("设置 Keystore 密码: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("再次输入密码: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return errors.New("两次输入的密码不一致")
		}

		address := acc.PublicAccount().Address
		ks, err := keystore.EncryptMnemonic(mnemonic, password, keystore.WithAccount(address, path))
		if err != nil {
			return err
		}
		if err := ks.SaveToFile(keystoreFile); err != nil {
			return err
		}

		fmt.Println("---------------------------------------------------")
		fmt.Printf("助记词 (Mnemonic): \n%s\n", mnemonic)
		fmt.Println("---------------------------------------------------")
		fmt.Printf("地址 [%s]: %s\n", path, address)
		fmt.Printf("公钥: %s\n", acc.PublicAccount().PublicKey)
		fmt.Printf("Keystore 已保存到 %s\n", keystoreFile)
		fmt.Println("请妥善保管您的助记词！任何拥有助记词的人都可以控制该钱包的所有资产。")
		return nil
	},
}

// addressCmd 不需要密码
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "显示当前钱包地址",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := signer.KeystoreUnlocker{Path: keystoreFile}.Address()
		if err != nil {
			return err
		}
		fmt.Println(addr)
		return nil
	},
}

// passwdCmd 用新密码重新加密 keystore, 助记词与地址不变
var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "修改钱包密码",
	RunE: func(cmd *cobra.Command, args []string) error {
		hint, _ := cmd.Flags().GetString("hint")
		oldPassword, err := readPassword("当前密码: ")
		if err != nil {
			return err
		}
		newPassword, err := readPassword("新密码: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("再次输入新密码: ")
		if err != nil {
			return err
		}
		if newPassword != confirm {
			return errors.New("两次输入的密码不一致")
		}

		unlocker := signer.KeystoreUnlocker{Path: keystoreFile, DerivationPath: cfg.Wallet.DerivationPath}
		if err := unlocker.ChangePassword(oldPassword, newPassword, hint); err != nil {
			return err
		}
		fmt.Printf("Keystore 已用新密码保存到 %s\n", keystoreFile)
		return nil
	},
}

func init() {
	newCmd.Flags().Int("words", 24, "助记词单词数 (12/15/18/21/24)")
	newCmd.Flags().Bool("force", false, "覆盖已存在的 keystore")
	passwdCmd.Flags().String("hint", "", "密码提示, 明文保存在 keystore 中")
	rootCmd.AddCommand(newCmd, addressCmd, passwdCmd)
}
