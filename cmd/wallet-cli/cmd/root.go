package cmd

import (
	"fmt"
	"os"

	"desk-wallet/pkg/config"
	"desk-wallet/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	configDir    string
	keystoreFile string
	cfg          config.Config
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "wallet-cli",
	Short: "桌面钱包命令行工具",
	Long: `桌面钱包的命令行入口。
支持创建加密钱包、暂存并签名转账、联署 bonded 交易以及订阅广播事件。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		if configDir != "" {
			paths = append(paths, configDir)
		}
		loaded, err := config.Load(paths...)
		if err != nil {
			return err
		}
		cfg = loaded
		if keystoreFile == "" {
			keystoreFile = cfg.Wallet.KeystorePath
		}
		logger.Init(cfg.App.Env)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config.yaml 所在目录")
	rootCmd.PersistentFlags().StringVarP(&keystoreFile, "keystore", "k", "", "keystore 文件 (默认 wallet.keystore_path)")
}
