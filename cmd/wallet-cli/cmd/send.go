package cmd

import (
	"fmt"

	"desk-wallet/internal/model"
	"desk-wallet/internal/service/transaction"
	"desk-wallet/internal/signer"
	"desk-wallet/internal/stage"
	"desk-wallet/internal/view"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "转账: 暂存、签名并广播",
	Long:  `根据参数构造一笔转账交易，显示明细后输入 Keystore 密码签名，再广播到节点。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		mosaic, _ := cmd.Flags().GetString("mosaic")
		amount, _ := cmd.Flags().GetString("amount")
		message, _ := cmd.Flags().GetString("message")
		maxFee, _ := cmd.Flags().GetUint64("max-fee")

		ctx := cmd.Context()
		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		unlocker := signer.KeystoreUnlocker{Path: keystoreFile, DerivationPath: cfg.Wallet.DerivationPath}
		addr, err := unlocker.Address()
		if err != nil {
			return err
		}
		if mosaic == "" {
			mosaic = p.network.CurrencyMosaicID.String()
		}

		vc, err := p.viewContext(ctx, addr)
		if err != nil {
			return err
		}
		v, err := view.ParseTransfer(vc, view.TransferForm{
			Recipient: to,
			Mosaics:   []view.MosaicAttachment{{MosaicID: mosaic, Amount: amount}},
			Message:   message,
			MaxFee:    maxFee,
		})
		if err != nil {
			return err
		}

		// 显示交易详情供用户确认 (Verify on Screen)
		fmt.Println("\n================ 待签名交易 ================")
		for _, item := range v.ResolveDetailItems() {
			fmt.Printf("%-16s %s\n", item.Key, item.Value)
		}
		fmt.Println("============================================")

		sess := stage.NewSession()
		if err := sess.Begin(stage.Options{}); err != nil {
			return err
		}
		sess.AddStaged(v.Transaction())

		password, err := readPassword("请输入 Keystore 密码以确认签名: ")
		if err != nil {
			return err
		}
		sgn, err := unlocker.Unlock(password)
		if err != nil {
			return err
		}
		if _, err := p.txs.SignStaged(ctx, sess, transaction.SignRequest{Signer: sgn}); err != nil {
			return err
		}

		results, err := p.txs.Announce(ctx, sess, addr)
		if err != nil {
			return err
		}
		printResults(cmd, results)
		return nil
	},
}

var cosignCmd = &cobra.Command{
	Use:   "cosign",
	Short: "联署等待签名的 bonded 交易",
	RunE: func(cmd *cobra.Command, args []string) error {
		hashes, _ := cmd.Flags().GetStringSlice("hash")

		ctx := cmd.Context()
		p, err := newPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		password, err := readPassword("请输入 Keystore 密码以确认联署: ")
		if err != nil {
			return err
		}
		sgn, err := signer.KeystoreUnlocker{Path: keystoreFile, DerivationPath: cfg.Wallet.DerivationPath}.Unlock(password)
		if err != nil {
			return err
		}

		cosigs := make([]*model.CosignatureSignedTransaction, 0, len(hashes))
		for _, h := range hashes {
			c, err := p.txs.CosignPartialTransaction(ctx, sgn, h)
			if err != nil {
				return err
			}
			cosigs = append(cosigs, c)
		}
		printResults(cmd, p.txs.AnnounceCosignatureTransactions(ctx, cosigs))
		return nil
	},
}

func init() {
	sendCmd.Flags().String("to", "", "收款地址或 @命名空间")
	sendCmd.Flags().String("mosaic", "", "马赛克 ID 或别名 (默认网络货币)")
	sendCmd.Flags().String("amount", "0", "相对数量, 例如 1.5")
	sendCmd.Flags().String("message", "", "附言")
	sendCmd.Flags().Uint64("max-fee", 0, "手续费上限 (默认 network.default_max_fee)")
	_ = sendCmd.MarkFlagRequired("to")

	cosignCmd.Flags().StringSlice("hash", nil, "bonded 交易哈希, 可重复")
	_ = cosignCmd.MarkFlagRequired("hash")

	rootCmd.AddCommand(sendCmd, cosignCmd)
}
