package cmd

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"desk-wallet/internal/event"
	"desk-wallet/internal/service/mq"
	"desk-wallet/pkg/database"
	"desk-wallet/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "订阅 wallet-server 发出的广播事件",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var rdb *redis.Client
		if cfg.Redis.MQType != "kafka" {
			c, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer c.Close()
			rdb = c
		}

		consumer, err := mq.NewConsumer(cfg, rdb, "wallet-cli")
		if err != nil {
			return err
		}
		defer consumer.Close()

		onlyAddr, _ := cmd.Flags().GetString("signer")
		fmt.Fprintf(cmd.OutOrStdout(), "监听 %s (%s)...\n", event.TopicAnnounce, cfg.Redis.MQType)

		return consumer.Subscribe(ctx, event.TopicAnnounce, func(msg *mq.Message) error {
			var ev event.TransactionAnnounced
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				// 格式错误，不再重试
				logger.Warn("skip malformed event", zap.String("id", msg.ID), zap.Error(err))
				return nil
			}
			if onlyAddr != "" && ev.Signer != onlyAddr {
				return nil
			}
			status := "OK"
			switch {
			case ev.Deferred:
				status = "DEFERRED"
			case !ev.Success:
				status = "FAILED " + ev.Error
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-20s %s %s\n", ev.At.Format("15:04:05"), ev.TypeName, ev.Hash, status)
			return nil
		})
	},
}

func init() {
	watchCmd.Flags().String("signer", "", "只显示该签名者的事件")
	rootCmd.AddCommand(watchCmd)
}
