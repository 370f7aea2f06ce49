package cmd

import (
	"context"
	"fmt"

	"desk-wallet/internal/diagnostic"
	"desk-wallet/internal/gateway"
	"desk-wallet/internal/model"
	"desk-wallet/internal/service/account"
	"desk-wallet/internal/service/transaction"
	"desk-wallet/internal/view"
	"desk-wallet/pkg/cache"

	"github.com/spf13/cobra"
)

// pipeline CLI 单次运行所需的服务, 不依赖 postgres 与 redis
type pipeline struct {
	client   *gateway.Client
	txs      *transaction.Service
	accounts *account.Service
	network  transaction.Network
}

func newPipeline(ctx context.Context) (*pipeline, error) {
	network, err := transaction.NetworkFromConfig(cfg.Network)
	if err != nil {
		return nil, err
	}
	client, err := gateway.Dial(ctx, cfg.Network.NodeURL)
	if err != nil {
		return nil, err
	}
	listeners := gateway.NewListenerFactory(gateway.DialURL(cfg.Network.WsURL))
	txs := transaction.NewService(client, listeners, network,
		transaction.WithSink(diagnostic.NewMemory(diagnostic.DefaultCapacity)))
	accounts := account.NewService(client, cache.NewMemoryCache(cfg.Cache.LocalTTL, cfg.Cache.LocalTTL), cfg.Cache.LocalTTL,
		account.WithCurrency(model.MosaicInfo{ID: network.CurrencyMosaicID, Divisibility: cfg.Network.CurrencyDivisibility}, cfg.Network.CurrencyAlias))
	return &pipeline{client: client, txs: txs, accounts: accounts, network: network}, nil
}

func (p *pipeline) Close() {
	p.client.Close()
}

func (p *pipeline) viewContext(ctx context.Context, addr string) (view.Context, error) {
	table, err := p.accounts.MosaicTable(ctx, addr)
	if err != nil {
		return view.Context{}, err
	}
	aliases, err := p.accounts.MosaicAliases(ctx, addr)
	if err != nil {
		return view.Context{}, err
	}
	return view.Context{
		NetworkType:     p.network.Type,
		EpochAdjustment: p.network.EpochAdjustment,
		DeadlineWindow:  p.network.Deadline,
		DefaultMaxFee:   cfg.Network.DefaultMaxFee,
		MaxMessageSize:  int(cfg.Network.MaxMessageSize.Bytes()),
		Mosaics:         table,
		MosaicAliases:   aliases,
		CurrentAddress:  addr,
	}, nil
}

func printResults(cmd *cobra.Command, results []model.BroadcastResult) {
	for _, r := range results {
		status := "OK"
		switch {
		case r.Deferred:
			status = "DEFERRED"
		case !r.Success:
			status = "FAILED " + r.Error
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s %s\n", r.Type, r.Hash, status)
	}
}
