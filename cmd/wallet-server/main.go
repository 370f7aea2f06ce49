package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"desk-wallet/internal/diagnostic"
	"desk-wallet/internal/gateway"
	"desk-wallet/internal/handler"
	"desk-wallet/internal/model"
	"desk-wallet/internal/server"
	"desk-wallet/internal/service"
	"desk-wallet/internal/service/account"
	"desk-wallet/internal/service/contact"
	"desk-wallet/internal/service/metadata"
	"desk-wallet/internal/service/mq"
	"desk-wallet/internal/service/transaction"
	"desk-wallet/internal/signer"
	"desk-wallet/internal/stage"
	"desk-wallet/internal/view"
	"desk-wallet/internal/worker"
	"desk-wallet/internal/worker/tasks"
	"desk-wallet/pkg/cache"
	"desk-wallet/pkg/config"
	"desk-wallet/pkg/database"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/monitor"
	"desk-wallet/pkg/utils/lock"
	"desk-wallet/pkg/validator"

	"github.com/gofrs/flock"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	_ "desk-wallet/docs/swagger"
)

// @title Desk Wallet API
// @version 1.0
// @description Local control API of the desk wallet transaction pipeline

// @host localhost:8080
// @BasePath /api/v1
func main() {
	// 0. 初始化 Config
	config.Init()
	cfg := config.Global

	// 初始化 Validator
	validator.Init()

	// 1. 初始化 Logger
	logger.Init(cfg.App.Env)
	defer logger.Sync()

	// 2. 同一数据目录只允许一个实例
	if err := os.MkdirAll(cfg.App.DataDir, 0o700); err != nil {
		logger.Fatal("创建数据目录失败", zap.Error(err))
	}
	fileLock := flock.New(filepath.Join(cfg.App.DataDir, "wallet-server.lock"))
	locked, err := fileLock.TryLock()
	if err != nil || !locked {
		logger.Fatal("数据目录已被另一个实例占用", zap.String("dir", cfg.App.DataDir), zap.Error(err))
	}
	defer fileLock.Unlock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitor.Init()

	network, err := transaction.NetworkFromConfig(cfg.Network)
	if err != nil {
		logger.Fatal("网络配置错误", zap.Error(err))
	}

	// 3. 连接数据库与 Redis
	db, err := database.ConnectPostgres(cfg.DB.DSN(), cfg.App.Env == "development")
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Redis 连接失败", zap.Error(err))
	}

	// 4. 节点网关与确认监听
	client, err := gateway.Dial(ctx, cfg.Network.NodeURL)
	if err != nil {
		logger.Fatal("节点连接失败", zap.String("url", cfg.Network.NodeURL), zap.Error(err))
	}
	listeners := gateway.NewListenerFactory(gateway.DialURL(cfg.Network.WsURL))

	// 5. 缓存: L1 内存, L2 Redis
	localCache := cache.NewMemoryCache(cfg.Cache.LocalTTL, 2*cfg.Cache.LocalTTL)
	redisCache := cache.NewRedisCache(rdb, "wallet")
	multiCache := cache.NewMultiLevelCache(localCache, redisCache, cfg.Cache.LocalTTL)

	currency := model.MosaicInfo{ID: network.CurrencyMosaicID, Divisibility: cfg.Network.CurrencyDivisibility}
	accounts := account.NewService(client, multiCache, cfg.Cache.RemoteTTL, account.WithCurrency(currency, cfg.Network.CurrencyAlias))
	subscriptions := account.NewSubscriptions(listeners, accounts)
	meta := metadata.NewService(client, metadata.NewGormStore(db), network)

	// 6. 广播结果 -> 本地消息表 -> MQ
	notify := service.NewNotifyService(db)
	producer, err := mq.NewProducer(cfg, rdb)
	if err != nil {
		logger.Fatal("初始化 MQ 失败", zap.Error(err))
	}
	relay := service.NewRelayService(db, producer)
	go relay.Start(ctx)

	// 7. 超时未确认的 bonded 交易交给 Asynq Worker
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}
	workerClient := worker.NewClient(redisOpt, cfg.Worker.PartialMaxRetry)
	workerServer := worker.NewServer(redisOpt, cfg.Worker.Concurrency, cfg.Worker.PartialRetryWait,
		tasks.NewPartialHandler(client, notify))
	if err := workerServer.Start(); err != nil {
		logger.Fatal("Worker 启动失败", zap.Error(err))
	}

	sink := diagnostic.NewMemory(diagnostic.DefaultCapacity)
	txs := transaction.NewService(client, listeners, network,
		transaction.WithSink(sink),
		transaction.WithDeferrer(workerClient),
	)

	// 8. 观察当前钱包地址, 确认事件使缓存失效
	unlocker := signer.KeystoreUnlocker{Path: cfg.Wallet.KeystorePath, DerivationPath: cfg.Wallet.DerivationPath}
	if addr, err := unlocker.Address(); err != nil {
		logger.Warn("未找到钱包, 请先运行 'wallet-cli new'", zap.Error(err))
	} else if err := subscriptions.Subscribe(ctx, addr); err != nil {
		logger.Warn("订阅确认事件失败", zap.String("address", addr), zap.Error(err))
	}

	cronService := service.NewCronService(lock.NewRedisLock(rdb), cfg.Cache.RefreshCron, accounts, subscriptions)
	if err := cronService.Start(); err != nil {
		logger.Fatal("Cron 启动失败", zap.Error(err))
	}

	// 9. HTTP + gRPC
	base := view.Context{
		NetworkType:     network.Type,
		EpochAdjustment: network.EpochAdjustment,
		DeadlineWindow:  network.Deadline,
		DefaultMaxFee:   cfg.Network.DefaultMaxFee,
		MaxMessageSize:  int(cfg.Network.MaxMessageSize.Bytes()),
	}
	session := stage.NewSession()
	r := server.NewHTTPRouter(server.Handlers{
		Health:      handler.NewHealthHandler(session, unlocker, network.Type),
		Transaction: handler.NewTransactionHandler(session, txs, accounts, meta, unlocker, notify, base),
		Account:     handler.NewAccountHandler(accounts, meta),
		Wallet:      handler.NewWalletHandler(unlocker, contact.NewService(db)),
		Diagnostic:  handler.NewDiagnosticHandler(sink),
	})
	grpcServer, healthServer := server.NewGRPCServer()

	app, err := server.New(server.Config{HttpPort: cfg.App.HttpPort, GrpcPort: cfg.App.GrpcPort}, r, grpcServer, healthServer)
	if err != nil {
		logger.Fatal("应用启动失败", zap.Error(err))
	}

	// 运行 (阻塞)
	if err := app.Run(ctx); err != nil {
		logger.Error("服务异常退出", zap.Error(err))
	}

	// 10. 退出后资源清理
	cronService.Stop()
	subscriptions.Close()
	workerServer.Stop()
	_ = workerClient.Close()
	_ = producer.Close()
	client.Close()
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	rdb.Close()
	logger.Info("系统已退出")
}
