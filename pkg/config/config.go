package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Network NetworkConfig `mapstructure:"network"`
	DB      DBConfig      `mapstructure:"db"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Wallet  WalletConfig  `mapstructure:"wallet"`
	Worker  WorkerConfig  `mapstructure:"worker"`
	Cache   CacheConfig   `mapstructure:"cache"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	HttpPort string `mapstructure:"http_port"`
	GrpcPort string `mapstructure:"grpc_port"`
	DataDir  string `mapstructure:"data_dir"` // 单实例文件锁所在目录
}

// NetworkConfig 描述当前连接的网络以及交易管道的网络参数
type NetworkConfig struct {
	NodeURL         string `mapstructure:"node_url"` // JSON-RPC (http)
	WsURL           string `mapstructure:"ws_url"`   // 确认监听 (websocket)
	NetworkType     uint8  `mapstructure:"network_type"`
	GenerationHash  string `mapstructure:"generation_hash"`
	EpochAdjustment int64  `mapstructure:"epoch_adjustment"` // 秒

	CurrencyMosaicID        string `mapstructure:"currency_mosaic_id"`
	CurrencyDivisibility    uint8  `mapstructure:"currency_divisibility"`
	CurrencyAlias           string `mapstructure:"currency_alias"` // 如 symbol.xym, 表单可用 @别名 引用
	LockedFundsPerAggregate uint64 `mapstructure:"locked_funds_per_aggregate"`
	LockDuration            uint64 `mapstructure:"lock_duration"`
	DefaultMaxFee           uint64 `mapstructure:"default_max_fee"`

	MaxMessageSize              datasize.ByteSize `mapstructure:"max_message_size"`
	MaxTransactionsPerAggregate int               `mapstructure:"max_transactions_per_aggregate"`
	Deadline                    time.Duration     `mapstructure:"deadline"`
	ConfirmationTimeout         time.Duration     `mapstructure:"confirmation_timeout"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
}

// DSN 供 gorm 与 golang-migrate 共用
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.Name)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	MQType   string `mapstructure:"mq_type"` // "redis" or "kafka"
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
}

type WalletConfig struct {
	KeystorePath   string `mapstructure:"keystore_path"`
	DerivationPath string `mapstructure:"derivation_path"`
	Password       string `mapstructure:"password"` // 通常通过环境变量 WALLET_PASSWORD 传入, 仅 CLI 非交互模式使用
}

type WorkerConfig struct {
	Concurrency      int           `mapstructure:"concurrency"`
	PartialMaxRetry  int           `mapstructure:"partial_max_retry"`
	PartialRetryWait time.Duration `mapstructure:"partial_retry_wait"`
}

type CacheConfig struct {
	LocalTTL    time.Duration `mapstructure:"local_ttl"`
	RemoteTTL   time.Duration `mapstructure:"remote_ttl"`
	RefreshCron string        `mapstructure:"refresh_cron"`
}

var Global Config

// Init 加载全局配置, 失败直接退出
func Init() {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("Fatal error config file: %s \n", err)
	}
	Global = cfg
	log.Printf("Configuration loaded successfully. Env: %s", Global.App.Env)
}

// Load 读取 config.yaml + 环境变量, 不修改全局状态
func Load(paths ...string) (Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// 环境变量设置
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
		log.Printf("Warning: Config file not found, using defaults and environment variables")
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Network.LockDuration == 0 {
		return errors.New("network.lock_duration must be positive")
	}
	if c.Network.MaxTransactionsPerAggregate <= 0 {
		return errors.New("network.max_transactions_per_aggregate must be positive")
	}
	if c.Network.ConfirmationTimeout <= 0 {
		return errors.New("network.confirmation_timeout must be positive")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")
	v.SetDefault("app.grpc_port", "50051")
	v.SetDefault("app.data_dir", ".wallet")

	v.SetDefault("network.node_url", "http://localhost:3000")
	v.SetDefault("network.ws_url", "ws://localhost:3000/ws")
	v.SetDefault("network.network_type", 152)
	v.SetDefault("network.generation_hash", "")
	v.SetDefault("network.epoch_adjustment", 1637848847)
	v.SetDefault("network.currency_mosaic_id", "5F160D7851F3CB30")
	v.SetDefault("network.currency_divisibility", 6)
	v.SetDefault("network.currency_alias", "symbol.xym")
	v.SetDefault("network.locked_funds_per_aggregate", 10000000)
	v.SetDefault("network.lock_duration", 1000)
	v.SetDefault("network.default_max_fee", 2000000)
	v.SetDefault("network.max_message_size", "1KB")
	v.SetDefault("network.max_transactions_per_aggregate", 100)
	v.SetDefault("network.deadline", "2h")
	v.SetDefault("network.confirmation_timeout", "5m")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "wallet_user")
	v.SetDefault("db.password", "wallet_password")
	v.SetDefault("db.name", "wallet_db")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.mq_type", "redis")

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "wallet-watch")

	v.SetDefault("wallet.keystore_path", "wallet.json")
	v.SetDefault("wallet.derivation_path", "m/44'/4343'/0'/0'/0'")

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.partial_max_retry", 20)
	v.SetDefault("worker.partial_retry_wait", "15s")

	v.SetDefault("cache.local_ttl", "30s")
	v.SetDefault("cache.remote_ttl", "2m")
	v.SetDefault("cache.refresh_cron", "@every 1m")
}
