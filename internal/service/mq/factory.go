package mq

import (
	"fmt"

	"desk-wallet/pkg/config"

	"github.com/redis/go-redis/v9"
)

// NewProducer 按 redis.mq_type 选择实现
func NewProducer(cfg config.Config, rdb *redis.Client) (Producer, error) {
	switch cfg.Redis.MQType {
	case "kafka":
		return NewKafkaProducer(cfg.Kafka.Brokers), nil
	case "redis", "":
		if rdb == nil {
			return nil, fmt.Errorf("redis mq requires a redis client")
		}
		return NewRedisProducer(rdb), nil
	}
	return nil, fmt.Errorf("unknown mq type %q", cfg.Redis.MQType)
}

func NewConsumer(cfg config.Config, rdb *redis.Client, name string) (Consumer, error) {
	switch cfg.Redis.MQType {
	case "kafka":
		return NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID), nil
	case "redis", "":
		if rdb == nil {
			return nil, fmt.Errorf("redis mq requires a redis client")
		}
		return NewRedisConsumer(rdb, cfg.Kafka.GroupID, name), nil
	}
	return nil, fmt.Errorf("unknown mq type %q", cfg.Redis.MQType)
}
