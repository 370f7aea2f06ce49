package worker

import (
	"context"
	"errors"

	"desk-wallet/internal/model"
	"desk-wallet/internal/worker/tasks"
	"desk-wallet/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Client 封装 Asynq Client, 同时作为交易管道的 Deferrer
type Client struct {
	client   *asynq.Client
	maxRetry int
}

// NewClient 初始化 Client
func NewClient(opt asynq.RedisClientOpt, maxRetry int) *Client {
	return &Client{client: asynq.NewClient(opt), maxRetry: maxRetry}
}

// Enqueue 将任务推送到队列
func (c *Client) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, task, opts...)
}

// DeferPartial 已经排过队的同一笔交易视为成功
func (c *Client) DeferPartial(ctx context.Context, lockHash string, partial *model.SignedTransaction) error {
	task, err := tasks.NewPartialAnnounceTask(lockHash, partial, c.maxRetry)
	if err != nil {
		return err
	}
	info, err := c.Enqueue(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("bonded 交易转入后台等待", zap.String("lock", lockHash), zap.String("task", info.ID))
	return nil
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	return c.client.Close()
}
