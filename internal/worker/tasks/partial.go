package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"desk-wallet/internal/gateway"
	"desk-wallet/internal/model"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/monitor"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypePartialAnnounce = "partial:announce"
)

// PartialAnnouncePayload 哈希锁未在超时内确认的 bonded 交易
type PartialAnnouncePayload struct {
	LockHash string                  `json:"lock_hash"`
	Partial  model.SignedTransaction `json:"partial"`
}

// NewPartialAnnounceTask 同一笔 bonded 交易只会排队一次 (TaskID 去重)
func NewPartialAnnounceTask(lockHash string, partial *model.SignedTransaction, maxRetry int) (*asynq.Task, error) {
	payload, err := json.Marshal(PartialAnnouncePayload{LockHash: lockHash, Partial: *partial})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePartialAnnounce, payload,
		asynq.MaxRetry(maxRetry),
		asynq.Queue("critical"),
		asynq.TaskID("partial:"+partial.Hash),
		asynq.Timeout(time.Minute),
	), nil
}

// Reporter 记录最终的广播结果, 由 NotifyService 实现
type Reporter interface {
	Publish(ctx context.Context, signer string, results []model.BroadcastResult) error
}

// PartialHandler 锁确认后广播 bonded 交易; 锁仍未确认时返回错误交给 asynq 重试
type PartialHandler struct {
	gateway  gateway.Gateway
	reporter Reporter
	// lastAttempt 报告本次执行是否已用尽重试次数
	lastAttempt func(ctx context.Context) bool
}

func NewPartialHandler(gw gateway.Gateway, reporter Reporter) *PartialHandler {
	return &PartialHandler{gateway: gw, reporter: reporter, lastAttempt: lastAttempt}
}

func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	return ok && retried >= maxRetry
}

func (h *PartialHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p PartialAnnouncePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	log := logger.Log.With(zap.String("lock", p.LockHash), zap.String("partial", p.Partial.Hash))

	status, err := h.gateway.TransactionStatus(ctx, p.LockHash)
	if err != nil {
		return err
	}

	switch status.Group {
	case model.GroupConfirmed:
	case model.GroupFailed:
		log.Warn("哈希锁被拒绝, 放弃 bonded 交易", zap.String("code", status.Code))
		h.report(ctx, &p.Partial, fmt.Errorf("hash lock %s failed: %s", p.LockHash, status.Code))
		return fmt.Errorf("hash lock failed: %w", asynq.SkipRetry)
	default:
		if h.lastAttempt(ctx) {
			log.Warn("重试次数用尽, 哈希锁仍未确认", zap.String("group", string(status.Group)))
			h.report(ctx, &p.Partial, fmt.Errorf("hash lock %s not confirmed", p.LockHash))
			return fmt.Errorf("%w: %w", errno.ErrLockPending, asynq.SkipRetry)
		}
		log.Debug("哈希锁尚未确认", zap.String("group", string(status.Group)))
		return errno.ErrLockPending
	}

	err = h.gateway.AnnounceAggregateBonded(ctx, &p.Partial)
	h.report(ctx, &p.Partial, err)
	if err != nil {
		log.Error("bonded 交易广播失败", zap.Error(err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	log.Info("bonded 交易已广播")
	return nil
}

func (h *PartialHandler) report(ctx context.Context, partial *model.SignedTransaction, err error) {
	result := model.BroadcastResult{Hash: partial.Hash, Type: partial.Type, Success: err == nil}
	if err != nil {
		result.Error = err.Error()
	}
	monitor.ObserveAnnounce("deferred", result.Success)
	if h.reporter == nil {
		return
	}
	// 与同步广播一致, 结果按发起方地址归档
	issuer, aerr := address.FromPublicKeyHex(partial.SignerPublicKey)
	if aerr != nil {
		logger.Error("无法从公钥推导发起方地址", zap.String("hash", partial.Hash), zap.Error(aerr))
		return
	}
	if rerr := h.reporter.Publish(ctx, issuer, []model.BroadcastResult{result}); rerr != nil {
		logger.Error("记录广播结果失败", zap.String("hash", partial.Hash), zap.Error(rerr))
	}
}
