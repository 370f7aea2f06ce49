package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"desk-wallet/internal/diagnostic"
	"desk-wallet/internal/gateway"
	"desk-wallet/internal/model"
	"desk-wallet/internal/stage"
	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/monitor"

	"go.uber.org/zap"
)

// State bonded 广播流程的状态
type State string

const (
	StateLockPending      State = "LOCK_PENDING"
	StateLockConfirmed    State = "LOCK_CONFIRMED"
	StatePartialAnnounced State = "PARTIAL_ANNOUNCED"
	StateDone             State = "DONE"
	StateFailed           State = "FAILED"
	// StateDeferred 等待超时, bonded 交易已交给后台任务
	StateDeferred State = "DEFERRED"
)

func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed || s == StateDeferred
}

type Progress struct {
	State State     `json:"state"`
	At    time.Time `json:"at"`
}

// Announcement 一次 bonded 广播; 状态变化依次推送到 Progress, 终态后关闭
type Announcement struct {
	LockHash    string
	PartialHash string

	progress chan Progress
	done     chan struct{}

	mu     sync.Mutex
	state  State
	result model.BroadcastResult
}

func newAnnouncement(lock, partial *model.SignedTransaction) *Announcement {
	return &Announcement{
		LockHash:    lock.Hash,
		PartialHash: partial.Hash,
		// 状态数有限, 缓冲足以容纳全部推送
		progress: make(chan Progress, 8),
		done:     make(chan struct{}),
	}
}

func (a *Announcement) Progress() <-chan Progress { return a.progress }
func (a *Announcement) Done() <-chan struct{}     { return a.done }

func (a *Announcement) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Result 终态之前返回零值
func (a *Announcement) Result() model.BroadcastResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// Wait 等待终态; ctx 结束只停止等待, 不影响广播流程本身
func (a *Announcement) Wait(ctx context.Context) (model.BroadcastResult, error) {
	select {
	case <-a.done:
		return a.Result(), nil
	case <-ctx.Done():
		return model.BroadcastResult{}, ctx.Err()
	}
}

func (a *Announcement) transition(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
	a.progress <- Progress{State: s, At: time.Now()}
}

func (a *Announcement) finish(s State, r model.BroadcastResult) {
	a.mu.Lock()
	a.result = r
	a.mu.Unlock()
	a.transition(s)
	close(a.progress)
	close(a.done)
}

// AnnouncePartialTransactions 广播哈希锁, 等待确认后广播 bonded 交易, 返回 bonded 交易的结果
func (s *Service) AnnouncePartialTransactions(ctx context.Context, sess *stage.Session, issuer string) (model.BroadcastResult, error) {
	a, err := s.AnnouncePartial(ctx, sess, issuer)
	if err != nil {
		return model.BroadcastResult{}, err
	}
	<-a.Done()
	return a.Result(), nil
}

// AnnouncePartial 返回时已订阅 issuer 的确认推送并广播了哈希锁; 其余步骤在后台进行。
// 已签名队列中缺少哈希锁或 bonded 交易时直接返回错误, 不发出任何请求。
func (s *Service) AnnouncePartial(ctx context.Context, sess *stage.Session, issuer string) (*Announcement, error) {
	signed := sess.Signed()
	lock, ok := signed.Find(model.TypeHashLock)
	if !ok {
		sess.ResetOptions()
		logger.Error("announce partial without hash lock", zap.String("session", sess.ID()))
		return nil, errno.ErrMissingHashLock
	}
	partial, ok := signed.Find(model.TypeAggregateBonded)
	if !ok {
		sess.ResetOptions()
		logger.Error("announce partial without aggregate bonded", zap.String("session", sess.ID()))
		return nil, errno.ErrMissingPartial
	}

	a := newAnnouncement(lock, partial)
	run := &partialRun{s: s, sess: sess, a: a, lock: lock, partial: partial, issuer: issuer}
	a.transition(StateLockPending)

	if err := run.start(ctx); err != nil {
		run.fail(err)
		return a, nil
	}
	go run.wait(ctx)
	return a, nil
}

type partialRun struct {
	s       *Service
	sess    *stage.Session
	a       *Announcement
	lock    *model.SignedTransaction
	partial *model.SignedTransaction
	issuer  string

	listener gateway.Listener
	sub      gateway.Subscription
	lockSent time.Time
}

// start 先订阅再广播哈希锁, 避免漏掉很快到来的确认
func (r *partialRun) start(ctx context.Context) error {
	r.listener = r.s.listeners()
	if err := r.listener.Open(ctx); err != nil {
		r.listener = nil
		return err
	}
	sub, err := r.listener.Confirmed(ctx, r.issuer)
	if err != nil {
		return err
	}
	r.sub = sub

	err = r.s.gateway.Announce(ctx, r.lock)
	r.sess.Signed().Remove(r.lock.Hash)
	monitor.ObserveAnnounce("lock", err == nil)
	if err != nil {
		return fmt.Errorf("hash lock rejected: %w", err)
	}
	r.lockSent = time.Now()
	logger.Info("hash lock announced",
		zap.String("lock", r.lock.Hash), zap.String("partial", r.partial.Hash), zap.String("issuer", r.issuer))
	return nil
}

func (r *partialRun) wait(ctx context.Context) {
	timeout := r.s.network.ConfirmationTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-r.sub.Events():
			if !ok {
				r.fail(errors.New("listener closed"))
				return
			}
			if !strings.EqualFold(ev.Hash, r.lock.Hash) {
				continue
			}
			monitor.ObserveLockWait("confirmed", time.Since(r.lockSent))
			r.announcePartial(ctx)
			return
		case err := <-r.sub.Err():
			if err == nil {
				err = errors.New("listener closed")
			}
			r.fail(fmt.Errorf("%w: %w", errno.ErrListener, err))
			return
		case <-timer.C:
			monitor.ObserveLockWait("timeout", time.Since(r.lockSent))
			r.deferPartial(fmt.Errorf("hash lock not confirmed within %s", timeout))
			return
		case <-ctx.Done():
			r.deferPartial(ctx.Err())
			return
		}
	}
}

func (r *partialRun) announcePartial(ctx context.Context) {
	r.a.transition(StateLockConfirmed)

	err := r.s.gateway.AnnounceAggregateBonded(ctx, r.partial)
	r.sess.Signed().Remove(r.partial.Hash)
	monitor.ObserveAnnounce("partial", err == nil)
	if err != nil {
		logger.Error("announce partial failed", zap.String("partial", r.partial.Hash), zap.Error(err))
		r.finish(StateDone, broadcastResult(r.partial, err))
		return
	}

	logger.Info("partial announced", zap.String("partial", r.partial.Hash), zap.String("lock", r.lock.Hash))
	r.a.transition(StatePartialAnnounced)
	r.finish(StateDone, broadcastResult(r.partial, nil))
}

// fail 清除锁与 bonded 交易, 结果为失败
func (r *partialRun) fail(cause error) {
	logger.Error("bonded announcement failed",
		zap.String("lock", r.lock.Hash), zap.String("partial", r.partial.Hash), zap.Error(cause))
	r.s.record(diagnostic.LevelError, "bonded announcement failed", map[string]string{
		"lock":  r.lock.Hash,
		"error": cause.Error(),
	})
	r.sess.Signed().Remove(r.lock.Hash)
	r.sess.Signed().Remove(r.partial.Hash)
	monitor.ObserveAnnounce("partial", false)
	r.finish(StateFailed, broadcastResult(r.partial, cause))
}

// deferPartial 锁可能稍后才确认: 交给后台任务继续等待, 没有后台任务时按失败处理
func (r *partialRun) deferPartial(cause error) {
	if r.s.deferrer == nil {
		r.fail(cause)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := r.s.deferrer.DeferPartial(ctx, r.lock.Hash, r.partial); err != nil {
		r.fail(fmt.Errorf("%w; defer partial: %w", cause, err))
		return
	}

	logger.Warn("hash lock still pending, partial deferred",
		zap.String("lock", r.lock.Hash), zap.String("partial", r.partial.Hash), zap.Error(cause))
	r.sess.Signed().Remove(r.lock.Hash)
	r.sess.Signed().Remove(r.partial.Hash)

	res := broadcastResult(r.partial, cause)
	res.Deferred = true
	r.finish(StateDeferred, res)
}

func (r *partialRun) finish(state State, res model.BroadcastResult) {
	if r.sub != nil {
		r.sub.Unsubscribe()
	}
	if r.listener != nil {
		if err := r.listener.Close(); err != nil {
			logger.Warn("close listener failed", zap.Error(err))
		}
	}
	r.sess.ResetOptions()
	r.a.finish(state, res)
}
