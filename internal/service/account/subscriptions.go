package account

import (
	"context"
	"sort"
	"sync"
	"time"

	"desk-wallet/internal/gateway"
	"desk-wallet/internal/model"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/monitor"

	"go.uber.org/zap"
)

// Subscriptions 每个地址一条确认订阅; 确认事件会使该地址的缓存失效。
// 切换钱包时必须先拆掉旧订阅, 否则连接泄漏且事件重复投递。
type Subscriptions struct {
	listeners gateway.ListenerFactory
	accounts  *Service

	mu       sync.Mutex
	active   map[string]*watch
	handlers []func(model.ConfirmationEvent)
}

type watch struct {
	address  string
	listener gateway.Listener
	sub      gateway.Subscription
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once
}

func (w *watch) release() {
	w.once.Do(func() {
		w.sub.Unsubscribe()
		if err := w.listener.Close(); err != nil {
			logger.Warn("close listener failed", zap.String("address", w.address), zap.Error(err))
		}
		monitor.AddSubscriptions(-1)
	})
}

func (w *watch) stop() {
	w.cancel()
	<-w.done
	w.release()
}

func NewSubscriptions(listeners gateway.ListenerFactory, accounts *Service) *Subscriptions {
	return &Subscriptions{listeners: listeners, accounts: accounts, active: map[string]*watch{}}
}

// OnConfirmed 注册确认事件回调, 在缓存失效之后调用
func (s *Subscriptions) OnConfirmed(fn func(model.ConfirmationEvent)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
}

// Subscribe 已订阅的地址直接返回
func (s *Subscriptions) Subscribe(ctx context.Context, addr string) error {
	a, err := normalize(addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.active[a]; ok {
		return nil
	}

	l := s.listeners()
	if err := l.Open(ctx); err != nil {
		return err
	}
	sub, err := l.Confirmed(ctx, a)
	if err != nil {
		_ = l.Close()
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	w := &watch{address: a, listener: l, sub: sub, cancel: cancel, done: make(chan struct{})}
	s.active[a] = w
	monitor.AddSubscriptions(1)
	go s.run(runCtx, w)

	logger.Info("subscribed confirmed transactions", zap.String("address", a))
	return nil
}

func (s *Subscriptions) run(ctx context.Context, w *watch) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.sub.Events():
			if !ok {
				s.drop(w)
				return
			}
			s.confirmed(w.address, ev)
		case err := <-w.sub.Err():
			logger.Warn("confirmed subscription ended", zap.String("address", w.address), zap.Error(err))
			s.drop(w)
			return
		}
	}
}

func (s *Subscriptions) confirmed(addr string, ev model.ConfirmationEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.accounts.Invalidate(ctx, addr); err != nil {
		logger.Warn("invalidate account cache failed", zap.String("address", addr), zap.Error(err))
	}

	s.mu.Lock()
	handlers := append(([]func(model.ConfirmationEvent))(nil), s.handlers...)
	s.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// drop 订阅自行结束时从注册表中移除
func (s *Subscriptions) drop(w *watch) {
	s.mu.Lock()
	if s.active[w.address] == w {
		delete(s.active, w.address)
	}
	s.mu.Unlock()
	w.release()
}

func (s *Subscriptions) Unsubscribe(addr string) {
	a, err := normalize(addr)
	if err != nil {
		return
	}
	s.mu.Lock()
	w, ok := s.active[a]
	delete(s.active, a)
	s.mu.Unlock()

	if ok {
		w.stop()
		logger.Info("unsubscribed confirmed transactions", zap.String("address", a))
	}
}

// SwitchWallet 先拆掉旧地址的订阅, 再订阅新地址
func (s *Subscriptions) SwitchWallet(ctx context.Context, oldAddr, newAddr string) error {
	if oldAddr != "" {
		s.Unsubscribe(oldAddr)
	}
	return s.Subscribe(ctx, newAddr)
}

// Active 当前订阅的地址, 已排序
func (s *Subscriptions) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.active))
	for a := range s.active {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func (s *Subscriptions) Close() {
	s.mu.Lock()
	watches := make([]*watch, 0, len(s.active))
	for _, w := range s.active {
		watches = append(watches, w)
	}
	s.active = map[string]*watch{}
	s.mu.Unlock()

	for _, w := range watches {
		w.stop()
	}
}
