package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/errno"

	"github.com/ethereum/go-ethereum/rpc"
)

// Dialer 建立推送连接, 生产环境为 websocket, 测试中可以是进程内连接
type Dialer func(ctx context.Context) (*rpc.Client, error)

func DialURL(url string) Dialer {
	return func(ctx context.Context) (*rpc.Client, error) {
		return rpc.DialContext(ctx, url)
	}
}

// RPCListener 通过 "listener" 命名空间的订阅接收确认事件
type RPCListener struct {
	dial Dialer

	mu     sync.Mutex
	client *rpc.Client
}

func NewRPCListener(dial Dialer) *RPCListener {
	return &RPCListener{dial: dial}
}

// NewListenerFactory 每次调用返回一个未打开的新监听器
func NewListenerFactory(dial Dialer) ListenerFactory {
	return func() Listener { return NewRPCListener(dial) }
}

func (l *RPCListener) Open(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return nil
	}
	client, err := l.dial(ctx)
	if err != nil {
		return fmt.Errorf("%w: open: %w", errno.ErrListener, err)
	}
	l.client = client
	return nil
}

func (l *RPCListener) Confirmed(ctx context.Context, address string) (Subscription, error) {
	l.mu.Lock()
	client := l.client
	l.mu.Unlock()
	if client == nil {
		return nil, fmt.Errorf("%w: listener not open", errno.ErrListener)
	}

	events := make(chan model.ConfirmationEvent, 16)
	sub, err := client.Subscribe(ctx, "listener", events, "confirmed", address)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribe confirmed %s: %w", errno.ErrListener, address, err)
	}
	return &rpcSubscription{events: events, sub: sub}, nil
}

func (l *RPCListener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client == nil {
		return errors.New("listener not open")
	}
	l.client.Close()
	l.client = nil
	return nil
}

type rpcSubscription struct {
	events chan model.ConfirmationEvent
	sub    *rpc.ClientSubscription
	once   sync.Once
}

func (s *rpcSubscription) Events() <-chan model.ConfirmationEvent { return s.events }
func (s *rpcSubscription) Err() <-chan error                      { return s.sub.Err() }

func (s *rpcSubscription) Unsubscribe() {
	s.once.Do(s.sub.Unsubscribe)
}
