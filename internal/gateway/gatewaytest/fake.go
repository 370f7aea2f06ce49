// Package gatewaytest 内存版网关与监听器, 供服务层测试使用
package gatewaytest

import (
	"context"
	"errors"
	"sync"
	"time"

	"desk-wallet/internal/gateway"
	"desk-wallet/internal/model"
)

// Call 记录一次广播调用
type Call struct {
	Method string
	Hash   string
}

// Gateway 记录所有广播; Reject 中的哈希会被拒绝
type Gateway struct {
	mu       sync.Mutex
	calls    []Call
	Reject   map[string]error
	Statuses map[string]*model.TransactionStatus
	// OnAnnounce 在广播成功后回调, 用于模拟节点确认
	OnAnnounce func(method, hash string)

	Accounts   map[string]*model.AccountInfo
	Multisig   map[string]*model.MultisigInfo
	Mosaics    map[string][]model.MosaicInfo
	Namespaces map[string][]model.NamespaceInfo
	Metadata   []model.MetadataEntry
	ReadErr    error
	// ReadDelay 模拟慢节点
	ReadDelay time.Duration
	reads     map[string]int
}

func NewGateway() *Gateway {
	return &Gateway{
		Reject:     map[string]error{},
		Statuses:   map[string]*model.TransactionStatus{},
		Accounts:   map[string]*model.AccountInfo{},
		Multisig:   map[string]*model.MultisigInfo{},
		Mosaics:    map[string][]model.MosaicInfo{},
		Namespaces: map[string][]model.NamespaceInfo{},
		reads:      map[string]int{},
	}
}

func (g *Gateway) record(method, hash string) error {
	g.mu.Lock()
	g.calls = append(g.calls, Call{Method: method, Hash: hash})
	err := g.Reject[hash]
	hook := g.OnAnnounce
	g.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook(method, hash)
	}
	return nil
}

func (g *Gateway) Announce(ctx context.Context, tx *model.SignedTransaction) error {
	return g.record("announce", tx.Hash)
}

func (g *Gateway) AnnounceAggregateBonded(ctx context.Context, tx *model.SignedTransaction) error {
	return g.record("announcePartial", tx.Hash)
}

func (g *Gateway) AnnounceCosignature(ctx context.Context, c *model.CosignatureSignedTransaction) error {
	return g.record("announceCosignature", c.ParentHash)
}

func (g *Gateway) TransactionStatus(ctx context.Context, hash string) (*model.TransactionStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.Statuses[hash]; ok {
		return s, nil
	}
	return &model.TransactionStatus{Hash: hash, Group: model.GroupUnconfirmed}, nil
}

func (g *Gateway) SetStatus(hash string, group model.TransactionGroup) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Statuses[hash] = &model.TransactionStatus{Hash: hash, Group: group}
}

// Calls 返回广播调用的副本
func (g *Gateway) Calls() []Call {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Call(nil), g.calls...)
}

// Reads 某个读接口被调用的次数
func (g *Gateway) Reads(method string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reads[method]
}

func (g *Gateway) read(method string) error {
	g.mu.Lock()
	g.reads[method]++
	err, delay := g.ReadErr, g.ReadDelay
	g.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (g *Gateway) AccountInfo(ctx context.Context, address string) (*model.AccountInfo, error) {
	if err := g.read("account_info"); err != nil {
		return nil, err
	}
	if info, ok := g.Accounts[address]; ok {
		return info, nil
	}
	return &model.AccountInfo{Address: address}, nil
}

func (g *Gateway) MultisigInfo(ctx context.Context, address string) (*model.MultisigInfo, error) {
	if err := g.read("account_multisig"); err != nil {
		return nil, err
	}
	if info, ok := g.Multisig[address]; ok {
		return info, nil
	}
	return &model.MultisigInfo{AccountAddress: address}, nil
}

func (g *Gateway) OwnedMosaics(ctx context.Context, address string) ([]model.MosaicInfo, error) {
	if err := g.read("mosaic_ownedBy"); err != nil {
		return nil, err
	}
	return g.Mosaics[address], nil
}

func (g *Gateway) OwnedNamespaces(ctx context.Context, address string) ([]model.NamespaceInfo, error) {
	if err := g.read("namespace_ownedBy"); err != nil {
		return nil, err
	}
	return g.Namespaces[address], nil
}

func (g *Gateway) SearchMetadata(ctx context.Context, c gateway.MetadataCriteria) ([]model.MetadataEntry, error) {
	if err := g.read("metadata_search"); err != nil {
		return nil, err
	}
	var out []model.MetadataEntry
	for _, e := range g.Metadata {
		if c.TargetAddress != "" && e.TargetAddress != c.TargetAddress {
			continue
		}
		if c.SourceAddress != "" && e.SourceAddress != c.SourceAddress {
			continue
		}
		if c.ScopedKey != "" && e.ScopedKey != c.ScopedKey {
			continue
		}
		if c.TargetID != "" && e.TargetID != c.TargetID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Hub 模拟节点推送; 每个 Listener 的订阅都挂在 Hub 上
type Hub struct {
	mu        sync.Mutex
	subs      map[*Subscription]string
	opened    int
	closed    int
	OpenErr   error
	SubErr    error
	listeners []*Listener
}

func NewHub() *Hub {
	return &Hub{subs: map[*Subscription]string{}}
}

// Factory 返回绑定到 Hub 的 ListenerFactory
func (h *Hub) Factory() gateway.ListenerFactory {
	return func() gateway.Listener {
		l := &Listener{hub: h}
		h.mu.Lock()
		h.listeners = append(h.listeners, l)
		h.mu.Unlock()
		return l
	}
}

// Confirm 向订阅了 address 的所有订阅者推送一次确认
func (h *Hub) Confirm(address, hash string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s, addr := range h.subs {
		if addr == address {
			select {
			case s.events <- model.ConfirmationEvent{Hash: hash, Address: address}:
			default:
			}
		}
	}
}

// Fail 向所有订阅者推送监听错误
func (h *Hub) Fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		select {
		case s.errs <- err:
		default:
		}
	}
}

// Subscribed 当前活跃订阅数
func (h *Hub) Subscribed(address string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, addr := range h.subs {
		if addr == address {
			n++
		}
	}
	return n
}

// Stats 打开与关闭的监听器数量
func (h *Hub) Stats() (opened, closed int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.opened, h.closed
}

type Listener struct {
	hub  *Hub
	open bool
}

func (l *Listener) Open(ctx context.Context) error {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()
	if l.hub.OpenErr != nil {
		return l.hub.OpenErr
	}
	l.open = true
	l.hub.opened++
	return nil
}

func (l *Listener) Confirmed(ctx context.Context, address string) (gateway.Subscription, error) {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()
	if !l.open {
		return nil, errors.New("listener not open")
	}
	if l.hub.SubErr != nil {
		return nil, l.hub.SubErr
	}
	s := &Subscription{
		hub:    l.hub,
		events: make(chan model.ConfirmationEvent, 8),
		errs:   make(chan error, 1),
	}
	l.hub.subs[s] = address
	return s, nil
}

func (l *Listener) Close() error {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()
	if !l.open {
		return errors.New("listener not open")
	}
	l.open = false
	l.hub.closed++
	return nil
}

type Subscription struct {
	hub    *Hub
	events chan model.ConfirmationEvent
	errs   chan error
	once   sync.Once
}

func (s *Subscription) Events() <-chan model.ConfirmationEvent { return s.events }
func (s *Subscription) Err() <-chan error                      { return s.errs }

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
	})
}
