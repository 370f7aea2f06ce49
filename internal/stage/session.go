// Package stage 暂存区: 一次签名流程内待签交易、流程选项与已签名队列。
package stage

import (
	"fmt"
	"sync"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/errno"

	"github.com/google/uuid"
)

// Options 决定暂存交易如何打包: 独立签名 / aggregate-complete / aggregate-bonded + 哈希锁
type Options struct {
	IsAggregate bool `json:"is_aggregate"`
	IsMultisig  bool `json:"is_multisig"`
}

// Session 一个钱包会话的暂存状态, 代替全局 store; 所有方法并发安全
type Session struct {
	id string

	mu      sync.Mutex
	options Options
	staged  []*model.Transaction
	signed  *SignedQueue
}

func NewSession() *Session {
	return &Session{id: uuid.NewString(), signed: NewSignedQueue()}
}

func (s *Session) ID() string { return s.id }

// Begin 设置本次流程的选项; 已有未完成的流程时返回 errno.ErrStagePending, 需要先 Cancel
func (s *Session) Begin(opts Options) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.staged) > 0 || s.signed.Len() > 0 {
		return fmt.Errorf("%w: %d staged, %d signed", errno.ErrStagePending, len(s.staged), s.signed.Len())
	}
	s.options = opts
	return nil
}

func (s *Session) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

// ResetOptions 恢复为 {false,false}
func (s *Session) ResetOptions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = Options{}
}

// AddStaged 追加到暂存区末尾
func (s *Session) AddStaged(txs ...*model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, txs...)
}

// Staged 暂存交易的副本
func (s *Session) Staged() []*model.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.Transaction(nil), s.staged...)
}

// SetMaxFee 签名前唯一允许的修改
func (s *Session) SetMaxFee(index int, fee uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.staged) {
		return fmt.Errorf("%w: staged index %d", errno.ErrNotFound, index)
	}
	c := s.staged[index].Clone()
	c.MaxFee = fee
	s.staged[index] = c
	return nil
}

// ResetStage 清空暂存区
func (s *Session) ResetStage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
}

// CommitSigned 签名全部成功后一次性: 清空暂存区, 把结果按序放入已签名队列
func (s *Session) CommitSigned(signed []*model.SignedTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.signed.Push(signed...); err != nil {
		return err
	}
	s.staged = nil
	return nil
}

func (s *Session) Signed() *SignedQueue {
	return s.signed
}

// Cancel 放弃本次流程, 不产生任何网络请求
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = nil
	s.options = Options{}
	s.signed.Clear()
}

// Idle 暂存区为空且选项为默认值
func (s *Session) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged) == 0 && s.options == Options{}
}
