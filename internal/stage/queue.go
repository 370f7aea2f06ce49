package stage

import (
	"fmt"
	"sync"

	"desk-wallet/internal/model"
)

// SignedQueue 已签名交易的有序队列, 按哈希移除且每个哈希只能移除一次
type SignedQueue struct {
	mu    sync.Mutex
	items []*model.SignedTransaction
}

func NewSignedQueue() *SignedQueue {
	return &SignedQueue{}
}

// Push 追加到队尾, 重复哈希拒绝
func (q *SignedQueue) Push(txs ...*model.SignedTransaction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, tx := range txs {
		if q.indexLocked(tx.Hash) >= 0 {
			return fmt.Errorf("signed transaction %s already queued", tx.Hash)
		}
	}
	q.items = append(q.items, txs...)
	return nil
}

// Remove 第一次移除返回 true, 之后对同一哈希返回 false
func (q *SignedQueue) Remove(hash string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexLocked(hash)
	if i < 0 {
		return false
	}
	q.items = append(q.items[:i], q.items[i+1:]...)
	return true
}

// Find 按类型找第一笔
func (q *SignedQueue) Find(t model.TransactionType) (*model.SignedTransaction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, tx := range q.items {
		if tx.Type == t {
			return tx, true
		}
	}
	return nil, false
}

// Snapshot 当前队列的副本, 顺序不变
func (q *SignedQueue) Snapshot() []*model.SignedTransaction {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*model.SignedTransaction(nil), q.items...)
}

func (q *SignedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *SignedQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

func (q *SignedQueue) indexLocked(hash string) int {
	for i, tx := range q.items {
		if tx.Hash == hash {
			return i
		}
	}
	return -1
}
