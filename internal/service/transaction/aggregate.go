package transaction

import (
	"fmt"

	"desk-wallet/internal/model"
	"desk-wallet/pkg/errno"
)

// lowestMaxFee 不改变暂存交易的顺序
func lowestMaxFee(txs []*model.Transaction) uint64 {
	if len(txs) == 0 {
		return 0
	}
	fee := txs[0].MaxFee
	for _, tx := range txs[1:] {
		if tx.MaxFee < fee {
			fee = tx.MaxFee
		}
	}
	return fee
}

func (s *Service) deadline() model.Deadline {
	return model.NewDeadline(s.now(), s.network.EpochAdjustment, s.network.Deadline)
}

// NewAggregate 把暂存交易按原顺序打包为内部交易, 内部交易签名账户为 owner
func (s *Service) NewAggregate(staged []*model.Transaction, owner model.PublicAccount, bonded bool) (*model.Transaction, error) {
	if len(staged) == 0 {
		return nil, fmt.Errorf("%w: no staged transactions", errno.ErrValidation)
	}
	if limit := s.network.MaxTransactionsPerAggregate; limit > 0 && len(staged) > limit {
		return nil, fmt.Errorf("%w: %d transactions exceed aggregate limit %d", errno.ErrValidation, len(staged), limit)
	}

	inner := make([]*model.Transaction, len(staged))
	for i, tx := range staged {
		if tx.IsAggregate() {
			return nil, fmt.Errorf("%w: staged transaction %d is an aggregate", errno.ErrValidation, i)
		}
		inner[i] = tx.ToAggregate(owner)
	}

	return &model.Transaction{
		NetworkType: s.network.Type,
		Version:     model.Version,
		Deadline:    s.deadline(),
		MaxFee:      lowestMaxFee(staged),
		Body:        &model.Aggregate{Bonded: bonded, InnerTransactions: inner},
	}, nil
}

// CreateHashLockTransaction 以已签名 bonded 聚合交易的哈希锁定网络货币
func (s *Service) CreateHashLockTransaction(signedAggregate *model.SignedTransaction, maxFee uint64) *model.Transaction {
	return &model.Transaction{
		NetworkType: s.network.Type,
		Version:     model.Version,
		Deadline:    s.deadline(),
		MaxFee:      maxFee,
		Body: &model.HashLock{
			Mosaic: model.Mosaic{
				ID:     s.network.CurrencyMosaicID,
				Amount: s.network.LockedFundsPerAggregate,
			},
			Duration: s.network.LockDuration,
			Hash:     signedAggregate.Hash,
		},
	}
}
