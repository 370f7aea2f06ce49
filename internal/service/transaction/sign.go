package transaction

import (
	"context"
	"fmt"

	"desk-wallet/internal/diagnostic"
	"desk-wallet/internal/model"
	"desk-wallet/internal/signer"
	"desk-wallet/internal/stage"
	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/monitor"

	"go.uber.org/zap"
)

// SignRequest 签名账户; 多签流程需要 Multisig 指定被联署的多签账户
type SignRequest struct {
	Signer   signer.Signer
	Multisig *model.PublicAccount
}

// SignStaged 按会话选项签名暂存区:
// 普通流程逐笔签名, aggregate 流程得到一笔 complete, 多签流程得到 [哈希锁, bonded]。
// 任一签名失败时暂存区保持不变, 不写入已签名队列。
func (s *Service) SignStaged(ctx context.Context, sess *stage.Session, req SignRequest) ([]*model.SignedTransaction, error) {
	if req.Signer == nil {
		return nil, fmt.Errorf("%w: signer required", errno.ErrValidation)
	}
	staged := sess.Staged()
	if len(staged) == 0 {
		return nil, nil
	}

	var (
		signed []*model.SignedTransaction
		err    error
	)
	opts := sess.Options()
	switch {
	case opts.IsMultisig:
		if req.Multisig == nil {
			return nil, fmt.Errorf("%w: multisig account required", errno.ErrValidation)
		}
		signed, err = s.SignMultisigStagedTransactions(ctx, staged, req.Signer, *req.Multisig)
	case opts.IsAggregate:
		signed, err = s.SignAggregateStagedTransactions(ctx, staged, req.Signer)
	default:
		signed, err = s.SignStagedTransactions(ctx, staged, req.Signer)
	}
	if err != nil {
		logger.Error("sign staged transactions failed",
			zap.String("session", sess.ID()), zap.Any("options", opts), zap.Error(err))
		return nil, err
	}

	if err := sess.CommitSigned(signed); err != nil {
		return nil, err
	}
	return signed, nil
}

// SignStagedTransactions 逐笔签名, 顺序与暂存顺序一致
func (s *Service) SignStagedTransactions(ctx context.Context, staged []*model.Transaction, sgn signer.Signer) ([]*model.SignedTransaction, error) {
	out := make([]*model.SignedTransaction, 0, len(staged))
	for _, tx := range staged {
		st, err := s.sign(ctx, sgn, tx)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// SignAggregateStagedTransactions 打包为 aggregate-complete 后签名
func (s *Service) SignAggregateStagedTransactions(ctx context.Context, staged []*model.Transaction, sgn signer.Signer) ([]*model.SignedTransaction, error) {
	if len(staged) == 0 {
		return nil, nil
	}
	aggregate, err := s.NewAggregate(staged, sgn.PublicAccount(), false)
	if err != nil {
		return nil, err
	}
	st, err := s.sign(ctx, sgn, aggregate)
	if err != nil {
		return nil, err
	}
	return []*model.SignedTransaction{st}, nil
}

// SignMultisigStagedTransactions 先签 bonded 聚合交易, 再用其哈希构造并签名哈希锁; 返回 [锁, 聚合]
func (s *Service) SignMultisigStagedTransactions(ctx context.Context, staged []*model.Transaction, sgn signer.Signer, multisig model.PublicAccount) ([]*model.SignedTransaction, error) {
	if len(staged) == 0 {
		return nil, nil
	}
	aggregate, err := s.NewAggregate(staged, multisig, true)
	if err != nil {
		return nil, err
	}
	signedAggregate, err := s.sign(ctx, sgn, aggregate)
	if err != nil {
		return nil, err
	}

	lock := s.CreateHashLockTransaction(signedAggregate, aggregate.MaxFee)
	signedLock, err := s.sign(ctx, sgn, lock)
	if err != nil {
		return nil, err
	}
	return []*model.SignedTransaction{signedLock, signedAggregate}, nil
}

// CosignPartialTransaction 对他人发起的 bonded 交易联署
func (s *Service) CosignPartialTransaction(ctx context.Context, sgn signer.Signer, parentHash string) (*model.CosignatureSignedTransaction, error) {
	cosig, err := sgn.SignCosignature(ctx, parentHash)
	if err != nil {
		return nil, err
	}
	s.record(diagnostic.LevelDebug, "cosigned partial transaction", map[string]string{
		"address":    sgn.PublicAccount().Address,
		"parentHash": parentHash,
	})
	return cosig, nil
}

func (s *Service) sign(ctx context.Context, sgn signer.Signer, tx *model.Transaction) (*model.SignedTransaction, error) {
	st, err := sgn.Sign(ctx, tx, s.network.GenerationHash)
	if err != nil {
		return nil, err
	}
	monitor.ObserveSigned(st.Type.String())
	s.record(diagnostic.LevelDebug, "signed transaction", map[string]string{
		"address": sgn.PublicAccount().Address,
		"hash":    st.Hash,
		"type":    st.Type.String(),
	})
	return st, nil
}
