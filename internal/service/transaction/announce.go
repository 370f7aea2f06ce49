package transaction

import (
	"context"

	"desk-wallet/internal/model"
	"desk-wallet/internal/stage"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/monitor"

	"go.uber.org/zap"
)

func broadcastResult(tx *model.SignedTransaction, err error) model.BroadcastResult {
	r := model.BroadcastResult{Hash: tx.Hash, Type: tx.Type, Success: err == nil}
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

// Announce 按会话选项选择广播路径; 多签流程等待哈希锁确认后返回 bonded 交易的结果
func (s *Service) Announce(ctx context.Context, sess *stage.Session, issuer string) ([]model.BroadcastResult, error) {
	if sess.Options().IsMultisig {
		r, err := s.AnnouncePartialTransactions(ctx, sess, issuer)
		if err != nil {
			return nil, err
		}
		return []model.BroadcastResult{r}, nil
	}
	return s.AnnounceSignedTransactions(ctx, sess), nil
}

// AnnounceSignedTransactions 按顺序广播已签名交易 (哈希锁与 bonded 除外)。
// 无论成功失败都从已签名队列移除, 不重试。
func (s *Service) AnnounceSignedTransactions(ctx context.Context, sess *stage.Session) []model.BroadcastResult {
	defer sess.ResetOptions()

	var results []model.BroadcastResult
	for _, tx := range sess.Signed().Snapshot() {
		if tx.Type == model.TypeHashLock || tx.Type == model.TypeAggregateBonded {
			continue
		}
		if !sess.Signed().Remove(tx.Hash) {
			continue
		}

		err := s.gateway.Announce(ctx, tx)
		if err != nil {
			logger.Error("announce transaction failed", zap.String("hash", tx.Hash), zap.Stringer("type", tx.Type), zap.Error(err))
		} else {
			logger.Info("transaction announced", zap.String("hash", tx.Hash), zap.Stringer("type", tx.Type))
		}
		monitor.ObserveAnnounce("signed", err == nil)
		results = append(results, broadcastResult(tx, err))
	}
	return results
}

// AnnounceCosignatureTransactions 每个联署独立广播, 结果互不影响
func (s *Service) AnnounceCosignatureTransactions(ctx context.Context, cosigs []*model.CosignatureSignedTransaction) []model.BroadcastResult {
	results := make([]model.BroadcastResult, 0, len(cosigs))
	for _, c := range cosigs {
		err := s.gateway.AnnounceCosignature(ctx, c)
		if err != nil {
			logger.Error("announce cosignature failed", zap.String("parentHash", c.ParentHash), zap.Error(err))
		}
		monitor.ObserveAnnounce("cosignature", err == nil)

		r := model.BroadcastResult{Hash: c.ParentHash, Type: model.TypeAggregateBonded, Success: err == nil}
		if err != nil {
			r.Error = err.Error()
		}
		results = append(results, r)
	}
	return results
}
