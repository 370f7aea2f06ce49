package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"desk-wallet/internal/handler/request"
	"desk-wallet/internal/handler/response"
	"desk-wallet/internal/model"
	"desk-wallet/internal/service/account"
	"desk-wallet/internal/service/metadata"
	"desk-wallet/internal/service/transaction"
	"desk-wallet/internal/signer"
	"desk-wallet/internal/stage"
	"desk-wallet/internal/view"
	"desk-wallet/pkg/address"
	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Unlocker 当前钱包; 由 signer.KeystoreUnlocker 实现
type Unlocker interface {
	Address() (string, error)
	Unlock(password string) (signer.Signer, error)
}

// Publisher 广播结果的记录与事件投递; 由 service.NotifyService 实现
type Publisher interface {
	Publish(ctx context.Context, signer string, results []model.BroadcastResult) error
	History(ctx context.Context, limit int) ([]model.AnnouncementRecord, error)
}

type TransactionHandler struct {
	session  *stage.Session
	txs      *transaction.Service
	accounts *account.Service
	metadata *metadata.Service
	unlocker Unlocker
	notifier Publisher
	// base 网络相关的视图上下文, 每个请求补上当前地址与马赛克表
	base view.Context
}

func NewTransactionHandler(
	session *stage.Session,
	txs *transaction.Service,
	accounts *account.Service,
	meta *metadata.Service,
	unlocker Unlocker,
	notifier Publisher,
	base view.Context,
) *TransactionHandler {
	return &TransactionHandler{
		session:  session,
		txs:      txs,
		accounts: accounts,
		metadata: meta,
		unlocker: unlocker,
		notifier: notifier,
		base:     base,
	}
}

func bindError(err error) error {
	return fmt.Errorf("%w: %s", errno.ErrBind, validator.GetErrorMsg(err))
}

func (h *TransactionHandler) viewContext(ctx context.Context) (view.Context, error) {
	c := h.base
	addr, err := h.unlocker.Address()
	if err != nil {
		return c, err
	}
	table, err := h.accounts.MosaicTable(ctx, addr)
	if err != nil {
		return c, err
	}
	aliases, err := h.accounts.MosaicAliases(ctx, addr)
	if err != nil {
		return c, err
	}
	c.CurrentAddress = addr
	c.Mosaics = table
	c.MosaicAliases = aliases
	return c, nil
}

// StagedItem 暂存交易的展示
type StagedItem struct {
	Index   int               `json:"index"`
	Type    string            `json:"type"`
	MaxFee  uint64            `json:"max_fee"`
	Values  view.Values       `json:"values"`
	Details []view.DetailItem `json:"details"`
}

func stagedItem(i int, v view.View) StagedItem {
	tx := v.Transaction()
	return StagedItem{
		Index:   i,
		Type:    tx.Type().String(),
		MaxFee:  tx.MaxFee,
		Values:  v.Values(),
		Details: v.ResolveDetailItems(),
	}
}

// SetOptions 开始一次签名流程
// @Summary 设置暂存选项
// @Tags Stage
// @Accept json
// @Produce json
// @Param request body request.StageOptionsRequest true "Options"
// @Success 200 {object} response.Response
// @Router /api/v1/stage/options [post]
func (h *TransactionHandler) SetOptions(c *gin.Context) {
	var req request.StageOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	opts := stage.Options{IsAggregate: req.IsAggregate || req.IsMultisig, IsMultisig: req.IsMultisig}
	if err := h.session.Begin(opts); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, opts)
}

func parseForm[F any, V view.View](raw json.RawMessage, c view.Context, parse func(view.Context, F) (V, error)) (view.View, error) {
	var form F
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, fmt.Errorf("%w: %v", errno.ErrBind, err)
	}
	v, err := parse(c, form)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (h *TransactionHandler) parse(ctx context.Context, vc view.Context, req request.StageRequest) (view.View, error) {
	switch req.Type {
	case "transfer":
		return parseForm(req.Form, vc, view.ParseTransfer)
	case "mosaic_definition":
		return parseForm(req.Form, vc, view.ParseMosaicDefinition)
	case "mosaic_supply_change":
		return parseForm(req.Form, vc, view.ParseMosaicSupplyChange)
	case "namespace_registration":
		return parseForm(req.Form, vc, view.ParseNamespaceRegistration)
	case "alias":
		return parseForm(req.Form, vc, view.ParseAlias)
	case "multisig_modification":
		return parseForm(req.Form, vc, view.ParseMultisigModification)
	case "metadata":
		var form metadata.Form
		if err := json.Unmarshal(req.Form, &form); err != nil {
			return nil, fmt.Errorf("%w: %v", errno.ErrBind, err)
		}
		tx, err := h.metadata.NewMetadataTransaction(ctx, form)
		if err != nil {
			return nil, err
		}
		return view.Of(vc, tx), nil
	}
	return nil, fmt.Errorf("%w: unsupported type %q", errno.ErrValidation, req.Type)
}

// Stage 解析表单并加入暂存区
// @Summary 暂存交易
// @Tags Stage
// @Accept json
// @Produce json
// @Param request body request.StageRequest true "Transaction form"
// @Success 200 {object} response.Response
// @Router /api/v1/stage [post]
func (h *TransactionHandler) Stage(c *gin.Context) {
	var req request.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	ctx := c.Request.Context()
	vc, err := h.viewContext(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	v, err := h.parse(ctx, vc, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.session.AddStaged(v.Transaction())
	response.Success(c, stagedItem(len(h.session.Staged())-1, v))
}

// GetStage 暂存区与已签名队列
// @Summary 查看暂存区
// @Tags Stage
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/stage [get]
func (h *TransactionHandler) GetStage(c *gin.Context) {
	vc, err := h.viewContext(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	views := view.All(vc, h.session.Staged())
	items := make([]StagedItem, 0, len(views))
	for i, v := range views {
		items = append(items, stagedItem(i, v))
	}
	response.Success(c, gin.H{
		"session": h.session.ID(),
		"options": h.session.Options(),
		"staged":  items,
		"signed":  h.session.Signed().Snapshot(),
	})
}

// SetMaxFee 调整一笔暂存交易的手续费上限
// @Summary 调整手续费
// @Tags Stage
// @Accept json
// @Produce json
// @Param request body request.MaxFeeRequest true "Fee"
// @Success 200 {object} response.Response
// @Router /api/v1/stage/fee [post]
func (h *TransactionHandler) SetMaxFee(c *gin.Context) {
	var req request.MaxFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if err := h.session.SetMaxFee(req.Index, req.MaxFee); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// CancelStage 放弃本次流程, 不产生网络请求
// @Summary 取消暂存
// @Tags Stage
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/stage [delete]
func (h *TransactionHandler) CancelStage(c *gin.Context) {
	h.session.Cancel()
	response.Success(c, nil)
}

// Sign 用 keystore 密码解锁并签名暂存区; 密码错误时暂存区保持不变
// @Summary 签名
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.SignRequest true "Password"
// @Success 200 {object} response.Response
// @Router /api/v1/sign [post]
func (h *TransactionHandler) Sign(c *gin.Context) {
	var req request.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	sgn, err := h.unlocker.Unlock(req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	signReq := transaction.SignRequest{Signer: sgn}
	if req.MultisigPublicKey != "" {
		addr, err := address.FromPublicKeyHex(req.MultisigPublicKey)
		if err != nil {
			response.Error(c, fmt.Errorf("%w: multisig public key", errno.ErrValidation))
			return
		}
		signReq.Multisig = &model.PublicAccount{PublicKey: req.MultisigPublicKey, Address: addr}
	}

	signed, err := h.txs.SignStaged(c.Request.Context(), h.session, signReq)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, signed)
}

// Announce 广播已签名交易; 多签流程会等待哈希锁确认
// @Summary 广播
// @Tags Transaction
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/announce [post]
func (h *TransactionHandler) Announce(c *gin.Context) {
	issuer, err := h.unlocker.Address()
	if err != nil {
		response.Error(c, err)
		return
	}
	ctx := c.Request.Context()
	results, err := h.txs.Announce(ctx, h.session, issuer)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.publish(ctx, issuer, results)
	response.Success(c, results)
}

// Cosign 联署他人发起的 bonded 交易
// @Summary 联署
// @Tags Transaction
// @Accept json
// @Produce json
// @Param request body request.CosignRequest true "Parent hashes"
// @Success 200 {object} response.Response
// @Router /api/v1/cosign [post]
func (h *TransactionHandler) Cosign(c *gin.Context) {
	var req request.CosignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	sgn, err := h.unlocker.Unlock(req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	cosigs := make([]*model.CosignatureSignedTransaction, 0, len(req.Hashes))
	for _, hash := range req.Hashes {
		cosig, err := h.txs.CosignPartialTransaction(ctx, sgn, hash)
		if err != nil {
			response.Error(c, err)
			return
		}
		cosigs = append(cosigs, cosig)
	}

	results := h.txs.AnnounceCosignatureTransactions(ctx, cosigs)
	h.publish(ctx, sgn.PublicAccount().Address, results)
	response.Success(c, results)
}

// History 最近的广播记录
// @Summary 广播历史
// @Tags Transaction
// @Produce json
// @Param limit query int false "Limit"
// @Success 200 {object} response.Response
// @Router /api/v1/announcements [get]
func (h *TransactionHandler) History(c *gin.Context) {
	var q struct {
		Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, bindError(err))
		return
	}
	if q.Limit == 0 {
		q.Limit = 50
	}
	records, err := h.notifier.History(c.Request.Context(), q.Limit)
	if err != nil {
		response.Error(c, fmt.Errorf("%w: %v", errno.ErrDatabase, err))
		return
	}
	response.List(c, records)
}

// publish 记录失败不影响已经完成的广播
func (h *TransactionHandler) publish(ctx context.Context, signer string, results []model.BroadcastResult) {
	if h.notifier == nil || len(results) == 0 {
		return
	}
	if err := h.notifier.Publish(context.WithoutCancel(ctx), signer, results); err != nil {
		logger.Error("record announce results failed", zap.String("signer", signer), zap.Error(err))
	}
}
