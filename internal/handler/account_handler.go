package handler

import (
	"desk-wallet/internal/handler/response"
	"desk-wallet/internal/model"
	"desk-wallet/internal/service/account"
	"desk-wallet/internal/service/metadata"

	"github.com/gin-gonic/gin"
)

// AccountHandler 账户只读视图, 全部走读穿缓存
type AccountHandler struct {
	accounts *account.Service
	metadata *metadata.Service
}

func NewAccountHandler(accounts *account.Service, meta *metadata.Service) *AccountHandler {
	return &AccountHandler{accounts: accounts, metadata: meta}
}

// Info 账户信息
// @Summary 账户信息
// @Tags Account
// @Produce json
// @Param address path string true "Address"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{address}/info [get]
func (h *AccountHandler) Info(c *gin.Context) {
	info, err := h.accounts.Info(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// Balances 节点不可用时返回空列表
// @Summary 余额
// @Tags Account
// @Produce json
// @Param address path string true "Address"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{address}/balances [get]
func (h *AccountHandler) Balances(c *gin.Context) {
	balances, err := h.accounts.Balances(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, balances)
}

// Multisig 多签关系
// @Summary 多签信息
// @Tags Account
// @Produce json
// @Param address path string true "Address"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{address}/multisig [get]
func (h *AccountHandler) Multisig(c *gin.Context) {
	info, err := h.accounts.Multisig(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// @Summary 拥有的马赛克
// @Tags Account
// @Produce json
// @Param address path string true "Address"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{address}/mosaics [get]
func (h *AccountHandler) Mosaics(c *gin.Context) {
	mosaics, err := h.accounts.OwnedMosaics(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, mosaics)
}

// @Summary 拥有的命名空间
// @Tags Account
// @Produce json
// @Param address path string true "Address"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{address}/namespaces [get]
func (h *AccountHandler) Namespaces(c *gin.Context) {
	namespaces, err := h.accounts.OwnedNamespaces(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, namespaces)
}

// Metadata target_id 可选, 只返回挂在该马赛克/命名空间上的条目
// @Summary 元数据
// @Tags Account
// @Produce json
// @Param address path string true "Address"
// @Param target_id query string false "Mosaic or namespace id"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{address}/metadata [get]
func (h *AccountHandler) Metadata(c *gin.Context) {
	entries, err := h.metadata.List(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if id := c.Query("target_id"); id != "" {
		entries = metadata.ByTargetID(entries, id)
	}
	response.List(c, entries)
}

// Signers 账户自身以及它作为联署人的多签账户
// @Summary 可用签名者
// @Tags Account
// @Produce json
// @Param address path string true "Address"
// @Success 200 {object} response.Response
// @Router /api/v1/accounts/{address}/signers [get]
func (h *AccountHandler) Signers(c *gin.Context) {
	ctx := c.Request.Context()
	info, err := h.accounts.Info(ctx, c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	signers, err := h.accounts.Signers(ctx, model.PublicAccount{PublicKey: info.PublicKey, Address: info.Address})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, signers)
}
