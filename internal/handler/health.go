package handler

import (
	"desk-wallet/internal/handler/response"
	"desk-wallet/internal/model"
	"desk-wallet/internal/stage"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	session     *stage.Session
	unlocker    Unlocker
	networkType model.NetworkType
}

func NewHealthHandler(session *stage.Session, unlocker Unlocker, networkType model.NetworkType) *HealthHandler {
	return &HealthHandler{session: session, unlocker: unlocker, networkType: networkType}
}

// HealthStatus 服务状态与当前暂存流程概况
type HealthStatus struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	NetworkType uint8  `json:"network_type"`
	// Wallet keystore 不存在时为空, 此时只能使用 wallet-cli new 创建
	Wallet  string `json:"wallet"`
	Session string `json:"session"`
	Staged  int    `json:"staged"`
	Signed  int    `json:"signed"`
}

// Check godoc
// @Summary Check system health
// @Description 服务状态、当前钱包与暂存流程概况
// @Tags System
// @Produce json
// @Success 200 {object} response.Response{data=HealthStatus}
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	wallet, _ := h.unlocker.Address()
	response.Success(c, HealthStatus{
		Status:      "UP",
		Service:     "desk-wallet",
		NetworkType: uint8(h.networkType),
		Wallet:      wallet,
		Session:     h.session.ID(),
		Staged:      len(h.session.Staged()),
		Signed:      h.session.Signed().Len(),
	})
}
