package routes

import (
	"desk-wallet/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterTransactionRoutes 暂存、签名、广播
func RegisterTransactionRoutes(rg *gin.RouterGroup, h *handler.TransactionHandler) {
	stageGroup := rg.Group("/stage")
	{
		stageGroup.POST("/options", h.SetOptions)
		stageGroup.POST("/fee", h.SetMaxFee)
		stageGroup.POST("", h.Stage)
		stageGroup.GET("", h.GetStage)
		stageGroup.DELETE("", h.CancelStage)
	}
	rg.POST("/sign", h.Sign)
	rg.POST("/announce", h.Announce)
	rg.POST("/cosign", h.Cosign)
	rg.GET("/announcements", h.History)
}
