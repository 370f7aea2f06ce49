package routes

import (
	"desk-wallet/internal/handler"

	"github.com/gin-gonic/gin"
)

func RegisterAccountRoutes(rg *gin.RouterGroup, h *handler.AccountHandler) {
	accountGroup := rg.Group("/accounts/:address")
	{
		accountGroup.GET("/info", h.Info)
		accountGroup.GET("/balances", h.Balances)
		accountGroup.GET("/multisig", h.Multisig)
		accountGroup.GET("/mosaics", h.Mosaics)
		accountGroup.GET("/namespaces", h.Namespaces)
		accountGroup.GET("/metadata", h.Metadata)
		accountGroup.GET("/signers", h.Signers)
	}
}
