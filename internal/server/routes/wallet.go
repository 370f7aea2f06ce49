package routes

import (
	"desk-wallet/internal/handler"

	"github.com/gin-gonic/gin"
)

// RegisterWalletRoutes 钱包密码与地址簿
func RegisterWalletRoutes(rg *gin.RouterGroup, h *handler.WalletHandler) {
	rg.POST("/wallet/password", h.UpdatePassword)

	contactGroup := rg.Group("/contacts")
	{
		contactGroup.GET("", h.ListContacts)
		contactGroup.PUT("", h.SaveContact)
		contactGroup.GET("/:address", h.GetContact)
		contactGroup.DELETE("/:address", h.RemoveContact)
	}
}
