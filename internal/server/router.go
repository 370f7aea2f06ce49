package server

import (
	"desk-wallet/internal/handler"
	"desk-wallet/internal/server/routes"
	"desk-wallet/pkg/monitor"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers 路由依赖的全部 handler
type Handlers struct {
	Health      *handler.HealthHandler
	Transaction *handler.TransactionHandler
	Account     *handler.AccountHandler
	Wallet      *handler.WalletHandler
	Diagnostic  *handler.DiagnosticHandler
}

// NewHTTPRouter 初始化并返回一个 Gin Engine; 指标需要调用方先 monitor.Init
func NewHTTPRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(monitor.PrometheusMiddleware())

	r.GET("/health", h.Health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	{
		routes.RegisterTransactionRoutes(api, h.Transaction)
		routes.RegisterAccountRoutes(api, h.Account)
		routes.RegisterWalletRoutes(api, h.Wallet)
		api.GET("/diagnostics", h.Diagnostic.List)
	}

	return r
}
