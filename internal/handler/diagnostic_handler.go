package handler

import (
	"fmt"

	"desk-wallet/internal/diagnostic"
	"desk-wallet/internal/handler/response"
	"desk-wallet/pkg/errno"

	"github.com/gin-gonic/gin"
)

type DiagnosticHandler struct {
	sink *diagnostic.Memory
}

func NewDiagnosticHandler(sink *diagnostic.Memory) *DiagnosticHandler {
	return &DiagnosticHandler{sink: sink}
}

// List 诊断日志, 可按级别过滤
// @Summary 诊断日志
// @Tags System
// @Produce json
// @Param level query string false "INFO, DEBUG, WARNING or ERROR"
// @Success 200 {object} response.Response
// @Router /api/v1/diagnostics [get]
func (h *DiagnosticHandler) List(c *gin.Context) {
	var level diagnostic.Level
	if s := c.Query("level"); s != "" {
		l, ok := diagnostic.ParseLevel(s)
		if !ok {
			response.Error(c, fmt.Errorf("%w: unknown level %q", errno.ErrBind, s))
			return
		}
		level = l
	}
	response.List(c, h.sink.Records(level))
}
