package response

import (
	"net/http"

	"desk-wallet/pkg/errno"
	"desk-wallet/pkg/logger"
	"desk-wallet/pkg/monitor"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一返回体, code 为 errno 业务码, HTTP 状态码始终是 200
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// List 空列表返回 [] 而不是 null
func List[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	Success(c, items)
}

// Error 把错误解码为 errno; 业务码写入上下文供指标中间件按码统计
func Error(c *gin.Context, err error) {
	code, msg := errno.Decode(err)
	c.Set(monitor.ErrnoKey, code)

	fields := []zap.Field{zap.String("path", c.FullPath()), zap.Int("code", code), zap.Error(err)}
	switch {
	case code == errno.InternalServerError.Code || code == errno.ErrDatabase.Code:
		logger.Error("request failed", fields...)
	case code >= errno.ErrStagePending.Code && code != errno.ErrNotFound.Code:
		// 流程前置条件、签名与网关错误
		logger.Error("pipeline request rejected", fields...)
	default:
		logger.Warn("invalid request", fields...)
	}

	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: msg,
		Data:    gin.H{},
	})
}
