package monitor

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStage(t *testing.T) {
	tests := map[string]string{
		"/api/v1/stage/options":              "stage",
		"/api/v1/stage":                      "stage",
		"/api/v1/sign":                       "sign",
		"/api/v1/cosign":                     "sign",
		"/api/v1/announce":                   "announce",
		"/api/v1/accounts/:address/balances": "account",
		"/api/v1/contacts/:address":          "account",
		"/api/v1/wallet/password":            "account",
		"/health":                            "system",
		"/api/v1/diagnostics":                "system",
	}
	for path, want := range tests {
		assert.Equal(t, want, Stage(path), path)
	}
}

func TestPrometheusMiddleware_CountsErrno(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(PrometheusMiddleware())
	r.POST("/api/v1/sign", func(c *gin.Context) {
		c.Set(ErrnoKey, 20102)
		c.Status(http.StatusOK)
	})
	r.POST("/api/v1/announce", func(c *gin.Context) { c.Status(http.StatusOK) })

	errorsBefore := testutil.ToFloat64(APIErrorsTotal.WithLabelValues("sign", "20102"))
	requestsBefore := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/v1/announce", "announce", "200"))

	for _, path := range []string{"/api/v1/sign", "/api/v1/announce", "/unknown"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, nil))
	}

	assert.Equal(t, errorsBefore+1, testutil.ToFloat64(APIErrorsTotal.WithLabelValues("sign", "20102")))
	assert.Equal(t, requestsBefore+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/api/v1/announce", "announce", "200")))
}
