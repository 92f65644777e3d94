package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mahmudalamin/zbooksapp-sub000/internal/adapter/http/middleware"
	"github.com/mahmudalamin/zbooksapp-sub000/internal/logging"
)

func NewRouter(h *OrderHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	r.Use(middleware.Logging(logging.New("http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", authz.Require("orders.write"), h.CreateOrder)
		v1.GET("/orders", authz.Require("orders.read"), h.ListOrders)
		v1.GET("/orders/:id", authz.Require("orders.read"), h.GetOrder)
	}

	admin := r.Group("/v1/admin", authz.Require("orders.admin"))
	{
		admin.PATCH("/orders/:id/status", h.UpdateStatus)
		admin.PATCH("/orders/:id/payment-status", h.UpdatePaymentStatus)
		admin.POST("/orders/status", h.BulkUpdateStatus)
	}

	return r
}
