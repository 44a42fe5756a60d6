package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akylbek/payment-system/checkout-orchestrator/internal/handlers"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/session"
	"github.com/akylbek/payment-system/checkout-orchestrator/internal/telemetry"
)

func NewRouter(sessions *session.Manager, checkoutHandler *handlers.CheckoutHandler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if !sessions.Ready() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down", "service": "checkout-orchestrator"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "checkout-orchestrator", "sessions": sessions.Len()})
	})

	// Checkout routes
	checkouts := r.Group("/checkouts/:id")
	checkouts.GET("/state", checkoutHandler.GetState)
	checkouts.GET("/stream", checkoutHandler.Stream)
	checkouts.POST("/load", checkoutHandler.LoadCheckout)
	checkouts.DELETE("", checkoutHandler.CloseCheckout)
	checkouts.POST("/payment-methods/load", checkoutHandler.LoadPaymentMethods)
	checkouts.POST("/gift-certificates", checkoutHandler.ApplyGiftCertificate)
	checkouts.DELETE("/gift-certificates/:code", checkoutHandler.RemoveGiftCertificate)
	checkouts.POST("/coupons", checkoutHandler.ApplyCoupon)
	checkouts.DELETE("/coupons/:code", checkoutHandler.RemoveCoupon)
	checkouts.POST("/elements/:element/click", checkoutHandler.ClickElement)

	// Strategy routes
	strategies := checkouts.Group("/strategies/:domain/:method")
	strategies.POST("/initialize", checkoutHandler.InitializeStrategy)
	strategies.POST("/execute", checkoutHandler.ExecuteStrategy)
	strategies.POST("/deinitialize", checkoutHandler.DeinitializeStrategy)

	return r
}
