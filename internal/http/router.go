// README: HTTP router registration (gin) with request-id, logging, recovery and metrics middleware.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vanbook/internal/http/handlers"
	"vanbook/internal/http/middleware"
	"vanbook/internal/metrics"
	"vanbook/internal/modules/booking"
	"vanbook/internal/modules/quote"
)

type Deps struct {
	Quotes   *quote.Service
	Bookings *booking.Service
	Logger   *zap.Logger
}

func NewRouter(deps Deps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Recovery(logger),
		middleware.Metrics(),
	)

	api := r.Group("/api")

	quoteHandler := handlers.NewQuoteHandler(deps.Quotes)
	api.POST("/quotes", quoteHandler.Create)
	api.POST("/quotes/simple", quoteHandler.CreateSimple)
	api.GET("/quotes/:id", quoteHandler.Get)

	bookingHandler := handlers.NewBookingHandler(deps.Bookings)
	api.POST("/bookings", bookingHandler.Create)
	api.GET("/bookings/:id", bookingHandler.Get)
	api.POST("/bookings/:id/checkout", bookingHandler.Checkout)
	api.POST("/bookings/:id/confirm", bookingHandler.Confirm)
	api.POST("/bookings/:id/cancel", bookingHandler.Cancel)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
