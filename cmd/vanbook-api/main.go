// README: Entry point; loads config, wires estimator, pricing, stores and payments, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vanbook/internal/config"
	"vanbook/internal/events"
	httptransport "vanbook/internal/http"
	"vanbook/internal/infra"
	"vanbook/internal/maps"
	"vanbook/internal/metrics"
	"vanbook/internal/modules/booking"
	"vanbook/internal/modules/distance"
	"vanbook/internal/modules/pricing"
	"vanbook/internal/modules/quote"
	"vanbook/internal/payment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := infra.NewLogger(cfg.Production())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.RegisterDefault()
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	tables, err := distance.LoadTables(cfg.Tables.DistanceFile)
	if err != nil {
		return err
	}
	rates, err := pricing.LoadRates(cfg.Tables.RatesFile)
	if err != nil {
		return err
	}

	estimatorOpts := []distance.Option{distance.WithLogger(logger)}
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey, cfg.Maps.RatePerSec)
		if err != nil {
			return err
		}
		var router distance.Router = routes
		if cfg.Redis.Addr != "" {
			rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
			if err != nil {
				return err
			}
			defer rdb.Close()
			router = maps.NewCachedRouter(routes, rdb, cfg.Maps.CacheTTL, logger)
		}
		estimatorOpts = append(estimatorOpts, distance.WithRouter(router, cfg.Maps.Timeout))
		logger.Info("external routing enabled", zap.Bool("cached", cfg.Redis.Addr != ""))
	}
	estimator := distance.NewService(tables, estimatorOpts...)

	var (
		quoteStore   quote.Store
		bookingStore booking.Store
	)
	if cfg.DB.DSN != "" {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			return err
		}
		defer dbPool.Close()
		quoteStore = quote.NewPGStore(dbPool)
		bookingStore = booking.NewPGStore(dbPool)
	} else {
		logger.Warn("no database configured, quotes and bookings are kept in memory")
		quoteStore = quote.NewMemoryStore()
		bookingStore = booking.NewMemoryStore()
	}

	var payments booking.Payments = payment.Disabled{}
	if cfg.Payment.StripeKey != "" {
		payments = payment.NewStripeGateway(cfg.Payment.StripeKey)
	}

	var bookingOpts []booking.Option
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer publisher.Close()
		bookingOpts = append(bookingOpts, booking.WithPublisher(publisher))
	}

	quoteSvc := quote.NewService(estimator, pricing.NewEngine(rates), quoteStore, logger)
	bookingSvc := booking.NewService(bookingStore, quoteSvc, payments, logger, bookingOpts...)

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: httptransport.NewRouter(httptransport.Deps{
			Quotes:   quoteSvc,
			Bookings: bookingSvc,
			Logger:   logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
