package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/smartbasket/internal/cart"
	"github.com/vasiliy-maslov/smartbasket/internal/catalog"
	"github.com/vasiliy-maslov/smartbasket/internal/config"
	"github.com/vasiliy-maslov/smartbasket/internal/db"
	handler "github.com/vasiliy-maslov/smartbasket/internal/handler/http"
	"github.com/vasiliy-maslov/smartbasket/internal/logger"
	"github.com/vasiliy-maslov/smartbasket/internal/order"
	"github.com/vasiliy-maslov/smartbasket/internal/server"
	"github.com/vasiliy-maslov/smartbasket/internal/user"
)

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	closeLog := logger.Setup(logger.Options{
		Service: "smartbasket",
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
	})
	defer func() {
		if err := closeLog(); err != nil {
			log.Warn().Err(err).Msg("Failed to close log file")
		}
	}()

	log.Info().Msg("SmartBasket starting...")

	if err := db.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	userSvc := user.NewService(user.NewRepository(dbConn.Pool))
	catalogSvc := catalog.NewService(
		catalog.NewProductRepository(dbConn.Pool),
		catalog.NewPlatformRepository(dbConn.Pool),
	)
	cartSvc := cart.NewService(cart.NewRepository(dbConn.Pool), userSvc, catalogSvc)
	orderSvc := order.NewService(order.NewRepository(dbConn.Pool), userSvc, cfg.Order.StrictTransitions)

	router := server.NewRouter(cfg.CORS.AllowedOrigins,
		handler.NewAuthHandler(userSvc),
		handler.NewCatalogHandler(catalogSvc),
		handler.NewCartHandler(cartSvc),
		handler.NewOrderHandler(orderSvc),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.App.Port).Bool("strict_transitions", cfg.Order.StrictTransitions).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Str("port", cfg.App.Port).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		os.Exit(1)
	}

	log.Info().Msg("SmartBasket stopped gracefully")
}
