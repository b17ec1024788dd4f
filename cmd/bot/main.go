package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"saham-bot/internal/bot"
	"saham-bot/internal/datasource"
	"saham-bot/internal/logger"
	"saham-bot/internal/server"
	"saham-bot/internal/store"
	"saham-bot/internal/waha"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())

	ctx := context.Background()

	cfg, err := store.LoadConfig("config.yaml")
	must(err)

	tv := datasource.NewClient(datasource.ClientConfig{
		BaseURL:  cfg.TradingView.BaseURL,
		Username: cfg.TradingView.Username,
		Password: cfg.TradingView.Password,
		Timeout:  cfg.ProviderTimeout(),
	})
	cache := datasource.NewCache(cfg.CacheTTL(), cfg.Cache.MaxEntries)
	quotes := datasource.NewService(tv, cache, cfg)
	gateway := waha.NewClient(cfg)
	botSvc := bot.NewService(cfg, quotes, gateway)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.NewRouter(botSvc),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "HTTP server failed", err)
			os.Exit(1)
		}
	}()
	logger.Info(ctx, "Bot started",
		"port", cfg.Server.Port,
		"waha", cfg.Waha.BaseURL,
		"interval", cfg.TradingView.Interval,
		"authenticated", cfg.TradingView.Username != "")

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc

	logger.Info(ctx, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = logger.Shutdown(shutdownCtx)
}
