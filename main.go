package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"image-scraper/config"
	"image-scraper/crawler"
	"image-scraper/logging"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg := config.Load()

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	extractor, err := crawler.NewImageExtractor(crawlerConfig(cfg), logger.Named("extractor"))
	if err != nil {
		logger.Fatal("Failed to create image extractor", zap.Error(err))
	}

	server := NewServer(cfg, extractor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting image scraper",
		zap.String("port", cfg.Server.Port),
		zap.String("backend", cfg.Crawler.Backend),
	)
	if err := server.Run(ctx); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func crawlerConfig(cfg *config.Settings) crawler.Config {
	return crawler.Config{
		Backend:             cfg.Crawler.Backend,
		UserAgent:           cfg.Crawler.UserAgent,
		Timeout:             cfg.Crawler.Timeout,
		MaxBodyBytes:        cfg.Crawler.MaxBodyBytes,
		MaxIdleConns:        cfg.Crawler.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Crawler.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.Crawler.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.Crawler.TLSHandshakeTimeout,
		Debug:               cfg.Crawler.Debug,
	}
}
