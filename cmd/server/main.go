package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/avolkova/fix-exchange/internal/adapter/cache"
	"github.com/avolkova/fix-exchange/internal/adapter/in_memory"
	"github.com/avolkova/fix-exchange/internal/adapter/pg"
	"github.com/avolkova/fix-exchange/internal/adapter/stream"
	httpapi "github.com/avolkova/fix-exchange/internal/api/http"
	"github.com/avolkova/fix-exchange/internal/config"
	"github.com/avolkova/fix-exchange/internal/engine"
	"github.com/avolkova/fix-exchange/internal/fixgate"
	"github.com/avolkova/fix-exchange/internal/logging"
	"github.com/avolkova/fix-exchange/internal/port"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repo port.Repository
	if cfg.Postgres.Enabled {
		pgRepo, err := pg.NewRepo(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("connect to Postgres", zap.Error(err))
		}
		defer pgRepo.Close()
		repo = pgRepo
	} else {
		repo = in_memory.NewMemoryRepo()
	}

	var bookCache port.Cache
	if cfg.Redis.Enabled {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer redisCache.Close()
		bookCache = redisCache
	} else {
		bookCache = in_memory.NewCache()
	}

	var publisher port.ExecutionPublisher
	if cfg.Kafka.Enabled {
		kafkaPub := stream.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPub.Close()
		publisher = kafkaPub
	}

	eng := engine.New(repo, bookCache, publisher, logger)
	if err := eng.LoadOpenOrders(ctx); err != nil {
		logger.Fatal("restore open orders", zap.Error(err))
	}

	gateway := fixgate.NewServer(cfg.Fix.Addr, eng, logger)
	go func() {
		if err := gateway.Run(ctx); err != nil {
			logger.Fatal("FIX gateway failed", zap.Error(err))
		}
	}()

	api := httpapi.NewServer(eng, cfg.HTTP.RateLimit, logger)
	go func() {
		logger.Info("HTTP API listening", zap.String("addr", cfg.HTTP.Addr))
		if err := api.Run(cfg.HTTP.Addr); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
}
