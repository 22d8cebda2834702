package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/vaibhavk10/YT-API/internal/api"
	"github.com/vaibhavk10/YT-API/internal/fetch"
	"github.com/vaibhavk10/YT-API/internal/ffmpeg"
	"github.com/vaibhavk10/YT-API/internal/resolver"
	"github.com/vaibhavk10/YT-API/internal/search"
	"github.com/vaibhavk10/YT-API/internal/store"
	"github.com/vaibhavk10/YT-API/internal/tunnel"
	"github.com/vaibhavk10/YT-API/internal/ytdlp"
	"github.com/vaibhavk10/YT-API/pkg/config"
	"github.com/vaibhavk10/YT-API/pkg/kafka"
	"github.com/vaibhavk10/YT-API/pkg/logger"
	"github.com/vaibhavk10/YT-API/pkg/storage/objectstore"
	"github.com/vaibhavk10/YT-API/pkg/tracing"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logr, err := logger.New(cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Attributes:  parseResourceAttributes(cfg.Tracing.ResourceAttr),
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		logr.Fatal("init tracing", zap.Error(err))
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

	stagingDir := cfg.Download.Dir
	if cfg.Download.Serverless {
		stagingDir = filepath.Join(os.TempDir(), "ytapi-downloads")
	}
	files, err := store.New(stagingDir, cfg.Download.TTL, cfg.Download.SettleDelay, logr)
	if err != nil {
		logr.Fatal("init file store", zap.Error(err))
	}
	if !cfg.Download.Serverless {
		go files.RunSweeper(ctx, cfg.Download.SweepInterval)
	}

	runner := ytdlp.NewRunner(cfg.Tools.YtDlpPath, cfg.Tools.CookieFile, logr)
	transcoder := ffmpeg.NewTranscoder(cfg.Tools.FFmpegPath, logr)
	lookup := search.NewClient(runner, logr)

	params := api.Params{
		Resolver:       resolver.New(lookup, runner, logr),
		Chain:          fetch.NewChain(runner, transcoder, logr),
		Files:          files,
		Search:         lookup,
		Logger:         logr,
		Creator:        cfg.App.Creator,
		APIKey:         cfg.Auth.Key(),
		BaseURL:        cfg.HTTP.BaseURL,
		Serverless:     cfg.Download.Serverless,
		RateLimitRPS:   cfg.HTTP.RateLimitRPS,
		RateLimitBurst: cfg.HTTP.RateLimitBurst,
	}

	if cfg.Tunnel.CobaltURL != "" {
		params.Tunnel = tunnel.NewClient(cfg.Tunnel.CobaltURL, logr)
	}

	if cfg.Storage.Enabled() {
		offload, err := objectstore.New(objectstore.Config{
			Endpoint:  cfg.Storage.Endpoint,
			Region:    cfg.Storage.Region,
			Bucket:    cfg.Storage.Bucket,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logr.Fatal("init object store", zap.Error(err))
		}
		params.Offload = offload
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled() {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Compression:  kafka.CompressionFromString(cfg.Kafka.Compression),
			RequiredAcks: kafkago.RequireAll,
			MaxAttempts:  cfg.Kafka.Retries,
		})
		params.Events = producer
	}

	srv := api.NewServer(params)

	server := &http.Server{
		Addr:        ":" + cfg.HTTP.Port,
		Handler:     srv.Router(),
		ReadTimeout: cfg.HTTP.ReadTimeout,
		IdleTimeout: cfg.HTTP.IdleTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("http server shutdown failed", zap.Error(err))
		}
		if producer != nil {
			if err := producer.Close(shutdownCtx); err != nil {
				logr.Error("kafka producer close failed", zap.Error(err))
			}
		}
	}()

	logr.Info("api starting",
		zap.String("addr", server.Addr),
		zap.Bool("serverless", cfg.Download.Serverless),
		zap.Duration("file_ttl", cfg.Download.TTL))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Fatal("http server failed", zap.Error(err))
	}
}

func parseResourceAttributes(raw string) map[string]string {
	if raw == "" {
		return map[string]string{}
	}
	attrs := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" || !strings.Contains(pair, "=") {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		attrs[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return attrs
}
