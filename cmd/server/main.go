package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"faultline/internal/comments"
	"faultline/internal/directory"
	"faultline/internal/fanout"
	"faultline/internal/history"
	"faultline/internal/platform/config"
	"faultline/internal/platform/httpserver"
	"faultline/internal/platform/logger"
	"faultline/internal/platform/metrics"
	"faultline/internal/platform/middleware"
	"faultline/internal/stats"
	"faultline/internal/storage/cassandra"
	"faultline/internal/tracker"
	httptransport "faultline/internal/transport/http"
)

// main wires dependencies and owns the server lifecycle. Business logic lives
// in the internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel)

	session, err := cassandra.Connect(cassandra.Config{
		Hosts:          cfg.Cassandra.Hosts,
		Port:           cfg.Cassandra.Port,
		Keyspace:       cfg.Cassandra.Keyspace,
		ConnectTimeout: cfg.Cassandra.ConnectTimeout,
		QueryTimeout:   cfg.Cassandra.QueryTimeout,
		Replication:    cfg.Cassandra.Replication,
	}, log)
	if err != nil {
		return err
	}
	defer session.Close()

	store := cassandra.NewStore(session)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	met := metrics.New(reg)

	var publisher history.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := history.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return fmt.Errorf("kafka publisher: %w", err)
		}
		defer kafka.Close()
		publisher = kafka
		log.Info("change-event stream enabled", "topic", cfg.Kafka.Topic)
	}

	writer := fanout.NewWriter(store, log, met, fanout.Config{
		MaxRetries:      cfg.Fanout.MaxRetries,
		InitialInterval: cfg.Fanout.InitialInterval,
		MaxInterval:     cfg.Fanout.MaxInterval,
	})
	recorder := history.NewRecorder(store, publisher, log, met)
	aggregator := stats.NewAggregator(store)

	trackerSvc := tracker.NewService(store, writer, recorder, aggregator, store, store, log, met)
	commentsSvc := comments.NewService(store, store)
	directorySvc := directory.NewService(store, store)

	health := func(ctx context.Context) error {
		return session.Query(`SELECT release_version FROM system.local`).WithContext(ctx).Exec()
	}

	handler := httptransport.NewHandler(trackerSvc, commentsSvc, directorySvc, health, log)
	var router http.Handler = httptransport.NewRouter(handler, reg, log)
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
		router = limiter.Middleware(router)
	}
	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting faultline", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
