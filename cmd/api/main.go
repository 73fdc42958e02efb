package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"airport-service/internal/auth"
	"airport-service/internal/configs"
	httpdelivery "airport-service/internal/delivery/http"
	"airport-service/internal/delivery/kafka"
	"airport-service/internal/repository/cache"
	"airport-service/internal/repository/postgres"
	"airport-service/internal/service"
	"airport-service/internal/storage"
)

// @title Airport service
// @version 1.0
// @description Ticket booking API: airports, airplanes, crew, routes, flights, orders and tickets.

// @host localhost:8080
// @basePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := configs.LoadConfig(".env")
	if err != nil {
		logrus.Fatalf("config load: %s", err)
	}
	if err := cfg.SetupLogging(); err != nil {
		logrus.Fatalf("logging setup: %s", err)
	}
	logrus.Print("config parsed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.ConnectURL(cfg.PgDSN())
	if err != nil {
		logrus.Fatalf("postgres connect: %s", err)
	}
	defer func() {
		if derr := db.Close(); derr != nil {
			logrus.Errorf("db close: %v", derr)
		}
	}()
	if err := postgres.Migrate(db); err != nil {
		logrus.Fatalf("migrate: %s", err)
	}
	logrus.Print("connected to postgres")

	store, closeStore, err := cache.Open(ctx, cfg.CacheBackend, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		logrus.Fatalf("cache open: %s", err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logrus.Errorf("cache close: %v", cerr)
		}
	}()
	logrus.WithField("backend", cfg.CacheBackend).Print("view cache ready")

	instance := cfg.InstanceID
	if instance == "" {
		host, _ := os.Hostname()
		instance = host + "-" + uuid.NewString()[:8]
	}

	opts := []service.Option{
		service.WithCache(cache.NewViewCache(store), cache.NewInvalidator(store)),
		service.WithImages(storage.NewImageStore(cfg.MediaRoot), cfg.MediaURL),
		service.WithLeadTime(cfg.TicketLeadTime),
	}

	var publisher *kafka.Publisher
	if cfg.EventsEnabled() {
		publisher = kafka.NewPublisher(cfg.KafkaBrokersSlice(), cfg.KafkaTopic)
		defer func() {
			if perr := publisher.Close(); perr != nil {
				logrus.Errorf("publisher close: %v", perr)
			}
		}()
		opts = append(opts, service.WithEvents(publisher, instance))
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	svc := service.NewService(postgres.NewRepository(db), tokens, opts...)

	var wg sync.WaitGroup
	var consumer *kafka.Consumer
	if cfg.EventsEnabled() {
		consumer = kafka.NewConsumer(kafka.Config{
			Brokers:    cfg.KafkaBrokersSlice(),
			GroupID:    cfg.GroupID(instance),
			Topic:      cfg.KafkaTopic,
			DLQ:        cfg.KafkaDLQTopic,
			MaxRetries: 3,
		}, svc)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := consumer.Subscribe(ctx); err != nil {
				logrus.Errorf("consumer stopped: %v", err)
				cancel()
			}
		}()
		logrus.WithField("instance", instance).Print("kafka subscription started")
	} else {
		logrus.Print("KAFKA_BROKERS empty, cache fan-out disabled")
	}

	h := httpdelivery.NewHandler(svc, httpdelivery.WithMedia(cfg.MediaURL, cfg.MediaRoot))
	srv := new(httpdelivery.Server)

	go func() {
		if err := srv.Run(cfg.HTTPAddr, h.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http run: %v", err)
			cancel()
		}
	}()
	logrus.Printf("http server started on %s", cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-quit:
		logrus.Print("shutdown signal received")
	case <-ctx.Done():
		logrus.Print("context canceled, shutting down")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("http shutdown: %s", err)
	}

	cancel()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logrus.Errorf("consumer close: %s", err)
		}
	}
	wg.Wait()
	logrus.Print("service stopped")
}
