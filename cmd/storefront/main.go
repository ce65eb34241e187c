package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/sweetshop/internal/auth"
	"github.com/fjod/sweetshop/internal/cart"
	"github.com/fjod/sweetshop/internal/catalog"
	"github.com/fjod/sweetshop/internal/checkout"
	"github.com/fjod/sweetshop/internal/comment"
	"github.com/fjod/sweetshop/internal/config"
	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/events"
	"github.com/fjod/sweetshop/internal/fixtures"
	grpcserver "github.com/fjod/sweetshop/internal/grpc"
	h "github.com/fjod/sweetshop/internal/http"
	"github.com/fjod/sweetshop/internal/logger"
	"github.com/fjod/sweetshop/internal/order"
	"github.com/fjod/sweetshop/internal/payment"
	"github.com/fjod/sweetshop/internal/session"
	"github.com/fjod/sweetshop/internal/slot"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "storefront"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel, serviceName)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()
	var closers []io.Closer
	var probes []grpcserver.Probe
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				log.Warn("close failed", "error", err)
			}
		}
	}()

	// Identity slot
	var s slot.Slot = slot.NewMemorySlot()
	if cfg.SlotBackend == "redis" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		closers = append(closers, redisClient)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("redis ping succeeded", "addr", cfg.RedisAddr)
		probes = append(probes, grpcserver.Probe{Name: "redis", Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
		s = slot.NewBreakerSlot(slot.NewRedisSlot(redisClient), slot.BreakerConfig{
			Name:             "identity-slot",
			FailureThreshold: 5,
			OpenTimeout:      10 * time.Second,
		}, log)
	}

	authCfg := auth.Config{
		LoginDelay:    cfg.Latency.Login,
		RegisterDelay: cfg.Latency.Register,
		RestoreDelay:  cfg.Latency.Restore,
	}
	users := auth.NewUserStore(s, authCfg, log)
	admins := auth.NewAdminStore(s, authCfg, log)
	sess := session.New(users, admins, log)
	if err := sess.Init(ctx); err != nil {
		// a broken slot leaves the session as guest; the service still starts
		log.Warn("session restore failed", "error", err)
	}

	// Catalog
	var catalogRepo catalog.Repository = catalog.NewMemoryRepository(fixtures.Products(), fixtures.Stores())
	if cfg.CatalogDB != "" {
		repo, err := catalog.NewSQLiteRepository(cfg.CatalogDB)
		if err != nil {
			return err
		}
		closers = append(closers, repo)
		if err := repo.RunMigrations(); err != nil {
			return err
		}
		log.Info("catalog database ready", "path", cfg.CatalogDB)
		catalogRepo = repo
	}
	cat := catalog.New(catalogRepo)

	// Orders
	var orderRepo order.Repository
	switch cfg.OrderBackend {
	case "postgres":
		repo, err := order.NewPostgresRepository(&order.Credentials{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			DBName:   cfg.Postgres.DBName,
		})
		if err != nil {
			return err
		}
		closers = append(closers, repo)
		if err := repo.RunMigrations(); err != nil {
			return err
		}
		log.Info("database migrations completed")
		probes = append(probes, grpcserver.Probe{Name: "postgres", Check: repo.Ping})
		if cfg.SeedDemoData {
			if err := seedOrders(ctx, repo, fixtures.Orders()); err != nil {
				return err
			}
		}
		orderRepo = repo
	default:
		var seed []domain.Order
		if cfg.SeedDemoData {
			seed = fixtures.Orders()
		}
		orderRepo = order.NewMemoryRepository(seed...)
	}

	var pub events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.KafkaTopic, log, cfg.KafkaBrokers...)
		log.Info("publishing order events", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}
	closers = append(closers, pub)

	orders := order.NewStore(orderRepo, sess, order.Config{
		CreateDelay: cfg.Latency.OrderCreate,
		GetDelay:    cfg.Latency.OrderGet,
		ListDelay:   cfg.Latency.OrderList,
		UpdateDelay: cfg.Latency.OrderUpdate,
	}, log, order.WithPublisher(pub))

	// Comments
	var commentRepo comment.Repository
	switch cfg.CommentBackend {
	case "mongo":
		db, err := comment.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				log.Warn("mongo disconnect failed", "error", err)
			}
		}()
		log.Info("connected to MongoDB", "uri", cfg.MongoURI)
		probes = append(probes, grpcserver.Probe{Name: "mongodb", Check: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		}})
		repo := comment.NewMongoRepository(db)
		if err := repo.CreateIndexes(ctx); err != nil {
			return err
		}
		if cfg.SeedDemoData {
			if err := repo.SeedIfEmpty(ctx, fixtures.Comments()); err != nil {
				return err
			}
		}
		commentRepo = repo
	default:
		var seed []domain.Comment
		if cfg.SeedDemoData {
			seed = fixtures.Comments()
		}
		commentRepo = comment.NewMemoryRepository(seed...)
	}
	comments := comment.NewStore(commentRepo, sess, comment.Config{
		ListDelay:   cfg.Latency.CommentList,
		AddDelay:    cfg.Latency.CommentAdd,
		LikeDelay:   cfg.Latency.CommentLike,
		DeleteDelay: cfg.Latency.CommentDelete,
	}, log)

	// Cart, payment, checkout
	var initial []domain.CartLine
	if cfg.SeedDemoData {
		initial = fixtures.CartLines()
	}
	c := cart.NewStore(initial...)

	var gw payment.Gateway = payment.MockGateway{}
	if cfg.PaymentGateway == "random" {
		gw = payment.NewRandomGateway()
	}
	payments := payment.NewStore(gw, payment.Config{Delay: cfg.Latency.Payment}, log)
	co := checkout.NewService(c, orders, payments, log)

	router := h.NewRouter(h.Handlers{
		Catalog:  h.NewCatalogHandler(cat, log),
		Cart:     h.NewCartHandler(c, cat, log),
		Auth:     h.NewAuthHandler(users, admins, log),
		Orders:   h.NewOrderHandler(orders, co, log),
		Payments: h.NewPaymentHandler(payments, log),
		Comments: h.NewCommentHandler(comments, log),
		Status:   h.NewStatusHandler(sess, users, admins, orders, comments, payments, log),
	}, h.RouterConfig{RequestTimeout: cfg.RequestTimeout, ServiceName: serviceName}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var health *grpcserver.HealthServer
	healthCtx, stopHealth := context.WithCancel(ctx)
	defer stopHealth()
	if cfg.GRPCPort != "" {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		health = grpcserver.NewHealthServer(probes, grpcserver.HealthConfig{Interval: cfg.HealthInterval}, log)
		go health.Run(healthCtx)
		go func() {
			log.Info("grpc health listening", "port", cfg.GRPCPort)
			if err := health.Serve(lis); err != nil {
				log.Error("grpc health server failed", "error", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	log.Info("shutting down server...")
	stopHealth()
	if health != nil {
		health.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("server exited")
	return nil
}

// seedOrders inserts the demo orders that are not stored yet.
func seedOrders(ctx context.Context, repo order.Repository, seed []domain.Order) error {
	for _, o := range seed {
		_, err := repo.Get(ctx, o.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("seed order %s: %w", o.ID, err)
		}
		if err := repo.Insert(ctx, o); err != nil {
			return fmt.Errorf("seed order %s: %w", o.ID, err)
		}
	}
	return nil
}
