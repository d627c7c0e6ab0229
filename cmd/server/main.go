package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/phone_shop/internal/config"
	"github.com/Skotchmaster/phone_shop/internal/db"
	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/metrics"
	"github.com/Skotchmaster/phone_shop/internal/middleware/auth"
	"github.com/Skotchmaster/phone_shop/internal/middleware/ratelimit"
	"github.com/Skotchmaster/phone_shop/internal/mykafka"
	"github.com/Skotchmaster/phone_shop/internal/repo"
	"github.com/Skotchmaster/phone_shop/internal/search"
	"github.com/Skotchmaster/phone_shop/internal/service"
	httpserver "github.com/Skotchmaster/phone_shop/internal/transport/http"
	"github.com/Skotchmaster/phone_shop/internal/upload"
)

const (
	janitorInterval = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.Load()
	l := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(l)

	if err := cfg.Validate(); err != nil {
		l.Error("config_error", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.IntoContext(ctx, l)

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		l.Error("db_connect_error", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		l.Error("db_migrate_error", "error", err)
		os.Exit(1)
	}

	var events mykafka.Publisher = mykafka.Nop{}
	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			l.Error("kafka_init_error", "error", err)
			os.Exit(1)
		}
		events = producer
	} else {
		l.Info("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var index service.ProductIndex
	if cfg.ESURL != "" {
		sc, err := search.NewClient(search.Config{
			URL:      cfg.ESURL,
			Username: cfg.ESUser,
			Password: cfg.ESPassword,
			Index:    cfg.ESIndex,
		})
		if err != nil {
			l.Error("search_init_error", "error", err)
			os.Exit(1)
		}
		if err := sc.EnsureIndex(ctx); err != nil {
			l.Warn("search_disabled", "reason", "index unavailable", "error", err)
		} else {
			index = sc
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Warn("ratelimit_disabled", "reason", "redis unavailable", "error", err)
			_ = rdb.Close()
			rdb = nil
		}
	}

	m := metrics.New()

	userRepo := &repo.UserRepo{DB: gdb}
	productRepo := &repo.ProductRepo{DB: gdb}
	categoryRepo := &repo.CategoryRepo{DB: gdb}
	orderRepo := &repo.OrderRepo{DB: gdb}

	tokens := &service.TokenService{
		Repo:          &repo.TokenRepo{DB: gdb},
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Metrics:       m,
	}
	authSvc := &service.AuthService{Users: userRepo, Tokens: tokens, Events: events}
	productSvc := &service.ProductService{
		Products:   productRepo,
		Categories: categoryRepo,
		Index:      index,
		Events:     events,
	}

	store, err := upload.NewStore(cfg.UploadDir, cfg.UploadBaseURL)
	if err != nil {
		l.Error("upload_dir_error", "error", err)
		os.Exit(1)
	}

	e := httpserver.New(&httpserver.Deps{
		Logger:        l,
		Metrics:       m,
		Auth:          auth.New(tokens),
		Limiter:       ratelimit.New(cfg.RateLimit, rdb),
		CORSOrigins:   cfg.CORSOrigins,
		UploadDir:     store.Dir,
		UploadBaseURL: store.BaseURL,

		HealthHandler:    &httpserver.HealthHTTP{DB: gdb},
		AuthHandler:      &httpserver.AuthHTTP{Svc: authSvc},
		ProductHandler:   &httpserver.ProductHTTP{Svc: productSvc},
		CategoryHandler:  &httpserver.CategoryHTTP{Svc: &service.CategoryService{Categories: categoryRepo}},
		CartHandler:      &httpserver.CartHTTP{Svc: &service.CartService{Cart: &repo.CartRepo{DB: gdb}}},
		OrderHandler:     &httpserver.OrderHTTP{Svc: &service.OrderService{Orders: orderRepo, Events: events, Metrics: m}},
		UserHandler:      &httpserver.UserHTTP{Svc: &service.UserService{Users: userRepo}},
		DashboardHandler: &httpserver.DashboardHTTP{Svc: &service.DashboardService{Products: productRepo, Orders: orderRepo, Users: userRepo}},
		UploadHandler:    &httpserver.UploadHTTP{Store: store},
	})

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName)
		if err != nil {
			l.Error("admin_seed_error", "error", err)
			os.Exit(1)
		}
		if created {
			l.Info("admin_seeded", "email", cfg.AdminEmail)
		}
	}

	if index != nil {
		go func() {
			n, err := productSvc.Reindex(ctx)
			if err != nil {
				l.Warn("reindex_error", "indexed", n, "error", err)
				return
			}
			l.Info("reindex_success", "indexed", n)
		}()
	}
	go tokens.RunJanitor(ctx, janitorInterval)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		l.Info("server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("http_server_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	stop()
	l.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			l.Error("kafka_close_error", "error", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			l.Error("redis_close_error", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		l.Error("db_close_error", "error", err)
	}

	l.Info("shutdown_complete")
}
