package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/daehwan-kim/retail-order-service/internal/api"
	"github.com/daehwan-kim/retail-order-service/internal/api/middleware"
	"github.com/daehwan-kim/retail-order-service/internal/cache"
	"github.com/daehwan-kim/retail-order-service/internal/repository"
	"github.com/daehwan-kim/retail-order-service/internal/repository/memory"
	"github.com/daehwan-kim/retail-order-service/internal/service"
	"github.com/daehwan-kim/retail-order-service/pkg/db"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	var (
		users    service.UserStore
		products service.ProductStore
		coupons  service.CouponStore
		orders   service.OrderStore
	)

	// STORE_BACKEND=memory boots without Postgres, for local development.
	if getEnv("STORE_BACKEND", "postgres") == "memory" {
		mem := memory.NewStore()
		users, products, coupons, orders = mem, mem, mem, mem
		slog.Info("using in-memory stores")
	} else {
		cfg := db.LoadPostgresConfig()
		conn, err := db.NewPostgresConnection(cfg)
		if err != nil {
			log.Fatalf("db connect: %v", err)
		}
		defer conn.Close()

		users = repository.NewUserRepo(conn)
		products = repository.NewProductRepo(conn)
		coupons = repository.NewCouponRepo(conn)
		orders = repository.NewOrderRepo(conn)
	}

	var readCache cache.Cache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisCache := cache.NewRedis(addr, "order-service")
		if err := redisCache.Ping(context.Background()); err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		readCache = redisCache
	} else {
		readCache = cache.NewMemory()
	}

	var analytics service.AnalyticsNotifier = repository.NoopNotifier{}
	if endpoint := os.Getenv("DATA_PLATFORM_URL"); endpoint != "" {
		analytics = repository.NewDataPlatformNotifier(endpoint)
	}

	handler := api.NewRouter(api.Services{
		Orders:   service.NewOrderService(users, products, coupons, orders, analytics),
		Coupons:  service.NewCouponService(users, coupons, readCache),
		Points:   service.NewPointService(users),
		Products: service.NewProductService(products),
		Users:    service.NewUserService(users),
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Mount("/", handler)

	addr := ":" + getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		<-c
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	slog.Info("starting order-service", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("listen: %s\n", err)
	}

	<-idleConnsClosed
	slog.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
