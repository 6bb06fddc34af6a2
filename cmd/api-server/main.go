package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
	"github.com/vaxsched/vaccine-scheduler/internal/api"
	"github.com/vaxsched/vaccine-scheduler/internal/booking"
	"github.com/vaxsched/vaccine-scheduler/internal/config"
	"github.com/vaxsched/vaccine-scheduler/internal/db"
	redisclient "github.com/vaxsched/vaccine-scheduler/internal/redis"
)

const version = "0.1.0"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	log.Printf("running in env=%s http_port=%s datastore=%s", cfg.Env, cfg.HTTPPort, cfg.Datastore)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store    booking.Datastore
		accounts account.Store
		locker   redisclient.Locker = redisclient.NewNopLocker()
		pool     *pgxpool.Pool
		rdb      *redis.Client
	)

	if cfg.Datastore == config.DatastoreMemory {
		store = booking.NewMemDatastore()
		accounts = account.NewMemStore()
	} else {
		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pool, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			log.Fatalf("postgres connection error: %v", err)
		}
		defer pool.Close()
		log.Println("connected to Postgres")

		if err := db.Migrate(rootCtx, pool); err != nil {
			log.Fatalf("migrate error: %v", err)
		}

		store = booking.NewPgDatastore(pool)
		accounts = account.NewPgStore(pool)
	}

	if cfg.RedisAddr != "" {
		rdb, err = redisclient.New(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("redis connection error: %v", err)
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				log.Printf("error closing redis: %v", err)
			}
		}()
		locker = redisclient.NewRedisDateLocker(rdb, cfg.LockTTL)
		log.Println("connected to Redis")
	}

	engine := booking.NewEngine(store, accounts, locker)
	handler := api.NewHandler(engine, accounts, cfg.JWTSecret)

	router := api.NewRouter(api.RouterConfig{
		Handler:   handler,
		JWTSecret: cfg.JWTSecret,
		PgPool:    pool,
		Redis:     rdb,
		Env:       cfg.Env,
		Version:   version,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Println("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
