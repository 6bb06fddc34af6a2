package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
	"github.com/vaxsched/vaccine-scheduler/internal/booking"
	"github.com/vaxsched/vaccine-scheduler/internal/cli"
	"github.com/vaxsched/vaccine-scheduler/internal/config"
	"github.com/vaxsched/vaccine-scheduler/internal/db"
	redisclient "github.com/vaxsched/vaccine-scheduler/internal/redis"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	memory := flag.Bool("memory", false, "run against an in-memory datastore (no Postgres or Redis needed)")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store    booking.Datastore
		accounts account.Store
		locker   redisclient.Locker
	)

	if *memory {
		store = booking.NewMemDatastore()
		accounts = account.NewMemStore()
		locker = redisclient.NewNopLocker()
	} else {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("config load error: %v", err)
		}
		if cfg.Datastore == config.DatastoreMemory {
			store = booking.NewMemDatastore()
			accounts = account.NewMemStore()
			locker = redisclient.NewNopLocker()
		} else {
			pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
			pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
			cancelPg()
			if err != nil {
				log.Fatalf("postgres connection error: %v", err)
			}
			defer pool.Close()

			if err := db.Migrate(rootCtx, pool); err != nil {
				log.Fatalf("migrate error: %v", err)
			}

			store = booking.NewPgDatastore(pool)
			accounts = account.NewPgStore(pool)
			locker = redisclient.NewNopLocker()
			if cfg.RedisAddr != "" {
				rdb, err := redisclient.New(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
				if err != nil {
					log.Fatalf("redis connection error: %v", err)
				}
				defer rdb.Close()
				locker = redisclient.NewRedisDateLocker(rdb, cfg.LockTTL)
			}
		}
	}

	engine := booking.NewEngine(store, accounts, locker)
	dispatcher := cli.New(engine, os.Stdout)

	if err := dispatcher.Run(rootCtx, os.Stdin); err != nil {
		log.Fatalf("console error: %v", err)
	}
}
