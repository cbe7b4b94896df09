package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shubham-ralli/form-b/internal/config"
	"github.com/shubham-ralli/form-b/internal/db"
	"github.com/shubham-ralli/form-b/internal/log"
	"github.com/shubham-ralli/form-b/internal/repository"
	"github.com/shubham-ralli/form-b/internal/repository/memrepo"
	"github.com/shubham-ralli/form-b/internal/repository/mongorepo"
	"github.com/shubham-ralli/form-b/internal/service"
)

// backend is an opened store driver.
type backend struct {
	stores service.Stores
	// prepare creates indexes. It may run for a long time on large
	// collections and is called in the background.
	prepare func(ctx context.Context) error
	ping    func(ctx context.Context) error
	close   func()
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	switch cfg.Store {
	case config.StoreOxiDB:
		return openOxiDB(cfg)
	case config.StoreMongo:
		return openMongo(ctx, cfg)
	case config.StoreMemory:
		m := memrepo.New()
		return &backend{
			stores:  service.Stores{Forms: m.Forms, Submissions: m.Submissions, Users: m.Users},
			prepare: func(context.Context) error { return nil },
			close:   func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func openOxiDB(cfg *config.Config) (*backend, error) {
	pool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("connect to OxiDB: %w", err)
	}
	log.Infof("Connected to OxiDB at %s:%d (pool size: %d)", cfg.OxiDBHost, cfg.OxiDBPort, cfg.PoolSize)

	b := &backend{
		stores: service.Stores{
			Forms:       repository.NewFormRepo(pool),
			Submissions: repository.NewSubmissionRepo(pool),
			Users:       repository.NewUserRepo(pool),
		},
		ping:  pool.Ping,
		close: pool.Close,
	}
	// Index builds run on a dedicated connection so they do not hold the
	// request pool.
	b.prepare = func(ctx context.Context) error {
		initPool, err := db.NewPool(cfg.OxiDBHost, cfg.OxiDBPort, 1)
		if err != nil {
			log.Warnf("Background init: dedicated connection failed, using main pool: %v", err)
			initPool = pool
		} else {
			defer initPool.Close()
		}
		if err := repository.NewUserRepo(initPool).EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("user indexes: %w", err)
		}
		if err := repository.NewFormRepo(initPool).EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("form indexes: %w", err)
		}
		start := time.Now()
		if err := repository.NewSubmissionRepo(initPool).EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("submission indexes: %w", err)
		}
		log.Infof("Background init: submission indexes ready (%s)", time.Since(start).Round(time.Second))
		return nil
	}
	return b, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*backend, error) {
	stores, disconnect, err := mongorepo.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	log.Infof("Connected to MongoDB database %s", cfg.MongoDB)
	return &backend{
		stores:  stores,
		prepare: func(ctx context.Context) error { return mongorepo.EnsureIndexes(ctx, stores) },
		close: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := disconnect(ctx); err != nil {
				log.Warnf("MongoDB disconnect: %v", err)
			}
		},
	}, nil
}
