// Package app assembles the HTTP handler from the environment config. The
// long-running server and the serverless entry point share it.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/arnavshah/housekeeping-api-go/internal/config"
	"github.com/arnavshah/housekeeping-api-go/internal/metrics"
	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/arnavshah/housekeeping-api-go/pkg/auth"
	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/arnavshah/housekeeping-api-go/pkg/handlers"
	"github.com/arnavshah/housekeeping-api-go/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// New connects the stores named in cfg and returns the handler with a
// cleanup func closing them.
func New(cfg *config.Config, log *zap.Logger) (*handlers.Handler, func(), error) {
	if cfg.Auth.JWTSecret == "" || cfg.Auth.MasterSecret == "" {
		return nil, nil, errors.New("AUTH_JWT_SECRET and AUTH_MASTER_SECRET must be set")
	}

	policy, err := config.LoadPolicy(cfg.Engine.PolicyFile)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cfg.Database.URL, cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	var closers []func()
	if sqlDB, err := db.DB(); err == nil {
		closers = append(closers, func() { _ = sqlDB.Close() })
	}

	var limiter *ratelimit.Limiter
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// Requests fail open while Redis is down, so a bad ping is not fatal.
			log.Warn("redis unreachable, daily limits paused", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		limiter = ratelimit.New(rdb, "")
		closers = append(closers, func() { _ = rdb.Close() })
	}

	h := &handlers.Handler{
		DB:       db,
		Auth:     auth.New(cfg.Auth.JWTSecret, cfg.Auth.MasterSecret, cfg.TokenTTL()).WithBcryptCost(cfg.Auth.BcryptCost),
		Limiter:  limiter,
		Logger:   log,
		Recorder: metrics.NewPrometheus(nil, ""),
		Policy:   policy,
		Search: allocator.SearchOptions{
			Attempts: cfg.Engine.Attempts,
			Timeout:  cfg.SearchTimeout(),
			Workers:  cfg.Engine.Workers,
		},
		AdminUsername: cfg.Auth.AdminUsername,
		AdminPassword: cfg.Auth.AdminPassword,
	}

	if err := h.Auth.EnsureAdminExists(db, h.AdminUsername, h.AdminPassword, log); err != nil {
		log.Error("could not ensure admin account", zap.Error(err))
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	return h, cleanup, nil
}
