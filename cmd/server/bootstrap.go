package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Nina932/nyx/internal/auth"
	"github.com/Nina932/nyx/internal/config"
	"github.com/Nina932/nyx/internal/gateway"
	"github.com/Nina932/nyx/internal/handlers"
	"github.com/Nina932/nyx/internal/ledger"
	"github.com/Nina932/nyx/internal/middleware"
	"github.com/Nina932/nyx/internal/models"
	"github.com/Nina932/nyx/internal/prompts"
	"github.com/Nina932/nyx/internal/ratelimit"
	"github.com/Nina932/nyx/internal/services"
	"github.com/Nina932/nyx/internal/telemetry"
	"github.com/Nina932/nyx/internal/utils"
	"github.com/Nina932/nyx/pkg/logger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// infra is everything that talks to the outside world. Tests build one with
// an in-memory database and a fake gateway.
type infra struct {
	db        *gorm.DB
	gateway   gateway.Gateway
	store     ratelimit.Store
	usage     ledger.Writer
	verifier  auth.Verifier
	signer    *auth.SecretVerifier
	directory services.Directory
}

// app holds the initialized services and handlers.
type app struct {
	cfg        *config.Config
	infra      infra
	aiLimiter  *ratelimit.Limiter
	apiLimiter *middleware.RateLimiter
	systemLogs *services.SystemLogService
	scheduler  *services.Scheduler

	authHandler      *handlers.AuthHandler
	aiHandler        *handlers.AIHandler
	employeeHandler  *handlers.EmployeeHandler
	roleHandler      *handlers.RoleHandler
	policyHandler    *handlers.PolicyHandler
	systemLogHandler *handlers.SystemLogHandler
	healthHandler    *handlers.HealthHandler

	redis             redis.UniversalClient
	worker            *ledger.Worker
	telemetryShutdown func(context.Context) error
}

// bootstrap connects the database, Redis, the AI provider and tracing, then
// assembles the app and starts its background jobs.
func bootstrap(ctx context.Context, cfg *config.Config) (*app, error) {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	db, err := models.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	adminHash, err := utils.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	if err := models.SeedDefaultData(db, adminHash); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	gw, err := gateway.New(ctx, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("ai gateway: %w", err)
	}
	logger.Info().Str("provider", cfg.AI.Provider).Str("fast_model", cfg.AI.FastModel).Str("pro_model", cfg.AI.ProModel).Msg("AI gateway ready")

	verifier, signer := newVerifier(ctx, &cfg.Auth)

	var store ratelimit.Store = ratelimit.NewMemoryStore()
	rdb := newRedis(ctx, &cfg.Redis)
	if rdb != nil {
		store = ratelimit.NewRedisStore(rdb, "")
	}

	l := ledger.New(db)
	in := infra{
		db:        db,
		gateway:   gw,
		store:     store,
		usage:     ledger.NewWriter(&cfg.Redis, l),
		verifier:  verifier,
		signer:    signer,
		directory: services.NewLDAPService(&cfg.LDAP),
	}

	a := newApp(cfg, in)
	a.redis = rdb
	a.telemetryShutdown = shutdownTracing

	if in.usage.IsAsync() {
		a.worker = ledger.NewWorker(&cfg.Redis, l)
		if a.worker != nil {
			if err := a.worker.Start(); err != nil {
				return nil, fmt.Errorf("start usage worker: %w", err)
			}
		}
	}

	if err := a.scheduleJobs(); err != nil {
		return nil, err
	}
	a.scheduler.Start()
	return a, nil
}

// newApp wires services and handlers on top of in.
func newApp(cfg *config.Config, in infra) *app {
	l := ledger.New(in.db)
	builder := prompts.NewBuilder(prompts.Models{Fast: cfg.AI.FastModel, Pro: cfg.AI.ProModel})
	proxy := services.NewAIProxyService(builder, in.gateway, in.usage, cfg.AI.CostPerToken)
	calendar := services.NewWorkCalendar(cfg.Calendar.Country)
	systemLogs := services.NewSystemLogService(in.db)

	return &app{
		cfg:        cfg,
		infra:      in,
		aiLimiter:  ratelimit.New(in.store, cfg.RateLimit.AIMax, cfg.RateLimit.AIWindow),
		apiLimiter: middleware.NewRateLimiter(cfg.RateLimit.APIMax, cfg.RateLimit.APIWindow),
		systemLogs: systemLogs,
		scheduler:  services.NewScheduler(),

		authHandler:      handlers.NewAuthHandler(services.NewAuthService(in.db, in.directory, in.signer), cfg.LDAP.Enabled),
		aiHandler:        handlers.NewAIHandler(proxy, l),
		employeeHandler:  handlers.NewEmployeeHandler(services.NewEmployeeService(in.db, calendar)),
		roleHandler:      handlers.NewRoleHandler(services.NewRoleService(in.db)),
		policyHandler:    handlers.NewPolicyHandler(services.NewPolicyService(in.db)),
		systemLogHandler: handlers.NewSystemLogHandler(systemLogs, cfg.Log.RetentionDays),
		healthHandler:    handlers.NewHealthHandler(in.db, in.usage),
	}
}

// newVerifier picks the token verifier for cfg. The returned signer is nil
// unless a shared secret is configured, which also disables local accounts.
func newVerifier(ctx context.Context, cfg *config.AuthConfig) (auth.Verifier, *auth.SecretVerifier) {
	var signer *auth.SecretVerifier
	if cfg.Secret != "" {
		signer = auth.NewSecretVerifier(cfg.Secret, time.Duration(cfg.ExpireHour)*time.Hour)
	}
	if cfg.Mode == config.AuthModeSecret {
		return signer, signer
	}

	jwks, err := auth.NewJWKSVerifier(ctx, cfg.JWKSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("JWKS verifier unavailable, external tokens will be rejected")
	}
	if signer == nil {
		return jwks, nil
	}
	return auth.Chain(jwks, signer), signer
}

// newRedis returns a connected client, or nil when Redis is disabled or
// unreachable.
func newRedis(ctx context.Context, cfg *config.RedisConfig) redis.UniversalClient {
	if !cfg.Enabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis unavailable, AI rate windows kept in memory")
		client.Close()
		return nil
	}
	logger.Info().Str("addr", cfg.Addr).Msg("AI rate windows stored in Redis")
	return client
}

func (a *app) scheduleJobs() error {
	if err := a.scheduler.Add("rate-window-sweep", "@every 10m", func(context.Context) error {
		if n := a.sweepRateWindows(); n > 0 {
			logger.Debug().Int("removed", n).Msg("stale rate windows swept")
		}
		return nil
	}); err != nil {
		return err
	}

	return a.scheduler.Add("system-log-cleanup", "@daily", func(ctx context.Context) error {
		n, err := a.systemLogs.Cleanup(ctx, a.cfg.Log.RetentionDays)
		if err != nil {
			return err
		}
		logger.Info().Int64("deleted", n).Int("retention_days", a.cfg.Log.RetentionDays).Msg("system logs cleaned up")
		return nil
	})
}

// sweepRateWindows drops finished AI windows and refilled API buckets.
// Redis expires its own keys.
func (a *app) sweepRateWindows() int {
	n := a.apiLimiter.Sweep()
	if mem, ok := a.infra.store.(*ratelimit.MemoryStore); ok {
		n += mem.Sweep()
	}
	return n
}

// shutdown stops background work and releases connections.
func (a *app) shutdown(ctx context.Context) {
	a.scheduler.Stop()
	logger.Info().Msg("Scheduler stopped")

	if a.worker != nil {
		a.worker.Stop()
	}
	if err := a.infra.usage.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close usage writer")
	}
	if a.redis != nil {
		a.redis.Close()
	}
	if a.telemetryShutdown != nil {
		if err := a.telemetryShutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to flush traces")
		}
	}
	if sqlDB, err := a.infra.db.DB(); err == nil {
		sqlDB.Close()
	}
}
