package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/saasbase/modules/billing"
	"github.com/dmitrymomot/saasbase/modules/post"
	"github.com/dmitrymomot/saasbase/pkg/broadcast"
	"github.com/dmitrymomot/saasbase/pkg/config"
	"github.com/dmitrymomot/saasbase/pkg/httpserver"
	"github.com/dmitrymomot/saasbase/pkg/logger"
	"github.com/dmitrymomot/saasbase/pkg/pg"
	"github.com/dmitrymomot/saasbase/pkg/redis"
	"github.com/dmitrymomot/saasbase/pkg/requestid"
)

type appConfig struct {
	// BroadcastDriver selects the fan-out backend for realtime post events:
	// "memory" for a single node, "redis" for multi-node deployments.
	BroadcastDriver string `env:"BROADCAST_DRIVER" envDefault:"memory"`
	BroadcastBuffer int    `env:"BROADCAST_BUFFER" envDefault:"16"`
}

func main() {
	ctx := context.Background()

	var logCfg logger.Config
	config.MustLoad(&logCfg)

	log := logger.New(
		logger.WithLevel(logCfg.Level),
		logger.WithFormat(logCfg.Format),
		logger.WithAttr(logger.Component("server")),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	if err := run(ctx, log); err != nil {
		log.ErrorContext(ctx, "server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	var (
		appCfg     appConfig
		pgCfg      pg.Config
		httpCfg    httpserver.Config
		stripeCfg  billing.StripeConfig
		billingCfg billing.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&stripeCfg)
	config.MustLoad(&billingCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	broadcaster, err := newBroadcaster(ctx, appCfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = broadcaster.Close() }()

	billingSvc := billing.NewService(
		billingCfg,
		billing.NewPGStore(pool),
		billing.NewStripeClient(stripeCfg),
		log.With(logger.Component("billing")),
	)
	postSvc := post.NewService(
		post.NewPGStore(pool),
		broadcaster,
		log.With(logger.Component("post")),
	)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(accountFromHeader)

	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log, pg.Healthcheck(pool)))
	r.Mount("/settings/billing", billing.NewRouter(billingSvc))
	r.Mount("/posts", post.NewRouter(postSvc))

	srv := httpserver.New(
		httpserver.WithAddr(httpCfg.Addr),
		httpserver.WithReadTimeout(httpCfg.ReadTimeout),
		httpserver.WithWriteTimeout(httpCfg.WriteTimeout),
		httpserver.WithIdleTimeout(httpCfg.IdleTimeout),
		httpserver.WithShutdownTimeout(httpCfg.ShutdownTimeout),
		httpserver.WithLogger(log),
	)
	return srv.Run(ctx, r)
}

// newBroadcaster wires the post event fan-out. The Redis adapter is only
// dialed when explicitly selected so a single-node setup needs no Redis.
func newBroadcaster(ctx context.Context, cfg appConfig, log *slog.Logger) (broadcast.Broadcaster[post.Event], error) {
	if cfg.BroadcastDriver != "redis" {
		return broadcast.NewMemoryBroadcaster[post.Event](cfg.BroadcastBuffer), nil
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)

	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return nil, err
	}
	return broadcast.NewRedisBroadcaster[post.Event](client, "posts:events", cfg.BroadcastBuffer, log)
}

// accountFromHeader resolves the acting account from the X-Account-ID header.
// It stands in for a real session layer: requests without a valid id pass
// through unauthenticated and the handlers respond accordingly.
func accountFromHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get("X-Account-ID"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				r = r.WithContext(billing.WithAccountID(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}
