package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	billingmodule "github.com/easyppp/easyppp/modules/billing"
	"github.com/easyppp/easyppp/pkg/billing"
	"github.com/easyppp/easyppp/pkg/config"
	"github.com/easyppp/easyppp/pkg/httpserver"
	"github.com/easyppp/easyppp/pkg/identity"
	"github.com/easyppp/easyppp/pkg/logger"
	"github.com/easyppp/easyppp/pkg/pg"
	"github.com/easyppp/easyppp/pkg/redis"
	"github.com/easyppp/easyppp/pkg/subscription"
	"github.com/easyppp/easyppp/pkg/tier"
)

type appConfig struct {
	TierCatalogFile string        `env:"TIER_CATALOG_FILE"`                  // optional YAML catalog; defaults come from env price IDs
	WebhookDedupTTL time.Duration `env:"WEBHOOK_DEDUP_TTL" envDefault:"24h"` // how long processed webhook IDs are remembered
}

func main() {
	ctx := context.Background()

	var (
		appCfg    appConfig
		logCfg    logger.Config
		httpCfg   httpserver.Config
		pgCfg     pg.Config
		redisCfg  redis.Config
		stripeCfg billing.Config
		clerkCfg  identity.Config
		subCfg    subscription.Config
	)
	config.MustLoad(&appCfg)
	config.MustLoad(&logCfg)
	config.MustLoad(&httpCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&stripeCfg)
	config.MustLoad(&clerkCfg)
	config.MustLoad(&subCfg)

	log := logger.New(logCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		log.ErrorContext(ctx, "postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		log.ErrorContext(ctx, "migrations failed", "error", err)
		os.Exit(1)
	}

	probes := []func(context.Context) error{pg.Healthcheck(pool)}

	// Redis only backs webhook dedup, which is best effort; the handlers
	// are idempotent without it.
	var dedup subscription.Deduper = subscription.NopDeduper{}
	if rdb, err := redis.Connect(ctx, redisCfg); err != nil {
		log.WarnContext(ctx, "redis unavailable, webhook dedup disabled", "error", err)
	} else {
		defer rdb.Close()
		dedup = subscription.NewRedisDeduper(rdb, appCfg.WebhookDedupTTL, log)
		probes = append(probes, redis.Healthcheck(rdb))
	}

	catalog, err := loadCatalog(appCfg)
	if err != nil {
		log.ErrorContext(ctx, "tier catalog invalid", "error", err)
		os.Exit(1)
	}

	provider, err := billing.NewStripeProvider(stripeCfg)
	if err != nil {
		log.ErrorContext(ctx, "stripe provider init failed", "error", err)
		os.Exit(1)
	}

	idp, err := identity.NewClerkProvider(clerkCfg)
	if err != nil {
		log.ErrorContext(ctx, "clerk provider init failed", "error", err)
		os.Exit(1)
	}

	svc := subscription.NewService(
		subCfg,
		catalog,
		provider,
		subscription.NewPgStore(pool),
		subscription.NewPgQuotaSource(pool),
		subscription.WithLogger(log),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthcheckHandler(probes...))
	r.Mount("/billing", billingmodule.Router(billingmodule.RouterOptions{
		Service:        svc,
		BillingParser:  provider,
		IdentityParser: idp,
		Auth:           headerAuth,
		Dedup:          dedup,
		Logger:         log,
	}))

	if err := httpserver.New(httpCfg, log).Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "server exited with error", "error", err)
		os.Exit(1)
	}
}

func loadCatalog(cfg appConfig) (*tier.Catalog, error) {
	if cfg.TierCatalogFile != "" {
		return tier.LoadFile(cfg.TierCatalogFile)
	}
	var tierCfg tier.Config
	if err := config.Load(&tierCfg); err != nil {
		return nil, err
	}
	return tier.DefaultCatalog(tierCfg)
}

// headerAuth trusts identity headers set by the authenticating edge proxy;
// session validation itself lives with the identity provider.
func headerAuth(r *http.Request) (subscription.User, error) {
	id := r.Header.Get("X-User-Id")
	if id == "" {
		return subscription.User{}, errors.New("no authenticated user on request")
	}
	return subscription.User{ID: id, Email: r.Header.Get("X-User-Email")}, nil
}
