package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/evalion/evalion/internal/auth"
	"github.com/evalion/evalion/internal/chat"
	"github.com/evalion/evalion/internal/config"
	"github.com/evalion/evalion/internal/edge"
	"github.com/evalion/evalion/internal/identity"
	"github.com/evalion/evalion/internal/obs"
	"github.com/evalion/evalion/internal/payment"
	"github.com/evalion/evalion/internal/ratelimit"
	"github.com/evalion/evalion/internal/ratelimit/memory"
	"github.com/evalion/evalion/internal/ratelimit/redisstore"
	"github.com/evalion/evalion/internal/server"
	"github.com/evalion/evalion/internal/tts"
)

func main() {

	cfg, err := config.Load("./config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := obs.SetupLogger(cfg.Observability.LogLevel)

	// policies: built-in defaults, overridable per class from config
	policies := ratelimit.DefaultPolicies()
	for name, l := range cfg.Limits {
		if _, ok := policies[ratelimit.Class(name)]; !ok {
			log.Fatalf("limits config references unknown endpoint class %q", name)
		}
		policies[ratelimit.Class(name)] = ratelimit.Policy{
			Limit:  l.Requests,
			Window: time.Duration(l.WindowSeconds) * time.Second,
		}
	}
	registry, err := ratelimit.NewRegistry(policies)
	if err != nil {
		log.Fatalf("rate limit policies: %v", err)
	}
	classifier := ratelimit.NewClassifier()

	// counter store: shared Redis when configured and reachable,
	// in-process fallback otherwise
	var store ratelimit.Store
	if cfg.Redis.Addr != "" {
		rs, err := redisstore.New(redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  cfg.Redis.Timeout(),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, using in-memory counter store")
			store = memory.New()
		} else {
			logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis counter store")
			store = rs
		}
	} else {
		logger.Info().Msg("no redis configured, using in-memory counter store")
		store = memory.New()
	}
	defer func() { _ = store.Close() }()

	promReg := prometheus.NewRegistry()
	metrics := obs.NewMetrics(promReg)

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		logger.Warn().Msg("JWT_SECRET not set, using an insecure development secret")
		jwtSecret = "evalion-dev-secret"
	}

	resolver := identity.NewResolver(identity.NewJWTVerifier([]byte(jwtSecret)))
	gate := ratelimit.NewGate(store, registry, classifier, resolver, 2*time.Second, logger,
		func(c ratelimit.Class) { metrics.DegradedAllows.WithLabelValues(string(c)).Inc() })

	cors := edge.NewCORS(cfg.CORS.AllowedOrigins, cfg.Development)
	interceptor := edge.NewInterceptor(gate, cors, cfg.Security.CSP,
		func(c ratelimit.Class) { metrics.RateLimited.WithLabelValues(string(c)).Inc() })

	router := server.NewRouter(server.Deps{
		Logger: logger,
		Chat:   chat.New(),
		TTS:    tts.NewClient(cfg.XTTSURL, cfg.XTTSAPIKey),
		Auth:   auth.New([]byte(jwtSecret)),
		Payment: payment.New(payment.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			PremiumPrice:  cfg.StripePremiumPrice,
			ProPrice:      cfg.StripeProPrice,
		}),
		PromPath: cfg.Observability.PrometheusPath,
		Gatherer: promReg,
	})

	handler := edge.Chain(
		router,
		obs.Logger(logger),
		metrics.Middleware(func(path string) string { return string(classifier.Classify(path)) }),
		edge.BodyLimit(cfg.Server.MaxBody()),
		interceptor.Middleware(),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout(),
		WriteTimeout:      cfg.Server.WriteTimeout(),
		IdleTimeout:       cfg.Server.IdleTimeout(),
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("bye")
}
