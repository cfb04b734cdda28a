package cmd

import (
	"context"
	"fmt"
	"time"

	"dialog-collator/core/config"
	"dialog-collator/core/logger"
	"dialog-collator/core/metrics"
	redisc "dialog-collator/core/redis"
	"dialog-collator/core/sip"
	"dialog-collator/feature/subscription"

	"github.com/emiago/sipgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// runtime holds what every long-running command shares.
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	redis    *redisc.Client

	ua     *sipgo.UserAgent
	client *sip.Client
}

// loadRuntime loads the configuration, builds the logger and metrics and
// connects to Redis when configured.
func loadRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	rt := &runtime{cfg: cfg, logger: logg, registry: reg, metrics: metrics.New(reg)}

	rdb, err := redisc.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	rt.redis = rdb
	return rt, nil
}

// universal returns the shared Redis connection, or nil when none is configured.
func (rt *runtime) universal() goredis.UniversalClient {
	if rt.redis == nil {
		return nil
	}
	return rt.redis.Client
}

// subscriptionRegistry selects where live subscriptions are tracked.
func (rt *runtime) subscriptionRegistry() (sip.SubscriptionRegistry, error) {
	switch rt.cfg.SIP.Registry {
	case "", "memory":
		return sip.NewMemoryRegistry(), nil
	case "redis":
		if rt.redis == nil {
			return nil, fmt.Errorf("sip.registry=redis requires redis.url")
		}
		return sip.NewRedisRegistry(rt.redis.Client, rt.cfg.SIP.RegistryPrefix), nil
	default:
		return nil, fmt.Errorf("unknown subscription registry %q", rt.cfg.SIP.Registry)
	}
}

// openTransport creates the user agent and the transaction boundary.
func (rt *runtime) openTransport() error {
	registry, err := rt.subscriptionRegistry()
	if err != nil {
		return err
	}

	ua, err := sipgo.NewUA(sipgo.WithUserAgent(rt.cfg.SIP.UserAgent))
	if err != nil {
		return fmt.Errorf("failed to create sip user agent: %w", err)
	}

	pending := time.Duration(rt.cfg.SIP.TransactionTimeoutSeconds) * time.Second
	margin := time.Duration(rt.cfg.SIP.RefreshMarginSeconds) * time.Second
	tracker := sip.NewTracker(registry, pending, margin, rt.logger.Named("tracker"))

	client, err := sip.NewClient(ua, tracker, rt.cfg.SIP, rt.logger.Named("sip"))
	if err != nil {
		_ = ua.Close()
		return err
	}

	rt.ua = ua
	rt.client = client
	return nil
}

// subscriptionOptions assembles the SUBSCRIBE settings from their sections.
func (rt *runtime) subscriptionOptions() subscription.Options {
	return subscription.Options{
		ServerAddress:     rt.cfg.SIP.ServerAddress,
		OutboundProxy:     rt.cfg.SIP.OutboundProxy,
		SharedLineExpires: rt.cfg.SharedLine.SubscribeExpires,
		RegInfoExpires:    rt.cfg.SharedLine.SubscribeExpires,
		RefreshUsername:   rt.cfg.Cycle.DefaultSubscribeUsername,
		RefreshExpires:    rt.cfg.Cycle.RefreshExpires,
	}
}

// Close releases the transport and Redis, in reverse order of creation.
func (rt *runtime) Close() {
	if rt.client != nil {
		if err := rt.client.Close(); err != nil {
			rt.logger.Warn("Closing sip client failed", zap.Error(err))
		}
	}
	if rt.ua != nil {
		if err := rt.ua.Close(); err != nil {
			rt.logger.Warn("Closing sip user agent failed", zap.Error(err))
		}
	}
	if rt.redis != nil {
		if err := rt.redis.Close(); err != nil {
			rt.logger.Warn("Closing redis failed", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}
