package synbridge

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/synian-app/synbridge/core"
	"github.com/synian-app/synbridge/session"
)

// Builder assembles an [Engine] from configuration and optional injected
// dependencies. A Builder is single-use: Build succeeds at most once.
type Builder struct {
	config Config
	redis  *redis.Client

	coreAPI CoreAPI
	store   session.Store

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration wholesale.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the session store. Required
// when the session driver is redis; ignored otherwise.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithCore injects a Core backend, replacing the HTTP client that Build
// would otherwise construct from the config. Intended for tests and for
// callers with a custom transport.
func (b *Builder) WithCore(api CoreAPI) *Builder {
	b.coreAPI = api
	return b
}

// WithSessionStore injects a pre-built session store, bypassing the
// driver selection in Build. The caller retains ownership of its
// lifecycle.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithAuditSink sets the destination for audit events. Without a sink the
// dispatcher is not started even when auditing is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles relay latency histogram collection.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, wires the Core client and session
// store, and returns the ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	coreAPI := b.coreAPI
	if coreAPI == nil {
		client, err := core.NewClient(core.Config{
			BaseURL:   cfg.Core.BaseURL,
			APIKey:    cfg.Core.APIKey,
			APISecret: cfg.Core.APISecret,
			CompanyID: cfg.Core.CompanyID,
			Timeout:   cfg.Core.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("core client: %w", err)
		}
		coreAPI = client
	}

	store := b.store
	if store == nil {
		var err error
		switch cfg.Session.Driver {
		case session.DriverRedis:
			if b.redis == nil {
				return nil, errors.New("redis session driver requires redis client")
			}
			store, err = session.NewStore(session.DriverRedis,
				session.WithRedisClient(b.redis),
				session.WithTTL(cfg.Session.InactivityTTL),
				session.WithKeyPrefix(cfg.Session.RedisPrefix),
			)
		default:
			store, err = session.NewStore(session.DriverMemory,
				session.WithTTL(cfg.Session.InactivityTTL),
			)
		}
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
	}

	engine := &Engine{
		config:  cfg,
		core:    coreAPI,
		store:   store,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
	}

	b.built = true

	return engine, nil
}
