package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/soyeahso/frontdesk/internal/config"
	"github.com/soyeahso/frontdesk/internal/dialogue"
	"github.com/soyeahso/frontdesk/internal/directory"
	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/soyeahso/frontdesk/internal/hooks"
	"github.com/soyeahso/frontdesk/internal/kiosk"
	"github.com/soyeahso/frontdesk/internal/logging"
	"github.com/soyeahso/frontdesk/internal/metrics"
	"github.com/soyeahso/frontdesk/internal/speech"
	"github.com/soyeahso/frontdesk/internal/store"
	"github.com/soyeahso/frontdesk/internal/token"
)

// backends holds the resources opened for one command run. Databases are
// shared by path so the token slot and the chat log can live in one file.
type backends struct {
	log     *logging.Logger
	paths   config.Paths
	dbs     map[string]*store.DB
	closers []io.Closer
}

func newBackends(paths config.Paths, log *logging.Logger) *backends {
	return &backends{log: log, paths: paths, dbs: make(map[string]*store.DB)}
}

func (b *backends) openDB(path string) (*store.DB, error) {
	if db, ok := b.dbs[path]; ok {
		return db, nil
	}
	db, err := store.Open(path, b.log)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	b.dbs[path] = db
	b.closers = append(b.closers, db)
	return db, nil
}

// tokenStore opens the configured session store backend.
func (b *backends) tokenStore(ctx context.Context, sc config.StoreConfig) (store.TokenStore, error) {
	switch sc.Backend {
	case "memory":
		return store.NewMemoryTokenStore(), nil
	case "", "file":
		path := b.paths.StorePath(config.StoreConfig{Backend: "file", Path: sc.Path})
		return store.NewFileTokenStore(path), nil
	case "sqlite":
		db, err := b.openDB(b.paths.StorePath(sc))
		if err != nil {
			return nil, err
		}
		return store.NewSQLiteTokenStore(db, sc.Slot), nil
	case "redis":
		ttl, err := sc.Redis.TTLDuration()
		if err != nil {
			return nil, err
		}
		client := redis.NewClient(&redis.Options{
			Addr:     sc.Redis.Addr,
			Password: sc.Redis.Password,
			DB:       sc.Redis.DB,
		})
		b.closers = append(b.closers, client)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// the kiosk still runs; Resume reports the store as unavailable
			b.log.Warn().Err(err).Str("addr", sc.Redis.Addr).Msg("redis not reachable")
		}
		return store.NewRedisTokenStore(client, sc.Slot, ttl), nil
	default:
		return nil, &config.ConfigError{Message: "unknown store backend: " + sc.Backend}
	}
}

// chatLog opens the sqlite audit log, or returns nil when auditing is off.
func (b *backends) chatLog(ac config.AuditConfig) (*store.ChatLog, error) {
	if !ac.Enabled {
		return nil, nil
	}
	db, err := b.openDB(b.paths.AuditPath(ac))
	if err != nil {
		return nil, err
	}
	return store.NewChatLog(db), nil
}

// Close releases everything in reverse opening order.
func (b *backends) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildDirectory returns the configured doctors, or the built-in directory
// when none are configured. Keywords always come from the built-in table.
func buildDirectory(dc config.DirectoryConfig) *directory.Directory {
	def := directory.Default()
	if len(dc.Doctors) == 0 {
		return def
	}
	doctors := make([]domain.DoctorRecord, len(dc.Doctors))
	for i, d := range dc.Doctors {
		doctors[i] = domain.DoctorRecord{Name: d.Name, Specialty: d.Specialty}
	}
	return directory.New(doctors, def.Keywords())
}

func voiceFromConfig(sc config.SpeechConfig) speech.Voice {
	v := speech.DefaultVoice
	if sc.Lang != "" {
		v.Lang = sc.Lang
	}
	if sc.Rate > 0 {
		v.Rate = sc.Rate
	}
	if sc.Pitch > 0 {
		v.Pitch = sc.Pitch
	}
	if sc.Volume > 0 {
		v.Volume = sc.Volume
	}
	return v
}

// newRegistry returns a prometheus registry with the runtime collectors, or
// nil when metrics are disabled.
func newRegistry(mc config.MetricsConfig) *prometheus.Registry {
	if !mc.Enabled {
		return nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// kioskSetup is everything newKiosk wires together.
type kioskSetup struct {
	kiosk    *kiosk.Kiosk
	chatLog  *store.ChatLog
	registry *prometheus.Registry
	hooks    *hooks.Manager
}

// newKiosk builds a kiosk from config. extra options are applied last.
func newKiosk(ctx context.Context, c config.Config, b *backends, extra ...kiosk.Option) (*kioskSetup, error) {
	tokens, err := b.tokenStore(ctx, c.Store)
	if err != nil {
		return nil, err
	}
	chats, err := b.chatLog(c.Audit)
	if err != nil {
		return nil, err
	}

	engine := dialogue.New(buildDirectory(c.Directory), token.NewIssuer())
	hm := hooks.NewManager(log)
	opts := []kiosk.Option{
		kiosk.WithReplyDelay(c.Dialogue.ReplyDelay()),
		kiosk.WithHooks(hm),
	}
	if chats != nil {
		opts = append(opts, kiosk.WithChatLog(chats))
	}

	reg := newRegistry(c.Metrics)
	if reg != nil {
		opts = append(opts, kiosk.WithMetrics(metrics.NewKioskMetrics(reg)))
	}

	return &kioskSetup{
		kiosk:    kiosk.New(engine, tokens, log, append(opts, extra...)...),
		chatLog:  chats,
		registry: reg,
		hooks:    hm,
	}, nil
}
