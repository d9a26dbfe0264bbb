package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"freelance-hub/internal/config"
	"freelance-hub/internal/database/migration"
	dbpostgres "freelance-hub/internal/database/postgres"
	"freelance-hub/internal/delivery/http/handler"
	"freelance-hub/internal/domain/taxonomy"
	"freelance-hub/internal/i18n"
	"freelance-hub/internal/infrastructure/blob"
	"freelance-hub/internal/infrastructure/locale"
	"freelance-hub/internal/metrics"
	"freelance-hub/internal/pkg/logger"
	"freelance-hub/internal/repository"
	"freelance-hub/internal/scheduler"
	"freelance-hub/internal/usecase"
	"freelance-hub/internal/ws"
)

// Container owns every long-lived dependency of the service.
type Container struct {
	Config config.Config
	Logger logger.Logger

	Locales    *locale.Store
	Translator *i18n.Translator
	Profiles   *repository.ProfileStore
	Hub        *ws.Hub
	Notifier   *ws.Notifier
	Reloader   *scheduler.Reloader

	TaxonomyUC usecase.TaxonomyUsecase
	ProfileUC  usecase.ProfileUsecase

	HealthChecks map[string]handler.Check

	stopHub  context.CancelFunc
	closeFns []func() error
}

func Languages(codes []string) []taxonomy.Lang {
	out := make([]taxonomy.Lang, 0, len(codes))
	for _, c := range codes {
		if c != "" {
			out = append(out, taxonomy.Lang(c))
		}
	}
	if len(out) == 0 {
		return taxonomy.DefaultLanguages
	}
	return out
}

func NewContainer(cfg config.Config, log logger.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	c := &Container{Config: cfg, Logger: logger.OrNop(log), HealthChecks: map[string]handler.Check{}}

	langs := Languages(cfg.Locales.Languages)
	store, err := locale.Open(ctx, cfg.Locales.Dir, langs, locale.WithLogger(c.Logger))
	if err != nil {
		return nil, fmt.Errorf("open locales: %w", err)
	}
	c.Locales = store
	metrics.TaxonomyRevision.Set(float64(store.Snapshot().Revision()))

	backend, err := openBlobs(ctx, cfg, c.Logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	if backend.close != nil {
		c.closeFns = append(c.closeFns, backend.close)
	}
	if backend.check != nil {
		c.HealthChecks[backend.kind] = backend.check
	}

	c.Profiles = newProfileStore(backend.store, cfg, c.Logger)
	if err := c.Profiles.Load(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	c.Translator = i18n.New(store, langs)

	hubCtx, stopHub := context.WithCancel(context.Background())
	c.stopHub = stopHub
	c.Hub = ws.NewHub(c.Logger)
	go c.Hub.Run(hubCtx)
	c.Notifier = ws.NewNotifier(c.Hub)

	c.TaxonomyUC = usecase.NewTaxonomyUsecase(store, c.Notifier, c.Logger)
	c.ProfileUC = usecase.NewProfileUsecase(c.Profiles, store, c.Translator, c.Notifier, c.Logger,
		usecase.WithRejectDuplicateEmail(cfg.Store.RejectDuplicateEmail),
	)

	c.Reloader = scheduler.NewReloader(store, c.Notifier, cfg.Locales.ReloadSpec, c.Logger)
	if err := c.Reloader.Start(hubCtx); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

type blobBackend struct {
	kind  string
	store blob.Store
	check handler.Check
	close func() error
}

// openBlobs selects the profile blob backend.
func openBlobs(ctx context.Context, cfg config.Config, log logger.Logger) (blobBackend, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendRedis:
		r, err := blob.NewRedis(ctx, blob.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err != nil {
			return blobBackend{}, fmt.Errorf("connect redis: %w", err)
		}
		return blobBackend{kind: "redis", store: r, check: r.Ping, close: r.Close}, nil

	case config.StoreBackendPostgres:
		db, err := dbpostgres.Connect(ctx, cfg.Database, log)
		if err != nil {
			return blobBackend{}, fmt.Errorf("connect postgres: %w", err)
		}
		if _, err := migration.New(cfg.Database.MigrationsDir, log).Run(ctx, db.SQLDB()); err != nil {
			_ = db.Close()
			return blobBackend{}, fmt.Errorf("run migrations: %w", err)
		}
		return blobBackend{kind: "postgres", store: blob.NewPostgres(db), check: db.Ping, close: db.Close}, nil

	default:
		dir := cfg.Store.DataDir
		if dir == "" {
			dir = filepath.Join(".", "data")
		}
		return blobBackend{kind: "file", store: blob.NewFile(dir)}, nil
	}
}

func newProfileStore(blobs blob.Store, cfg config.Config, log logger.Logger) *repository.ProfileStore {
	return repository.NewProfileStore(blobs,
		repository.WithStoreName(cfg.Store.Name),
		repository.WithProfileLogger(log),
	)
}

// OpenProfiles opens the configured blob backend and a profile store over
// it, for tools that run outside the server. The returned func releases
// the backend.
func OpenProfiles(ctx context.Context, cfg config.Config, log logger.Logger) (*repository.ProfileStore, func() error, error) {
	backend, err := openBlobs(ctx, cfg, logger.OrNop(log))
	if err != nil {
		return nil, nil, err
	}
	release := backend.close
	if release == nil {
		release = func() error { return nil }
	}
	return newProfileStore(backend.store, cfg, log), release, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Reloader != nil {
		c.Reloader.Stop()
	}
	if c.stopHub != nil {
		c.stopHub()
	}

	var errs []error
	for i := len(c.closeFns) - 1; i >= 0; i-- {
		if err := c.closeFns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
