// Command taxonomy edits the locale files offline, using the same rules as
// the admin endpoints. It can also apply the postgres migrations and reset
// the stored profiles to the seed list.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"freelance-hub/internal/app"
	"freelance-hub/internal/config"
	"freelance-hub/internal/database/migration"
	dbpostgres "freelance-hub/internal/database/postgres"
	"freelance-hub/internal/infrastructure/locale"
	"freelance-hub/internal/pkg/logger"
	"freelance-hub/internal/usecase"
)

func main() {
	op := flag.String("op", "", "upsert, delete or prune-profiles")
	typ := flag.String("type", "industry", "industry or workType")
	key := flag.String("key", "", "entry key (derived from -en when empty)")
	industry := flag.String("industry", "", "parent industry for work types")
	en := flag.String("en", "", "English name")
	nl := flag.String("nl", "", "Dutch name")
	edit := flag.Bool("edit", false, "rename an existing entry instead of creating one")
	migrate := flag.Bool("migrate", false, "apply SQL migrations to the postgres blob store and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	lg, err := logger.NewStructured(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *migrate {
		if err := runMigrations(ctx, cfg, lg); err != nil {
			lg.WithError(err).Error("migration failed", nil)
			os.Exit(1)
		}
		return
	}

	if *op == "prune-profiles" {
		if err := pruneProfiles(ctx, cfg, lg); err != nil {
			lg.WithError(err).Error("prune profiles failed", nil)
			os.Exit(1)
		}
		return
	}

	store, err := locale.Open(ctx, cfg.Locales.Dir, app.Languages(cfg.Locales.Languages), locale.WithLogger(lg))
	if err != nil {
		lg.WithError(err).Error("open locales failed", nil)
		os.Exit(1)
	}
	uc := usecase.NewTaxonomyUsecase(store, nil, lg)

	switch *op {
	case "upsert":
		err = uc.Update(ctx, usecase.UpdateInput{
			Type:         *typ,
			Key:          *key,
			Industry:     *industry,
			Name:         *en,
			Translations: map[string]string{"en": *en, "nl": *nl},
			IsEdit:       *edit,
		})
	case "delete":
		err = uc.Delete(ctx, usecase.DeleteInput{Type: *typ, Key: *key, Industry: *industry})
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		lg.WithError(err).Error("taxonomy "+*op+" failed", nil)
		os.Exit(1)
	}
	lg.Info("taxonomy updated", logger.Fields{"revision": store.Snapshot().Revision()})
}

func runMigrations(ctx context.Context, cfg config.Config, lg logger.Logger) error {
	db, err := dbpostgres.Connect(ctx, cfg.Database, lg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	res, err := migration.New(cfg.Database.MigrationsDir, lg).Run(ctx, db.SQLDB())
	if err != nil {
		return err
	}
	lg.Info("migrations done", logger.Fields{"applied": res.Applied, "version": res.Current, "tables": res.Tables})
	return nil
}

func pruneProfiles(ctx context.Context, cfg config.Config, lg logger.Logger) error {
	profiles, release, err := app.OpenProfiles(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()

	return profiles.PruneToDefaults(ctx)
}
