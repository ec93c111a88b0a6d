// Package app assembles the report pipeline from configuration. Both the
// HTTP service and the CLI build their report.Service here.
package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"wolt-report-service/internal/aggregate"
	"wolt-report-service/internal/chart"
	"wolt-report-service/internal/compose"
	"wolt-report-service/internal/config"
	"wolt-report-service/internal/db"
	"wolt-report-service/internal/fonts"
	"wolt-report-service/internal/orders"
	"wolt-report-service/internal/report"
	"wolt-report-service/internal/storage"
)

type App struct {
	Service *report.Service
	Store   storage.Store
	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build wires font, renderer, composer, artifact store and registry.
// Extra options are applied after the defaults.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger, extra ...report.Option) (*App, error) {
	pipeline, err := PipelineConfig(cfg)
	if err != nil {
		return nil, err
	}

	font, err := fonts.Load(cfg.ReportFont)
	if err != nil {
		return nil, errors.Wrap(err, "load report font")
	}
	renderer := chart.WithTimeout(chart.NewCanvasRenderer(font), cfg.RenderTimeout, int(cfg.RenderRetries))
	composer := compose.New(compose.Config{QLEN: int(cfg.ReportQLEN)}, renderer, font)

	a := &App{}
	store, err := buildStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.Store = store

	opts := []report.Option{}
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "connect report registry")
		}
		a.closers = append(a.closers, pool.Close)
		pg, err := report.NewPostgresRegistry(ctx, pool)
		if err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, report.WithRegistry(report.NewCachedRegistry(pg, cfg.RegistryTTL, int(cfg.RegistryMaxLen))))
		log.Info("report registry", zap.String("backend", "postgres"))
	} else {
		opts = append(opts, report.WithRegistry(report.NewMemoryRegistry(int(cfg.RegistryMaxLen))))
		log.Info("report registry", zap.String("backend", "memory"))
	}
	opts = append(opts, extra...)

	a.Service = report.NewService(pipeline, composer, store, log, opts...)
	return a, nil
}

// PipelineConfig parses the report settings of cfg.
func PipelineConfig(cfg config.Config) (report.Config, error) {
	format, err := compose.ParseFormat(cfg.ReportFormat)
	if err != nil {
		return report.Config{}, err
	}
	window, err := orders.ParseWindow(cfg.ReportWindow)
	if err != nil {
		return report.Config{}, err
	}
	policy, err := aggregate.ParseZonePolicy(cfg.ZonePolicy)
	if err != nil {
		return report.Config{}, err
	}
	return report.Config{Format: format, Window: window, ZonePolicy: policy}, nil
}

func buildStore(ctx context.Context, cfg config.Config, log *zap.Logger) (storage.Store, error) {
	if cfg.UseObjectStore() {
		store, err := storage.NewObjectStore(ctx, storage.Config{
			Endpoint:        cfg.ObjectStoreEndpoint,
			Region:          cfg.ObjectStoreRegion,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
			Bucket:          cfg.ObjectStoreBucket,
			PublicBaseURL:   cfg.ObjectStorePublicBaseURL,
			StorageClass:    cfg.ObjectStoreStorageClass,
			Prefix:          cfg.ObjectStorePrefix,
		})
		if err != nil {
			return nil, errors.Wrap(err, "init object store")
		}
		log.Info("report store", zap.String("backend", "object"), zap.String("bucket", cfg.ObjectStoreBucket))
		return store, nil
	}

	store, err := storage.NewLocalStore(cfg.ReportsDir)
	if err != nil {
		return nil, errors.Wrap(err, "init local store")
	}
	log.Info("report store", zap.String("backend", "local"), zap.String("dir", cfg.ReportsDir))
	return store, nil
}
