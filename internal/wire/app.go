package wire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mithrel/arttown/internal/config"
	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/internal/db"
)

// App aggregates the major services for easy injection.
type App struct {
	Cfg     *viper.Viper
	Log     *zap.Logger
	Store   db.Store
	Loader  *content.Loader
	Catalog *content.Catalog
}

// NewLogger builds a zap logger from log.level and log.format. Logs go to
// stderr so command output on stdout stays clean.
func NewLogger(v *viper.Viper) (*zap.Logger, error) {
	var cfg zap.Config
	if v.GetString("log.format") == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
	}
	level := zapcore.InfoLevel
	if s := v.GetString("log.level"); s != "" {
		if err := level.Set(s); err != nil {
			return nil, fmt.Errorf("log.level: %w", err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// StoreURL picks the cache backend: sqlite under data_dir, or memory when the
// cache is disabled.
func StoreURL(v *viper.Viper) string {
	if !v.GetBool("content.cache") {
		return "mem://"
	}
	return "sqlite://" + config.ResolveDBPath(v)
}

// BuildApp wires dependencies with the provided config.
func BuildApp(ctx context.Context, v *viper.Viper) (*App, error) {
	logger, err := NewLogger(v)
	if err != nil {
		return nil, err
	}
	return BuildAppWithLogger(ctx, v, logger)
}

// BuildAppWithLogger is BuildApp with a caller-supplied logger.
func BuildAppWithLogger(ctx context.Context, v *viper.Viper, logger *zap.Logger) (*App, error) {
	return buildApp(ctx, v, logger, false)
}

// BuildOfflineApp wires an App that never contacts the hosted database and
// leaves the cache untouched: content comes from the cache or static data.
func BuildOfflineApp(ctx context.Context, v *viper.Viper, logger *zap.Logger) (*App, error) {
	return buildApp(ctx, v, logger, true)
}

func buildApp(ctx context.Context, v *viper.Viper, logger *zap.Logger, offline bool) (*App, error) {
	url := StoreURL(v)
	if url != "mem://" {
		if err := os.MkdirAll(filepath.Dir(config.ResolveDBPath(v)), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	store, err := db.Open(ctx, url)
	if err != nil {
		return nil, err
	}

	opts := []content.LoaderOption{
		content.WithCache(store),
		content.WithLocation(config.Location(v)),
		content.WithLogger(logger.Named("content")),
	}
	var primary content.Source
	remote := content.NewRemote(v.GetString("remote.url"), v.GetString("remote.anon_key"), v.GetDuration("remote.timeout"))
	switch {
	case offline:
		opts = append(opts, content.ReadOnly())
	case remote.Configured():
		primary = remote
	default:
		logger.Info("hosted database not configured, serving bundled content")
	}

	loader := content.NewLoader(primary, content.NewStatic(v.GetString("content.static_file")), opts...)
	return &App{
		Cfg:     v,
		Log:     logger,
		Store:   store,
		Loader:  loader,
		Catalog: content.NewCatalog(loader),
	}, nil
}

// Close releases the store and flushes logs.
func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.Store.Close()
}
