package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/arttown/internal/config"
	"github.com/mithrel/arttown/internal/wire"
)

type ctxKey string

const envKey ctxKey = "env"

// env carries the loaded config and the lazily built App through the
// command context.
type env struct {
	cfg *viper.Viper
	app *wire.App
}

// Execute is the entrypoint: it builds the root cobra.Command and runs it.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd constructs the Cobra root command and wires dependencies.
func NewRootCmd() *cobra.Command {
	var cfgPath, logLevel string

	cmd := &cobra.Command{
		Use:           "arttown",
		Short:         "Happy Art Town: courses, articles and the site that serves them",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v, err := loadConfig(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				v.Set("log.level", logLevel)
			}
			cmd.SetContext(contextWithEnv(cmd, &env{cfg: v}))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e := getEnv(cmd); e != nil && e.app != nil {
				return e.app.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (toml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level (debug|info|warn|error)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newCoursesCmd())
	cmd.AddCommand(newArticlesCmd())
	cmd.AddCommand(newArticleCmd())
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newCompletionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func loadConfig(ctx context.Context, cfgPath string) (*viper.Viper, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	v := viper.New()
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	}
	if err := config.Load(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func contextWithEnv(cmd *cobra.Command, e *env) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, envKey, e)
}

func getEnv(cmd *cobra.Command) *env {
	if cmd.Context() == nil {
		return nil
	}
	e, _ := cmd.Context().Value(envKey).(*env)
	return e
}

// getConfig returns the config loaded for this invocation.
func getConfig(cmd *cobra.Command) *viper.Viper {
	if e := getEnv(cmd); e != nil {
		return e.cfg
	}
	return viper.New()
}

// getApp builds the App on first use so commands that only need config do
// not open the cache.
func getApp(cmd *cobra.Command) (*wire.App, error) {
	e := getEnv(cmd)
	if e == nil {
		return nil, fmt.Errorf("internal error: config not loaded")
	}
	if e.app == nil {
		app, err := wire.BuildApp(cmd.Context(), e.cfg)
		if err != nil {
			return nil, err
		}
		e.app = app
	}
	return e.app, nil
}
