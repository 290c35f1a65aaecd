package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gkobilansky/sigcalc/internal/config"
	"github.com/gkobilansky/sigcalc/internal/logging"
	"github.com/gkobilansky/sigcalc/internal/report"
)

// app carries the persistent flags and the settings resolved from them.
type app struct {
	configPath string
	dbPath     string
	lang       string
	logLevel   string

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "sigcalc",
		Short: "sigcalc - statistical significance for A/B tests",
		Long: `sigcalc tells you whether the difference between two variants of an
A/B test is statistically significant.

It computes conversion rates, a two-tailed z-test on the difference,
the confidence interval of the difference and the relative improvement,
and explains the outcome in plain language.

Running without a subcommand starts the server (same as 'sigcalc serve').`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.GetEnvOrDefault("SIGCALC_CONFIG", ""), "YAML config file")
	flags.StringVar(&a.dbPath, "db", "", "database path (default from config, ./sigcalc.db)")
	flags.StringVar(&a.lang, "lang", "", "output language: en or de")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newServeCmd(a),
		newCalcCmd(a),
		newSamplesCmd(a),
		newExplainCmd(a),
		newTokenCmd(a),
	)
	return cmd
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// load resolves defaults, the config file, the environment and flags,
// in that order.
func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	if a.lang != "" {
		locale, err := report.ParseLocale(a.lang)
		if err != nil {
			return err
		}
		cfg.Locale = string(locale)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) locale() report.Locale {
	locale, err := report.ParseLocale(a.cfg.Locale)
	if err != nil {
		return report.DefaultLocale
	}
	return locale
}
