package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/selimozcann/adtrace/internal/banner"
	"github.com/selimozcann/adtrace/internal/config"
	"github.com/selimozcann/adtrace/internal/logger"
	"github.com/selimozcann/adtrace/internal/output"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	configFile string
	logLevel   string
	noBanner   bool

	cfg *config.Config
	log logger.Logger = logger.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "adtrace",
	Short:         "Annotate search ad click traces with phases, first parties, paths and UIDs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(configFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.Logging.Level = logLevel
		}
		l, err := logger.New(c.Logging)
		if err != nil {
			return err
		}
		cfg, log = c, l
		if !noBanner && cmd.Name() != versionCmd.Name() {
			banner.Print(cmd.ErrOrStderr(), Version)
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = log.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noBanner, "no-banner", false, "do not print the banner")
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError(os.Stderr, err)
		_ = log.Sync()
		os.Exit(1)
	}
}

func engineNames() ([]string, error) {
	tbl, err := cfg.EngineTable()
	if err != nil {
		return nil, fmt.Errorf("engine table: %w", err)
	}
	return tbl.Names(), nil
}
