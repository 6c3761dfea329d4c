package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperjump/shashin/internal/config"
	"github.com/hyperjump/shashin/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigPath = "shashin.yaml"

var (
	configPath string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "shashin",
	Short: "Build a photo gallery and keep its caption search index in sync",
	Long: `shashin turns a directory of photos into a chronologically ordered gallery:
square thumbnails, a captioned markdown document, and an incrementally
updated embedding index for caption search.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file (defaults when the default file is absent) and loads .env.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath == defaultConfigPath {
		cfg, err = config.LoadOrDefault(configPath)
	} else {
		cfg, err = config.Load(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.LoadEnv(".env"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := utils.NewLogger(cfg.Debug || debugMode)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
