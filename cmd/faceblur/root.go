package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/menta2k/faceblur/internal/config"
	"github.com/menta2k/faceblur/internal/logging"
	"github.com/menta2k/faceblur/internal/utils"
)

var (
	cfgFile  string
	logLevel string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "faceblur",
	Short: "Crop, project and hit-test detected faces in photos",
	Long: `faceblur takes a photo and a list of detected face rectangles, clamps them to
the image, crops every face into its own file, and maps face overlays between
image pixels and an on-screen view that shows the photo contain-fitted.

Faces can be supplied as JSON or located with a vision model served by
Ollama, llama.cpp or Gemini.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON or YAML, default "+config.GetConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

func loadConfig() error {
	path := cfgFile
	if path == "" {
		path = config.GetConfigPath()
	}

	var err error
	if utils.FileExists(path) {
		cfg, err = config.LoadFromFile(path)
		if err != nil {
			return err
		}
	} else if cfgFile != "" {
		return fmt.Errorf("config file %s not found", cfgFile)
	} else {
		cfg = config.Default()
	}

	cfg.ApplyEnv()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	return nil
}
