// Package main provides the engagedash entry point: the dashboard server and
// offline commands that work from the same dataset and model artifact.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"engagedash/internal/config"
	"engagedash/internal/engine"
	"engagedash/internal/logging"
	"engagedash/internal/server"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// globalFlags override the environment for every subcommand.
type globalFlags struct {
	envFile    string
	dataset    string
	model      string
	configFile string
	logLevel   string
}

// newRootCmd creates the root command. Without a subcommand it serves the
// dashboard.
func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "engagedash",
		Short:        "Social media engagement dashboard",
		Long:         "Engagedash explores post engagement and predicts the engagement rate of a hypothetical post with a pre-trained model.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}

	rootCmd.SetVersionTemplate("engagedash version {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "Load environment variables from this file when it exists")
	pf.StringVar(&flags.dataset, "dataset", "", "Dataset CSV (overrides DATASET_PATH)")
	pf.StringVar(&flags.model, "model", "", "Model artifact (overrides MODEL_PATH)")
	pf.StringVar(&flags.configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(newServeCmd(flags))
	rootCmd.AddCommand(newPredictCmd(flags))
	rootCmd.AddCommand(newEvaluateCmd(flags))
	rootCmd.AddCommand(newSchemaCmd(flags))

	return rootCmd
}

// load resolves configuration from the env file, the environment and flags,
// and configures logging.
func (f *globalFlags) load() (*config.Config, *config.YAMLConfig, error) {
	if err := config.LoadDotEnv(f.envFile); err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", f.envFile, err)
	}

	cfg := config.Load()
	if f.dataset != "" {
		cfg.DatasetPath = f.dataset
	}
	if f.model != "" {
		cfg.ModelPath = f.model
	}
	if f.configFile != "" {
		cfg.ConfigFile = f.configFile
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	yamlCfg, err := config.LoadYAMLConfig(cfg.ConfigFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s: %w", cfg.ConfigFile, err)
	}
	return cfg, yamlCfg, nil
}

// loadEngine resolves configuration and loads the dataset and model.
func (f *globalFlags) loadEngine(ctx context.Context) (*engine.Engine, *config.Config, *config.YAMLConfig, error) {
	cfg, yamlCfg, err := f.load()
	if err != nil {
		return nil, nil, nil, err
	}
	eng, err := engine.Load(ctx, engine.Options{
		DatasetPath: cfg.DatasetPath,
		ModelPath:   cfg.ModelPath,
		Pipeline:    yamlCfg.FeaturePipeline(),
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load engine: %w", err)
	}
	return eng, cfg, yamlCfg, nil
}

// newServeCmd creates the serve subcommand.
func newServeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and JSON API",
		Long:  "Load the dataset and model once, then serve the HTML dashboard, the JSON API and the probes until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, flags)
		},
	}
}

func runServe(cmd *cobra.Command, flags *globalFlags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng, cfg, yamlCfg, err := flags.loadEngine(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("startup failed")
		return err
	}
	defer eng.Close()

	srv := server.New(cfg, yamlCfg)
	srv.RegisterRoutes(eng)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error().Err(err).Msg("server error")
		}
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down server")
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logging.Info().Msg("server exited")
	return nil
}
