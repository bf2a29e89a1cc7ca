package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appservice "github.com/turtacn/tips/internal/application/service"
	"github.com/turtacn/tips/internal/config"
	"github.com/turtacn/tips/internal/infrastructure/artifacts"
	"github.com/turtacn/tips/internal/infrastructure/monitoring"
	"github.com/turtacn/tips/pkg/constants"
	"github.com/turtacn/tips/pkg/logger"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath   string
	artifactsDir string
	verbose      bool
}

// NewRootCommand builds the `tips-cli` command tree.
// NewRootCommand 构建 `tips-cli` 命令树。
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "tips-cli",
		Short: "A CLI tool for scoring travel insurance leads offline.",
		Long: `tips-cli runs the same validation, transform and model as the scoring service
against local or Redis-hosted artifacts, without starting the HTTP server.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config.yaml (default: search /etc/tips and .)")
	flags.StringVar(&opts.artifactsDir, "artifacts-dir", "", "read artifacts from this directory, overriding the configured source")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level to stderr")

	rootCmd.AddCommand(newScoreCommand(opts))
	rootCmd.AddCommand(newArtifactsCommand(opts))
	return rootCmd
}

// Execute is the main entry point for the CLI application.
// If an error occurs, it prints the error and exits with status 1.
// Execute 是 CLI 应用程序的主入口点。
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// session holds what a subcommand needs to score or inspect artifacts.
type session struct {
	scoring appservice.ScoringAppService
	close   func()
}

func openSession(ctx context.Context, opts *globalOptions) (*session, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.artifactsDir != "" {
		cfg.Artifacts.Source = string(constants.ArtifactSourceFile)
		cfg.Artifacts.Dir = opts.artifactsDir
	}

	logCfg := config.LogConfig{Level: "warn", Format: "console", OutputPath: "stderr"}
	if opts.verbose {
		logCfg.Level = "debug"
	}
	log, err := monitoring.NewZapLogger(&logCfg)
	if err != nil {
		return nil, err
	}

	source, conn, err := artifacts.OpenSource(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	loader := artifacts.NewLoader(source, artifacts.OptionsFromConfig(cfg.Artifacts), nil, log)
	s := &session{
		scoring: appservice.NewScoringAppService(loader, nil, nil, log),
		close:   func() {},
	}
	if conn != nil {
		s.close = func() { _ = conn.Close() }
	}
	log.Debug(ctx, "CLI session opened", logger.Source(source.Describe()))
	return s, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

//Personal.AI order the ending
