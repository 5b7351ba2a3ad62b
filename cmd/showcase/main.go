package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kevinmichaelchen/showcase/internal/catalog"
	"github.com/kevinmichaelchen/showcase/internal/config"
	"github.com/kevinmichaelchen/showcase/internal/github"
	"github.com/kevinmichaelchen/showcase/internal/logging"
	"github.com/kevinmichaelchen/showcase/internal/pipeline"
)

var (
	userFlag string
	verbose  bool

	cfg    *config.Config
	logger = zap.NewNop()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "showcase",
		Short: "Portfolio project cards from a GitHub account's public repos",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.Load()
			if userFlag != "" {
				cfg.GitHubUser = userFlag
			}

			l, err := logging.New(cfg.LogLevel, verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&userFlag, "user", "", "GitHub username (overrides GITHUB_USER)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(renderCmd(), listCmd(), serveCmd(), publishCmd(), statsCmd(), suggestCmd())
	return root
}

func newGitHubClient() *github.Client {
	return github.NewClient(cfg.GitHubToken,
		github.WithBaseURL(cfg.GitHubAPIURL),
		github.WithLogger(logger.Named("github")),
	)
}

func newBuilder() *pipeline.Builder {
	return pipeline.New(newGitHubClient(), catalog.Default(), logger.Named("pipeline"))
}

// signalContext is cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
