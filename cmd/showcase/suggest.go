package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kevinmichaelchen/showcase/internal/catalog"
	"github.com/kevinmichaelchen/showcase/internal/curate"
	"github.com/kevinmichaelchen/showcase/internal/llm"
	"github.com/kevinmichaelchen/showcase/internal/models"
	"github.com/kevinmichaelchen/showcase/internal/pipeline"
)

type describer interface {
	Describe(ctx context.Context, repo models.Repo) (string, error)
}

func suggestCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Draft catalog descriptions for repos that have none",
		Long: "Asks an OpenAI-compatible model for a one-line description of every listed repo " +
			"without a GitHub or catalog description, and prints the drafts as catalog YAML for review.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if cfg.GitHubUser == "" {
				return pipeline.ErrMissingHandle
			}

			repos, err := newGitHubClient().ListRepos(ctx, cfg.GitHubUser)
			if err != nil {
				return err
			}

			cat := catalog.Default()
			todo := undescribed(curate.Curate(repos, cat, curate.Options{
				Handle: cfg.GitHubUser,
				Mode:   curate.ModeAll,
			}), cat)
			if len(todo) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "Every listed repo already has a description")
				return nil
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Drafting descriptions for %d repos...\n", len(todo))
			client := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
			drafts, err := draftDescriptions(ctx, client, todo, limit)
			if err != nil {
				return err
			}

			out, err := catalog.Marshal(drafts)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "concurrency", 5, "Parallel model requests")
	return cmd
}

// undescribed returns the repos whose card would show the placeholder.
func undescribed(repos []models.Repo, cat *catalog.Catalog) []models.Repo {
	var out []models.Repo
	for _, r := range repos {
		if e, ok := cat.Lookup(r.Name); ok && strings.TrimSpace(e.Description) != "" {
			continue
		}
		if strings.TrimSpace(r.DescriptionText()) != "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// draftDescriptions is keyed by normalized repo name. Repos the model fails on
// are logged and left out.
func draftDescriptions(ctx context.Context, d describer, repos []models.Repo, limit int) (map[string]catalog.Entry, error) {
	if limit < 1 {
		limit = 1
	}

	var (
		mu     sync.Mutex
		drafts = make(map[string]catalog.Entry, len(repos))
		done   atomic.Int64
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, repo := range repos {
		g.Go(func() error {
			desc, err := d.Describe(gCtx, repo)
			if err != nil {
				logger.Warn("drafting description failed", zap.String("repo", repo.Name), zap.Error(err))
				return nil
			}
			desc = strings.TrimSpace(desc)
			if desc == "" {
				return nil
			}

			mu.Lock()
			drafts[catalog.Normalize(repo.Name)] = catalog.Entry{Description: desc}
			mu.Unlock()

			n := done.Add(1)
			if n%10 == 0 || int(n) == len(repos) {
				logger.Info("drafted descriptions", zap.Int64("done", n), zap.Int("total", len(repos)))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return drafts, nil
}
