package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/kevinmichaelchen/showcase/internal/pipeline"
	"github.com/kevinmichaelchen/showcase/internal/surrealdb"
)

func publishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Render both grids and store them in SurrealDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if cfg.GitHubUser == "" {
				return pipeline.ErrMissingHandle
			}

			fmt.Println("Connecting to SurrealDB...")
			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			if err := db.InitSchema(ctx); err != nil {
				return err
			}

			grids := newBuilder().Page(ctx, cfg.GitHubUser, gridSpecs(cfg.FeaturedRequireImages)...)
			for _, g := range grids {
				if err := db.PublishGrid(ctx, cfg.GitHubUser, g); err != nil {
					return err
				}
				fmt.Printf("Published %d %s cards\n", len(g.Cards), g.Mode)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show published card counts and category breakdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if cfg.GitHubUser == "" {
				return pipeline.ErrMissingHandle
			}

			db, err := surrealdb.NewClient(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close(ctx) }()

			stats, err := db.GetStats(ctx, cfg.GitHubUser)
			if err != nil {
				return err
			}

			fmt.Printf("Cards:    %d\n", stats.Total)
			fmt.Printf("All:      %d\n", stats.All)
			fmt.Printf("Featured: %d\n", stats.Featured)

			cats, err := db.GetCategoryBreakdown(ctx, cfg.GitHubUser)
			if err != nil {
				return err
			}

			if len(cats) > 0 {
				sort.Slice(cats, func(i, j int) bool {
					return cats[i].Count > cats[j].Count
				})
				fmt.Println("\nCategory breakdown:")
				for _, c := range cats {
					fmt.Printf("  %-10s %d\n", c.Category, c.Count)
				}
			}

			return nil
		},
	}
}
