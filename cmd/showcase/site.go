package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kevinmichaelchen/showcase/internal/classify"
	"github.com/kevinmichaelchen/showcase/internal/curate"
	"github.com/kevinmichaelchen/showcase/internal/filter"
	"github.com/kevinmichaelchen/showcase/internal/pipeline"
	"github.com/kevinmichaelchen/showcase/internal/server"
	"github.com/kevinmichaelchen/showcase/internal/view"
)

func gridSpecs(featuredRequireImages bool) []pipeline.GridSpec {
	return []pipeline.GridSpec{
		{Mode: curate.ModeFeatured, RequireImages: featuredRequireImages},
		{Mode: curate.ModeAll},
	}
}

func renderCmd() *cobra.Command {
	var out string
	var requireImages bool

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the featured and all grids and write a static site",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			grids := newBuilder().Page(ctx, cfg.GitHubUser, gridSpecs(requireImages || cfg.FeaturedRequireImages)...)
			for _, g := range grids {
				if g.Status != "" {
					fmt.Printf("  %s: %s\n", g.Mode, g.Status)
				}
			}
			return writeSite(out, cfg.GitHubUser, grids)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "public", "Output directory")
	cmd.Flags().BoolVar(&requireImages, "require-images", false, "Featured grid only shows projects with a local image")
	return cmd
}

// writeSite writes index.html (featured), projects.html (all, with filters)
// and projects.json (both) into dir.
func writeSite(dir, handle string, grids []pipeline.Grid) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	byMode := map[curate.Mode][]pipeline.Grid{}
	for _, g := range grids {
		byMode[g.Mode] = append(byMode[g.Mode], g)
	}

	files := []struct {
		name  string
		page  *view.Page
		write func(io.Writer, *view.Page) error
	}{
		{"index.html", view.NewPage(handle, byMode[curate.ModeFeatured], filter.All), view.HTML},
		{"projects.html", view.NewPage(handle, byMode[curate.ModeAll], filter.All), view.HTML},
		{"projects.json", view.NewPage(handle, grids, filter.All), view.JSON},
	}

	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeFile(path, f.page, f.write); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
	}
	return nil
}

func writeFile(path string, p *view.Page, write func(io.Writer, *view.Page) error) (err error) {
	fd, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := fd.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()
	return write(fd, p)
}

func listCmd() *cobra.Command {
	var mode, category string
	var asJSON, requireImages bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print project cards in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := curate.ParseMode(mode)
			if err != nil {
				return err
			}
			if err := validateCategory(category); err != nil {
				return err
			}

			grid := newBuilder().Grid(cmd.Context(), cfg.GitHubUser, pipeline.GridSpec{
				Mode:          m,
				RequireImages: requireImages,
			})
			page := view.NewPage(cfg.GitHubUser, []pipeline.Grid{grid}, category)

			if asJSON {
				return view.JSON(cmd.OutOrStdout(), page)
			}
			return view.Text(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringVarP(&mode, "mode", "m", string(curate.ModeAll), "Grid to list: all or featured")
	cmd.Flags().StringVarP(&category, "category", "c", filter.All, "Only show one category: all, ai, ml, data, web")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of text")
	cmd.Flags().BoolVar(&requireImages, "require-images", false, "Only projects with a local image")
	return cmd
}

func validateCategory(c string) error {
	if c == filter.All {
		return nil
	}
	// Classify never yields Other, so it is not offered as a filter.
	if cat, ok := classify.Parse(c); !ok || cat == classify.Other {
		return fmt.Errorf("unknown category %q", c)
	}
	return nil
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the portfolio pages over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Addr
			}
			if cfg.GitHubUser == "" {
				logger.Warn("no GitHub username configured; pages will show the missing-username status")
			}

			ctx, stop := signalContext()
			defer stop()

			srv := server.New(newBuilder(), cfg.GitHubUser,
				server.WithAssetDir(cfg.AssetDir),
				server.WithFeaturedRequireImages(cfg.FeaturedRequireImages),
				server.WithLogger(logger.Named("server")),
			)
			logger.Info("starting server", zap.String("addr", addr), zap.String("assets", cfg.AssetDir))
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default SHOWCASE_ADDR or :8080)")
	return cmd
}
