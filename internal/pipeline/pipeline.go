package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kevinmichaelchen/showcase/internal/card"
	"github.com/kevinmichaelchen/showcase/internal/catalog"
	"github.com/kevinmichaelchen/showcase/internal/curate"
	"github.com/kevinmichaelchen/showcase/internal/logging"
	"github.com/kevinmichaelchen/showcase/internal/models"
)

// ErrMissingHandle is reported when no GitHub username is configured.
var ErrMissingHandle = errors.New("missing GitHub username")

const (
	missingHandleMessage = "Missing GitHub username (set GITHUB_USER or --user)."
	loadFailedPrefix     = "Couldn't load GitHub projects."
)

// Fetcher lists an account's public repositories.
type Fetcher interface {
	ListRepos(ctx context.Context, user string) ([]models.Repo, error)
}

type GridSpec struct {
	Mode          curate.Mode
	RequireImages bool
}

// Grid is one rendered project list. Status is the text for the grid's status
// region; it is empty when cards rendered normally.
type Grid struct {
	Mode   curate.Mode `json:"mode"`
	Cards  []card.Card `json:"cards"`
	Status string      `json:"status,omitempty"`
	Err    error       `json:"-"`
}

type Builder struct {
	fetcher Fetcher
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func New(fetcher Fetcher, cat *catalog.Catalog, logger *zap.Logger) *Builder {
	if cat == nil {
		cat = catalog.Default()
	}
	return &Builder{fetcher: fetcher, catalog: cat, logger: logging.OrNop(logger)}
}

func (b *Builder) Catalog() *catalog.Catalog { return b.catalog }

// Grid fetches, curates and renders one list. Failures never escape: they are
// turned into a status message, with the cause kept in Grid.Err.
func (b *Builder) Grid(ctx context.Context, handle string, spec GridSpec) Grid {
	grid := Grid{Mode: spec.Mode, Cards: []card.Card{}}

	if handle == "" {
		grid.Err = ErrMissingHandle
		grid.Status = missingHandleMessage
		return grid
	}

	repos, err := b.fetcher.ListRepos(ctx, handle)
	if err != nil {
		b.logger.Warn("fetching repositories failed",
			zap.String("user", handle),
			zap.String("mode", string(spec.Mode)),
			zap.Error(err))
		grid.Err = err
		grid.Status = loadFailedPrefix + " " + err.Error()
		return grid
	}

	chosen := curate.Curate(repos, b.catalog, curate.Options{
		Handle:        handle,
		Mode:          spec.Mode,
		RequireImages: spec.RequireImages,
	})

	for _, repo := range chosen {
		entry, _ := b.catalog.Lookup(repo.Name)
		grid.Cards = append(grid.Cards, card.Render(repo, entry))
	}

	if len(grid.Cards) == 0 {
		grid.Status = curate.EmptyMessage(spec.Mode)
	}

	b.logger.Debug("rendered grid",
		zap.String("user", handle),
		zap.String("mode", string(spec.Mode)),
		zap.Int("fetched", len(repos)),
		zap.Int("cards", len(grid.Cards)))
	return grid
}

// Page builds every grid concurrently, one independent fetch per grid, and
// returns them in the order given.
func (b *Builder) Page(ctx context.Context, handle string, specs ...GridSpec) []Grid {
	grids := make([]Grid, len(specs))

	var g errgroup.Group
	for i, spec := range specs {
		g.Go(func() error {
			grids[i] = b.Grid(ctx, handle, spec)
			return nil
		})
	}
	_ = g.Wait()

	return grids
}
