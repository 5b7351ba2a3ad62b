package surrealdb

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/surrealdb/surrealdb.go"

	"github.com/kevinmichaelchen/showcase/internal/card"
	"github.com/kevinmichaelchen/showcase/internal/catalog"
	"github.com/kevinmichaelchen/showcase/internal/config"
	"github.com/kevinmichaelchen/showcase/internal/curate"
	"github.com/kevinmichaelchen/showcase/internal/pipeline"
)

type Client struct {
	db *sdk.DB
}

func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	db, err := sdk.FromEndpointURLString(ctx, cfg.SurrealURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to SurrealDB: %w", err)
	}

	if _, err := db.SignIn(ctx, sdk.Auth{
		Namespace: cfg.SurrealNS,
		Database:  cfg.SurrealDB,
		Username:  cfg.SurrealUser,
		Password:  cfg.SurrealPass,
	}); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("signing in: %w", err)
	}

	if err := db.Use(ctx, cfg.SurrealNS, cfg.SurrealDB); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("selecting ns/db: %w", err)
	}

	return &Client{db: db}, nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close(ctx)
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
DEFINE TABLE IF NOT EXISTS card SCHEMAFULL;

DEFINE FIELD IF NOT EXISTS handle       ON TABLE card TYPE string;
DEFINE FIELD IF NOT EXISTS mode         ON TABLE card TYPE string;
DEFINE FIELD IF NOT EXISTS position     ON TABLE card TYPE int;
DEFINE FIELD IF NOT EXISTS title        ON TABLE card TYPE string;
DEFINE FIELD IF NOT EXISTS description  ON TABLE card TYPE string;
DEFINE FIELD IF NOT EXISTS category     ON TABLE card TYPE string;
DEFINE FIELD IF NOT EXISTS language     ON TABLE card TYPE option<string>;
DEFINE FIELD IF NOT EXISTS stars        ON TABLE card TYPE int;
DEFINE FIELD IF NOT EXISTS tags         ON TABLE card TYPE array<string>;
DEFINE FIELD IF NOT EXISTS image        ON TABLE card TYPE option<string>;
DEFINE FIELD IF NOT EXISTS code_url     ON TABLE card TYPE string;
DEFINE FIELD IF NOT EXISTS live_url     ON TABLE card TYPE option<string>;
DEFINE FIELD IF NOT EXISTS published_at ON TABLE card TYPE datetime;

DEFINE INDEX IF NOT EXISTS idx_handle_mode ON TABLE card FIELDS handle, mode;
`
	_, err := sdk.Query[any](ctx, c.db, schema, nil)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// StoredCard is the published form of a card.
type StoredCard struct {
	Handle      string   `json:"handle"`
	Mode        string   `json:"mode"`
	Position    int      `json:"position"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Language    *string  `json:"language"`
	Stars       int      `json:"stars"`
	Tags        []string `json:"tags"`
	Image       *string  `json:"image"`
	CodeURL     string   `json:"code_url"`
	LiveURL     *string  `json:"live_url"`
}

// handleKey is the stored form of an account name, so "Alice" and "alice"
// share one snapshot.
func handleKey(handle string) string {
	return catalog.Normalize(handle)
}

// RecordID is the row id of a card: handle, mode and position.
func RecordID(handle string, mode curate.Mode, position int) string {
	return fmt.Sprintf("%s__%s__%d", handleKey(handle), mode, position)
}

// cardData builds the row with only non-empty optional fields to avoid the
// CBOR NULL vs SurrealDB NONE mismatch.
func cardData(handle string, mode curate.Mode, position int, c card.Card, now time.Time) map[string]any {
	tags := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		tags = append(tags, t.Text)
	}

	data := map[string]any{
		"handle":       handleKey(handle),
		"mode":         string(mode),
		"position":     position,
		"title":        c.Title,
		"description":  c.Description,
		"category":     string(c.Category),
		"stars":        c.Stars,
		"tags":         tags,
		"published_at": now,
	}
	if c.Language != "" {
		data["language"] = c.Language
	}
	if c.Image != nil {
		data["image"] = c.Image.Src
	}
	if code, ok := c.Link("Code"); ok {
		data["code_url"] = code.Href
	} else {
		data["code_url"] = ""
	}
	if live, ok := c.Link("Live"); ok {
		data["live_url"] = live.Href
	}
	return data
}

type statement struct {
	query string
	vars  map[string]any
}

// publishStatements clears the grid's old rows and then upserts one row per
// card, in that order.
func publishStatements(handle string, grid pipeline.Grid, now time.Time) []statement {
	stmts := make([]statement, 0, len(grid.Cards)+1)
	stmts = append(stmts, statement{
		query: `DELETE card WHERE handle = $handle AND mode = $mode`,
		vars: map[string]any{
			"handle": handleKey(handle),
			"mode":   string(grid.Mode),
		},
	})
	for i, cd := range grid.Cards {
		stmts = append(stmts, statement{
			query: `UPSERT type::thing("card", $id) CONTENT $data`,
			vars: map[string]any{
				"id":   RecordID(handle, grid.Mode, i),
				"data": cardData(handle, grid.Mode, i, cd, now),
			},
		})
	}
	return stmts
}

// PublishGrid replaces the stored snapshot of one grid. Grids that failed to
// load are not published so a transient error never wipes a good snapshot.
func (c *Client) PublishGrid(ctx context.Context, handle string, grid pipeline.Grid) error {
	if grid.Err != nil {
		return fmt.Errorf("not publishing %s grid: %w", grid.Mode, grid.Err)
	}

	for _, st := range publishStatements(handle, grid, time.Now().UTC()) {
		if _, err := sdk.Query[any](ctx, c.db, st.query, st.vars); err != nil {
			return fmt.Errorf("publishing %s grid for %s: %w", grid.Mode, handle, err)
		}
	}
	return nil
}

func (c *Client) GetCards(ctx context.Context, handle string, mode curate.Mode) ([]StoredCard, error) {
	results, err := sdk.Query[[]StoredCard](ctx, c.db,
		`SELECT * FROM card WHERE handle = $handle AND mode = $mode ORDER BY position`,
		map[string]any{
			"handle": handleKey(handle),
			"mode":   string(mode),
		})
	if err != nil {
		return nil, fmt.Errorf("querying %s cards: %w", mode, err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return (*results)[0].Result, nil
}

type Stats struct {
	Total    int
	All      int
	Featured int
}

func (c *Client) GetStats(ctx context.Context, handle string) (*Stats, error) {
	results, err := sdk.Query[[]map[string]any](ctx, c.db,
		`SELECT
			count() AS total,
			math::sum(IF mode = "all" THEN 1 ELSE 0 END) AS all_count,
			math::sum(IF mode = "featured" THEN 1 ELSE 0 END) AS featured_count
		FROM card WHERE handle = $handle GROUP ALL`,
		map[string]any{"handle": handleKey(handle)})
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	if len(*results) == 0 || len((*results)[0].Result) == 0 {
		return &Stats{}, nil
	}
	row := (*results)[0].Result[0]
	return &Stats{
		Total:    toInt(row["total"]),
		All:      toInt(row["all_count"]),
		Featured: toInt(row["featured_count"]),
	}, nil
}

type CategoryCount struct {
	Category string
	Count    int
}

// GetCategoryBreakdown counts categories over the published "all" grid.
func (c *Client) GetCategoryBreakdown(ctx context.Context, handle string) ([]CategoryCount, error) {
	results, err := sdk.Query[[]StoredCard](ctx, c.db,
		`SELECT category FROM card WHERE handle = $handle AND mode = "all"`,
		map[string]any{"handle": handleKey(handle)})
	if err != nil {
		return nil, fmt.Errorf("getting categories: %w", err)
	}
	if len(*results) == 0 {
		return nil, nil
	}
	return countCategories((*results)[0].Result), nil
}

func countCategories(cards []StoredCard) []CategoryCount {
	counts := map[string]int{}
	for _, sc := range cards {
		counts[sc.Category]++
	}
	var out []CategoryCount
	for cat, cnt := range counts {
		out = append(out, CategoryCount{Category: cat, Count: cnt})
	}
	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	default:
		return 0
	}
}
