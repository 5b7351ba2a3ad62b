package curate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/kevinmichaelchen/showcase/internal/catalog"
	"github.com/kevinmichaelchen/showcase/internal/models"
)

type Mode string

const (
	ModeAll      Mode = "all"
	ModeFeatured Mode = "featured"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeAll, ModeFeatured:
		return m, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeAll, ModeFeatured)
	}
}

// EmptyMessage is shown in place of a grid that curated down to nothing.
func EmptyMessage(m Mode) string {
	if m == ModeFeatured {
		return "No featured projects found."
	}
	return "No public repos found."
}

type Options struct {
	// Handle is the account name; its profile README repo is always dropped.
	Handle        string
	Mode          Mode
	RequireImages bool
}

// Curate drops archived repos, forks and the profile repo, then orders the
// rest for the requested mode. The input slice is not modified.
func Curate(repos []models.Repo, cat *catalog.Catalog, opts Options) []models.Repo {
	self := catalog.Normalize(opts.Handle)

	survivors := make([]models.Repo, 0, len(repos))
	for _, r := range repos {
		if r.Archived || r.Fork {
			continue
		}
		if catalog.Normalize(r.Name) == self {
			continue
		}
		if opts.RequireImages {
			if _, ok := cat.Image(r.Name); !ok {
				continue
			}
		}
		survivors = append(survivors, r)
	}

	if opts.Mode == ModeFeatured {
		return featured(survivors, cat.Featured())
	}
	sortByRecency(survivors)
	return survivors
}

func featured(repos []models.Repo, keys []string) []models.Repo {
	byKey := make(map[string]models.Repo, len(repos))
	for _, r := range repos {
		key := catalog.Normalize(r.Name)
		if _, dup := byKey[key]; !dup {
			byKey[key] = r
		}
	}

	out := make([]models.Repo, 0, len(keys))
	for _, key := range keys {
		r, ok := byKey[key]
		if !ok {
			continue
		}
		out = append(out, r)
		delete(byKey, key)
	}
	return out
}

// sortByRecency orders by pushed_at descending, then stars descending.
// Missing or unparsable timestamps sort last.
func sortByRecency(repos []models.Repo) {
	type keyed struct {
		repo   models.Repo
		pushed time.Time
	}
	items := make([]keyed, len(repos))
	for i, r := range repos {
		items[i] = keyed{repo: r, pushed: parsePushed(r.PushedAt)}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].pushed.Equal(items[j].pushed) {
			return items[i].pushed.After(items[j].pushed)
		}
		return items[i].repo.Stars > items[j].repo.Stars
	})

	for i, it := range items {
		repos[i] = it.repo
	}
}

var pushedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parsePushed(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range pushedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
