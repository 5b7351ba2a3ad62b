// Package view renders pipeline grids for browsers, API clients and
// terminals. All adapters share the Page model so filtering behaves the same
// everywhere.
package view

import (
	"github.com/kevinmichaelchen/showcase/internal/card"
	"github.com/kevinmichaelchen/showcase/internal/classify"
	"github.com/kevinmichaelchen/showcase/internal/curate"
	"github.com/kevinmichaelchen/showcase/internal/filter"
	"github.com/kevinmichaelchen/showcase/internal/pipeline"
)

type Page struct {
	Handle   string     `json:"user"`
	Selected string     `json:"selected"`
	Sections []*Section `json:"sections"`
}

type Section struct {
	ID     string      `json:"id"`
	Mode   curate.Mode `json:"mode"`
	Title  string      `json:"title"`
	Status string      `json:"status,omitempty"`
	Chips  []*Chip     `json:"chips,omitempty"`
	Cards  []*CardView `json:"cards"`
}

// CardView is a rendered card plus its visibility under the current filter.
type CardView struct {
	card.Card
	Hidden bool `json:"hidden,omitempty"`
}

func (c *CardView) Category() string  { return string(c.Card.Category) }
func (c *CardView) SetVisible(v bool) { c.Hidden = !v }

// Chip is one category filter button.
type Chip struct {
	Value   string `json:"key"`
	Label   string `json:"label"`
	Pressed bool   `json:"pressed"`
}

func (c *Chip) Key() string       { return c.Value }
func (c *Chip) SetPressed(p bool) { c.Pressed = p }

var chipCategories = []classify.Category{classify.AI, classify.ML, classify.Data, classify.Web}

// NewPage lays out grids as sections. The "all" grid gets filter chips and
// the selected category is applied to it.
func NewPage(handle string, grids []pipeline.Grid, selected string) *Page {
	p := &Page{Handle: handle, Selected: filter.All}

	for _, g := range grids {
		s := &Section{
			ID:     string(g.Mode) + "Grid",
			Mode:   g.Mode,
			Title:  sectionTitle(g.Mode),
			Status: g.Status,
			Cards:  make([]*CardView, 0, len(g.Cards)),
		}
		for _, c := range g.Cards {
			s.Cards = append(s.Cards, &CardView{Card: c})
		}

		if g.Mode == curate.ModeAll {
			s.Chips = newChips()
			ctrl := filter.New(units(s.Cards), toggles(s.Chips))
			ctrl.Apply(selected)
			p.Selected = ctrl.Selected()
		}
		p.Sections = append(p.Sections, s)
	}
	return p
}

func sectionTitle(m curate.Mode) string {
	if m == curate.ModeFeatured {
		return "Featured projects"
	}
	return "Projects"
}

func newChips() []*Chip {
	chips := []*Chip{{Value: filter.All, Label: "All"}}
	for _, c := range chipCategories {
		chips = append(chips, &Chip{Value: string(c), Label: c.Label()})
	}
	return chips
}

func units(cards []*CardView) []filter.Unit {
	out := make([]filter.Unit, len(cards))
	for i, c := range cards {
		out[i] = c
	}
	return out
}

func toggles(chips []*Chip) []filter.Toggle {
	out := make([]filter.Toggle, len(chips))
	for i, c := range chips {
		out[i] = c
	}
	return out
}
