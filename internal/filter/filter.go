// Package filter shows and hides already rendered cards by category.
package filter

// All selects every card.
const All = "all"

// Unit is one rendered card.
type Unit interface {
	Category() string
	SetVisible(bool)
}

// Toggle is one filter control, e.g. a chip button.
type Toggle interface {
	Key() string
	SetPressed(bool)
}

// Controller owns the selected category for a set of units and toggles. It
// only flips visibility; it never fetches or reclassifies.
type Controller struct {
	selected string
	units    []Unit
	toggles  []Toggle
}

// New starts with All selected and applied.
func New(units []Unit, toggles []Toggle) *Controller {
	c := &Controller{units: units, toggles: toggles}
	c.Apply(All)
	return c
}

func (c *Controller) Apply(label string) {
	if label == "" {
		label = All
	}
	c.selected = label

	for _, u := range c.units {
		u.SetVisible(label == All || u.Category() == label)
	}
	for _, t := range c.toggles {
		t.SetPressed(t.Key() == label)
	}
}

func (c *Controller) Selected() string {
	return c.selected
}
