package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kevinmichaelchen/showcase/internal/card"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("11"))
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// Text writes a terminal listing. Cards hidden by the filter are skipped.
func Text(w io.Writer, p *Page) error {
	var b strings.Builder
	for i, s := range p.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(headingStyle.Render(s.Title))
		if s.Chips != nil && p.Selected != "" {
			b.WriteString(tagStyle.Render(fmt.Sprintf(" [%s]", p.Selected)))
		}
		b.WriteString("\n\n")

		if s.Status != "" {
			b.WriteString(statusStyle.Render(s.Status))
			b.WriteString("\n")
			continue
		}

		n := 0
		for _, c := range s.Cards {
			if c.Hidden {
				continue
			}
			n++
			writeCard(&b, n, c.Card)
		}
		if n == 0 {
			b.WriteString(statusStyle.Render("No projects in this category."))
			b.WriteString("\n")
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}

func writeCard(b *strings.Builder, n int, c card.Card) {
	fmt.Fprintf(b, "%d. %s\n", n, titleStyle.Render(c.Title))
	fmt.Fprintf(b, "   %s\n", c.Description)

	tags := make([]string, len(c.Tags))
	for i, t := range c.Tags {
		tags[i] = t.Text
	}
	fmt.Fprintf(b, "   %s\n", tagStyle.Render(strings.Join(tags, " · ")))

	for _, l := range c.Links {
		fmt.Fprintf(b, "   %s %s\n", l.Label+":", linkStyle.Render(l.Href))
	}
	b.WriteString("\n")
}
