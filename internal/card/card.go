// Package card turns a repository into the display model of one project card.
// It knows nothing about HTML; see package view for the adapters.
package card

import (
	"fmt"
	"strings"

	"github.com/kevinmichaelchen/showcase/internal/catalog"
	"github.com/kevinmichaelchen/showcase/internal/classify"
	"github.com/kevinmichaelchen/showcase/internal/models"
)

const Placeholder = "No description yet."

type TagKind string

const (
	TagCategory TagKind = "category"
	TagLanguage TagKind = "language"
	TagStars    TagKind = "stars"
)

type Tag struct {
	Kind TagKind `json:"kind"`
	Text string  `json:"text"`
}

// Image is deferred and decoded asynchronously; when it fails to load the
// whole image region is dropped from the card.
type Image struct {
	Src           string `json:"src"`
	Alt           string `json:"alt"`
	Loading       string `json:"loading"`
	Decoding      string `json:"decoding"`
	RemoveOnError bool   `json:"remove_on_error"`
}

// Link opens in a new browsing context with no opener or referrer.
type Link struct {
	Label  string `json:"label"`
	Href   string `json:"href"`
	Target string `json:"target"`
	Rel    string `json:"rel"`
}

type Card struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Category    classify.Category `json:"category"`
	Language    string            `json:"language,omitempty"`
	Stars       int               `json:"stars"`
	Tags        []Tag             `json:"tags"`
	Image       *Image            `json:"image,omitempty"`
	Links       []Link            `json:"links"`
}

// Link returns the link with the given label.
func (c Card) Link(label string) (Link, bool) {
	for _, l := range c.Links {
		if l.Label == label {
			return l, true
		}
	}
	return Link{}, false
}

// Render builds a card. A zero overlay entry means no override.
func Render(repo models.Repo, overlay catalog.Entry) Card {
	category := classify.Classify(repo)
	language := strings.TrimSpace(repo.LanguageName())

	c := Card{
		Title:       repo.Name,
		Description: description(repo, overlay),
		Category:    category,
		Language:    language,
		Stars:       repo.Stars,
	}

	c.Tags = append(c.Tags, Tag{Kind: TagCategory, Text: category.Label()})
	if language != "" {
		c.Tags = append(c.Tags, Tag{Kind: TagLanguage, Text: language})
	}
	if repo.Stars > 0 {
		c.Tags = append(c.Tags, Tag{Kind: TagStars, Text: fmt.Sprintf("★ %d", repo.Stars)})
	}

	if overlay.Image != "" {
		c.Image = &Image{
			Src:           overlay.Image,
			Alt:           repo.Name + " preview",
			Loading:       "lazy",
			Decoding:      "async",
			RemoveOnError: true,
		}
	}

	if home := strings.TrimSpace(repo.HomepageURL()); home != "" {
		c.Links = append(c.Links, newLink("Live", home))
	}
	c.Links = append(c.Links, newLink("Code", repo.HTMLURL))

	return c
}

func description(repo models.Repo, overlay catalog.Entry) string {
	if d := strings.TrimSpace(overlay.Description); d != "" {
		return d
	}
	if d := strings.TrimSpace(repo.DescriptionText()); d != "" {
		return d
	}
	return Placeholder
}

func newLink(label, href string) Link {
	return Link{Label: label, Href: href, Target: "_blank", Rel: "noopener noreferrer"}
}
