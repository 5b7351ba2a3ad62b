// Package classify assigns a repository to one of a small set of portfolio
// categories from its name, description, homepage, language and topics.
package classify

import (
	"regexp"
	"strings"

	"github.com/kevinmichaelchen/showcase/internal/models"
)

type Category string

const (
	AI    Category = "ai"
	ML    Category = "ml"
	Data  Category = "data"
	Web   Category = "web"
	Other Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{AI, ML, Data, Web, Other}

func (c Category) Label() string {
	switch c {
	case AI:
		return "AI"
	case ML:
		return "ML"
	case Data:
		return "Data"
	case Web:
		return "Web"
	default:
		return "Other"
	}
}

func Parse(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}
	return "", false
}

type rule struct {
	pattern  *regexp.Regexp
	category Category
}

// rules are tried in order and the first match wins. AI must stay ahead of the
// generic ML terms ("model") and ML ahead of data/web.
var rules = []rule{
	{regexp.MustCompile(`\b(ai|llm|rag|gpt|openai|summari[sz]er|nlp|transformer)\b`), AI},
	{regexp.MustCompile(`\b(computer[- ]vision|opencv|yolo|cnn|deep[- ]learning|tensorflow|pytorch)\b`), ML},
	{regexp.MustCompile(`\b(machine[- ]learning|ml|classification|regression|clustering|model)\b`), ML},
	{regexp.MustCompile(`\b(eda|data[- ]analysis|analytics|dashboard|visuali[sz]ation|power\s?bi|sql)\b`), Data},
	{regexp.MustCompile(`\b(django|fastapi|flask|api|frontend|react|next\.?js|vercel|html|css|javascript|typescript)\b`), Web},
}

var languageFallback = map[string]Category{
	"typescript":       Web,
	"javascript":       Web,
	"html":             Web,
	"css":              Web,
	"python":           Data,
	"jupyter notebook": Data,
}

// Classify never returns Other: anything unmatched lands in Web.
func Classify(repo models.Repo) Category {
	haystack := searchText(repo)
	for _, r := range rules {
		if r.pattern.MatchString(haystack) {
			return r.category
		}
	}

	if c, ok := languageFallback[strings.ToLower(repo.LanguageName())]; ok {
		return c
	}
	return Web
}

func searchText(repo models.Repo) string {
	parts := []string{
		repo.Name,
		repo.DescriptionText(),
		repo.HomepageURL(),
		repo.LanguageName(),
	}
	parts = append(parts, repo.Topics...)
	return strings.ToLower(strings.Join(parts, " "))
}
