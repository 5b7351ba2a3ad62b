package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinmichaelchen/showcase/internal/catalog"
	"github.com/kevinmichaelchen/showcase/internal/curate"
	"github.com/kevinmichaelchen/showcase/internal/models"
	"github.com/kevinmichaelchen/showcase/internal/pipeline"
)

const reposJSON = `[
  {"name": "rag-chatbot", "description": "Chat over your docs", "language": "Python", "topics": ["llm"], "stargazers_count": 4, "fork": false, "archived": false, "pushed_at": "2024-02-01T00:00:00Z", "html_url": "https://github.com/alice/rag-chatbot"},
  {"name": "site", "description": null, "language": "HTML", "topics": [], "stargazers_count": 0, "fork": false, "archived": false, "pushed_at": "2024-03-01T00:00:00Z", "html_url": "https://github.com/alice/site"},
  {"name": "old", "archived": true, "pushed_at": "2024-05-01T00:00:00Z", "html_url": "https://github.com/alice/old"}
]`

func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/alice/repos" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reposJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	userFlag, verbose = "", false

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestListCmd_JSON(t *testing.T) {
	srv := fakeGitHub(t)
	t.Setenv("GITHUB_API_URL", srv.URL)
	t.Setenv("GITHUB_USER", "alice")
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "list", "--json")
	require.NoError(t, err)

	var page struct {
		User     string `json:"user"`
		Sections []struct {
			Mode  string `json:"mode"`
			Cards []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				Category    string `json:"category"`
			} `json:"cards"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, "alice", page.User)
	require.Len(t, page.Sections, 1)

	cards := page.Sections[0].Cards
	require.Len(t, cards, 2)
	assert.Equal(t, "site", cards[0].Title)
	assert.Equal(t, "web", cards[0].Category)
	assert.Equal(t, "rag-chatbot", cards[1].Title)
	assert.Equal(t, "ai", cards[1].Category)
}

func TestListCmd_UserFlagOverridesEnv(t *testing.T) {
	srv := fakeGitHub(t)
	t.Setenv("GITHUB_API_URL", srv.URL)
	t.Setenv("GITHUB_USER", "bob")
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "--user", "alice", "list", "--category", "ai")
	require.NoError(t, err)
	assert.Contains(t, out, "rag-chatbot")
	assert.NotContains(t, out, "site")
}

func TestListCmd_MissingUser(t *testing.T) {
	t.Setenv("GITHUB_USER", "")
	t.Setenv("LOG_LEVEL", "error")

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Missing GitHub username")
}

func TestListCmd_BadArgs(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	_, err := run(t, "list", "--mode", "top")
	assert.Error(t, err)

	_, err = run(t, "list", "--category", "games")
	assert.Error(t, err)
}

func TestValidateCategory(t *testing.T) {
	for _, c := range []string{"all", "ai", "ml", "data", "web"} {
		assert.NoError(t, validateCategory(c), c)
	}
	assert.Error(t, validateCategory("other"))
	assert.Error(t, validateCategory(""))
}

func TestWriteSite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	grids := []pipeline.Grid{
		{Mode: curate.ModeFeatured, Status: "No featured projects found."},
		{Mode: curate.ModeAll, Status: "No public repos found."},
	}
	require.NoError(t, writeSite(dir, "alice", grids))

	for _, name := range []string{"index.html", "projects.html", "projects.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}

	fd, err := os.Open(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	defer fd.Close()

	doc, err := goquery.NewDocumentFromReader(fd)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("#featuredGrid").Length())
	assert.Equal(t, 0, doc.Find("#allGrid").Length())

	data, err := os.ReadFile(filepath.Join(dir, "projects.json"))
	require.NoError(t, err)
	var page struct {
		Sections []json.RawMessage `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(data, &page))
	assert.Len(t, page.Sections, 2)
}

func TestUndescribed(t *testing.T) {
	desc := "has one"
	blank := "   "
	cat := catalog.New(map[string]catalog.Entry{
		"covered": {Description: "from catalog"},
		"image":   {Image: "assets/projects/image.webp"},
	}, nil)

	repos := []models.Repo{
		{Name: "covered"},
		{Name: "described", Description: &desc},
		{Name: "blank", Description: &blank},
		{Name: "image"},
		{Name: "bare"},
	}

	var names []string
	for _, r := range undescribed(repos, cat) {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"blank", "image", "bare"}, names)
}

type fakeDescriber struct {
	calls atomic.Int64
}

func (f *fakeDescriber) Describe(_ context.Context, repo models.Repo) (string, error) {
	f.calls.Add(1)
	if repo.Name == "broken" {
		return "", errors.New("model unavailable")
	}
	return fmt.Sprintf("  Draft for %s. ", repo.Name), nil
}

func TestDraftDescriptions(t *testing.T) {
	d := &fakeDescriber{}
	repos := []models.Repo{{Name: "Sales_Dashboard"}, {Name: "broken"}, {Name: "cli"}}

	drafts, err := draftDescriptions(context.Background(), d, repos, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, d.calls.Load())
	assert.Equal(t, map[string]catalog.Entry{
		"salesdashboard": {Description: "Draft for Sales_Dashboard."},
		"cli":            {Description: "Draft for cli."},
	}, drafts)
}
