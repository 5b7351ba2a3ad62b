package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kevinmichaelchen/showcase/internal/catalog"
	"github.com/kevinmichaelchen/showcase/internal/curate"
	"github.com/kevinmichaelchen/showcase/internal/models"
	"github.com/kevinmichaelchen/showcase/internal/pipeline"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

type fakeFetcher struct {
	mu    sync.Mutex
	repos []models.Repo
	err   error
}

func (f *fakeFetcher) ListRepos(context.Context, string) ([]models.Repo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.repos, f.err
}

// recordingBuilder captures the GridSpec each request asks for.
type recordingBuilder struct {
	*pipeline.Builder
	mu    sync.Mutex
	specs []pipeline.GridSpec
}

func (b *recordingBuilder) Grid(ctx context.Context, handle string, spec pipeline.GridSpec) pipeline.Grid {
	b.mu.Lock()
	b.specs = append(b.specs, spec)
	b.mu.Unlock()
	return b.Builder.Grid(ctx, handle, spec)
}

func ptr(s string) *string { return &s }

func newServer(t *testing.T, opts ...Option) (*Server, *recordingBuilder) {
	t.Helper()
	f := &fakeFetcher{repos: []models.Repo{
		{Name: "rag-chatbot", Description: ptr("chat over docs"), PushedAt: "2024-02-01T00:00:00Z", HTMLURL: "https://github.com/alice/rag-chatbot"},
		{Name: "site", Language: ptr("HTML"), PushedAt: "2024-03-01T00:00:00Z", HTMLURL: "https://github.com/alice/site"},
		{Name: "alice", PushedAt: "2024-04-01T00:00:00Z"},
	}}
	cat := catalog.New(map[string]catalog.Entry{
		"rag-chatbot": {Image: "assets/rag.webp"},
	}, []string{"rag-chatbot", "site"})

	b := &recordingBuilder{Builder: pipeline.New(f, cat, nil)}
	return New(b, "alice", opts...), b
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newServer(t)
	rec := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestHomePage_Featured(t *testing.T) {
	s, b := newServer(t)
	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	var titles []string
	doc.Find("#featuredGrid .card-title").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	assert.Equal(t, []string{"rag-chatbot", "site"}, titles)
	assert.Equal(t, 0, doc.Find("[data-filter]").Length())

	require.Len(t, b.specs, 1)
	assert.Equal(t, pipeline.GridSpec{Mode: curate.ModeFeatured}, b.specs[0])
}

func TestHomePage_RequireImages(t *testing.T) {
	s, b := newServer(t, WithFeaturedRequireImages(true))
	rec := get(t, s, "/")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("#featuredGrid article").Length())
	assert.True(t, b.specs[0].RequireImages)
}

func TestProjectsPage_Filter(t *testing.T) {
	s, _ := newServer(t)
	rec := get(t, s, "/projects?category=web")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	cards := doc.Find("#allGrid article")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, "site", cards.First().Find(".card-title").Text())

	_, hidden := doc.Find(`#allGrid [data-kind="ai"]`).Attr("hidden")
	assert.True(t, hidden)
	assert.Equal(t, "true", doc.Find(`[data-filter="web"]`).AttrOr("aria-pressed", ""))
	assert.Equal(t, "false", doc.Find(`[data-filter="all"]`).AttrOr("aria-pressed", ""))
}

func TestGridJSON(t *testing.T) {
	s, _ := newServer(t)
	rec := get(t, s, "/api/grids/all")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var page struct {
		Sections []struct {
			Mode  string `json:"mode"`
			Cards []struct {
				Title string `json:"title"`
			} `json:"cards"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Sections, 1)
	assert.Equal(t, "all", page.Sections[0].Mode)
	require.Len(t, page.Sections[0].Cards, 2)
	assert.Equal(t, "site", page.Sections[0].Cards[0].Title)
}

func TestGridJSON_UnknownMode(t *testing.T) {
	s, _ := newServer(t)
	rec := get(t, s, "/api/grids/top")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFetchFailureRendersStatus(t *testing.T) {
	f := &fakeFetcher{err: assert.AnError}
	s := New(pipeline.New(f, catalog.New(nil, nil), nil), "alice")

	rec := get(t, s, "/projects")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Couldn&#39;t load GitHub projects.")
}

func TestAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "projects"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "projects", "rag.webp"), []byte("img"), 0o644))

	s, _ := newServer(t, WithAssetDir(dir))
	rec := get(t, s, "/assets/projects/rag.webp")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "img", rec.Body.String())

	rec = get(t, s, "/assets/projects/missing.webp")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s, _ := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	http.DefaultClient.CloseIdleConnections()
}

func TestRun_ListenError(t *testing.T) {
	s, _ := newServer(t)
	err := s.Run(context.Background(), "not-an-address")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "serving"))
}
