package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/daybook/internal/cache"
	"git.home.luguber.info/inful/daybook/internal/feed"
	"git.home.luguber.info/inful/daybook/internal/markdown"
	"git.home.luguber.info/inful/daybook/internal/metrics"
	"git.home.luguber.info/inful/daybook/internal/render"
	"git.home.luguber.info/inful/daybook/internal/site"
	"git.home.luguber.info/inful/daybook/internal/store"
)

type testEnv struct {
	posts   string
	public  string
	handler http.Handler
}

func (e *testEnv) write(t *testing.T, rel, body string) {
	t.Helper()
	p := filepath.Join(e.posts, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func (e *testEnv) get(t *testing.T, target string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	root := t.TempDir()
	posts := filepath.Join(root, "posts")
	templates := filepath.Join(root, "templates")
	public := filepath.Join(root, "public")
	for _, dir := range []string{posts, templates, public} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	require.NoError(t, os.WriteFile(filepath.Join(templates, render.DefaultTagsFile),
		[]byte("@@ SiteTitle=Test Site"), 0o600))

	tpl, err := render.LoadTemplates(templates, "@@", render.Funcs{Location: time.UTC}, nil)
	require.NoError(t, err)
	svc := site.New(store.NewFS(posts), cache.New(),
		render.New(markdown.New(), tpl, render.Options{Location: time.UTC}),
		site.Options{
			PostsPerPage: 5,
			Location:     time.UTC,
			Feed:         feed.Options{Title: "Test Site", SiteURL: "https://example.com"},
		})

	if opts.PublicDir == "" {
		opts.PublicDir = public
	}
	return &testEnv{posts: posts, public: public, handler: New(svc, opts).Handler()}
}

func post(title, date, body string) string {
	return fmt.Sprintf("@@ Title=%s\n@@ Date=%s\n%s\n", title, date, body)
}

func TestDocument_ServedWithETag(t *testing.T) {
	env := newTestEnv(t, Options{PoweredBy: "daybook"})
	env.write(t, "2014/3/17/hello.md", post("Hello", "2014-03-17 09:00", "Some *text*."))

	rec := env.get(t, "/2014/3/17/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<em>text</em>")
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "daybook", rec.Header().Get("X-Powered-By"))

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	again := env.get(t, "/2014/3/17/hello", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, again.Code)
	assert.Empty(t, again.Body.String())
}

func TestDocument_RawSource(t *testing.T) {
	env := newTestEnv(t, Options{})
	src := post("Hello", "2014-03-17 09:00", "Some *text*.")
	env.write(t, "2014/3/17/hello.md", src)

	rec := env.get(t, "/2014/3/17/hello.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/x-markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, src, rec.Body.String())
}

func TestDocument_Redirect(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "2014/3/17/moved.redirect", "301\nhttps://example.com/elsewhere\n")

	rec := env.get(t, "/2014/3/17/moved")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "https://example.com/elsewhere", rec.Header().Get("Location"))
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "404.md", "@@ Title=Lost\nNothing to see.")

	for _, target := range []string{"/2014/3/17/missing", "/missing", "/1999", "/a/b/c/d/e"} {
		rec := env.get(t, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Body.String(), "Nothing to see.", target)
	}
}

func TestPage(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "about.md", "@@ Title=About\nAll about me.")

	rec := env.get(t, "/about")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "All about me.")
}

func TestIndex_PaginationAndRedirects(t *testing.T) {
	env := newTestEnv(t, Options{})
	for i := 1; i <= 7; i++ {
		env.write(t, fmt.Sprintf("2014/3/%d/p.md", i), post(fmt.Sprintf("Post %d", i), fmt.Sprintf("2014-03-%02d 09:00", i), "x"))
	}

	rec := env.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post 7")
	assert.NotContains(t, rec.Body.String(), "Post 1")

	rec = env.get(t, "/?p=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Post 1")

	rec = env.get(t, "/?p=9")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/?p=2", rec.Header().Get("Location"))

	rec = env.get(t, "/?p=abc")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestFeed(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "2014/3/17/hello.md", post("Hello", "2014-03-17 09:00", "Body"))

	rec := env.get(t, "/rss")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/rss+xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>Hello</title>")
	assert.Contains(t, rec.Body.String(), "https://example.com/2014/3/17/hello")
}

func TestTossCache(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "2014/3/17/hello.md", post("Hello", "2014-03-17 09:00", "first version"))
	require.Contains(t, env.get(t, "/2014/3/17/hello").Body.String(), "first version")

	env.write(t, "2014/3/17/hello.md", post("Hello", "2014-03-17 09:00", "second version"))
	assert.Contains(t, env.get(t, "/2014/3/17/hello").Body.String(), "first version")

	rec := env.get(t, "/tosscache")
	assert.Equal(t, http.StatusResetContent, rec.Code)
	assert.Contains(t, env.get(t, "/2014/3/17/hello").Body.String(), "second version")
}

func TestCount(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "2014/3/17/a.md", post("A", "2014-03-17 09:00", "x"))
	env.write(t, "2014/3/17/b.md", post("B", "2014-03-17 10:00", "x"))
	env.write(t, "2014/3/18/c.md", post("C", "2014-03-18 09:00", "x"))

	rec := env.get(t, "/count")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "3 articles, across 2 days that have at least one post.", rec.Body.String())
}

func TestListings(t *testing.T) {
	env := newTestEnv(t, Options{})
	env.write(t, "2014/3/17/a.md", post("Alpha", "2014-03-17 09:00", "x"))
	env.write(t, "2014/4/2/b.md", post("Beta", "2014-04-02 09:00", "x"))

	year := env.get(t, "/2014")
	require.Equal(t, http.StatusOK, year.Code)
	assert.Contains(t, year.Body.String(), "Alpha")
	assert.Contains(t, year.Body.String(), "Beta")

	for _, target := range []string{"/2014/3", "/2014/3/"} {
		month := env.get(t, target)
		require.Equal(t, http.StatusOK, month.Code, target)
		assert.Contains(t, month.Body.String(), "Alpha", target)
		assert.NotContains(t, month.Body.String(), "Beta", target)
	}

	for _, target := range []string{"/2014/3/17", "/2014/3/17/"} {
		day := env.get(t, target)
		require.Equal(t, http.StatusOK, day.Code, target)
		assert.Contains(t, day.Body.String(), "Alpha", target)
	}

	assert.Equal(t, http.StatusNotFound, env.get(t, "/2014/13").Code)
	assert.Equal(t, http.StatusNotFound, env.get(t, "/2014/x").Code)
}

func TestStaticFilesWinOverRoutes(t *testing.T) {
	env := newTestEnv(t, Options{})
	require.NoError(t, os.WriteFile(filepath.Join(env.public, "robots.txt"), []byte("User-agent: *"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(env.public, "count"), []byte("static count"), 0o600))

	rec := env.get(t, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User-agent: *", rec.Body.String())
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	assert.Equal(t, "static count", env.get(t, "/count").Body.String())
	assert.NotEqual(t, http.StatusOK, env.get(t, "/../etc/passwd").Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, Options{})
	require.Equal(t, http.StatusOK, env.get(t, "/2014/3/17/hello").Code)
	rec := env.get(t, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.NotEmpty(t, body.Version)
	assert.Equal(t, 1, body.Cached)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	rec.IncCacheFlush(metrics.FlushManual)

	env := newTestEnv(t, Options{MetricsHandler: metrics.HTTPHandler(reg)})
	resp := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "daybook_cache_flushes_total")

	disabled := newTestEnv(t, Options{})
	assert.Equal(t, http.StatusNotFound, disabled.get(t, "/metrics").Code)
}

func TestStartStop(t *testing.T) {
	root := t.TempDir()
	tpl, err := render.LoadTemplates(filepath.Join(root, "templates"), "@@", render.Funcs{Location: time.UTC}, nil)
	require.NoError(t, err)
	svc := site.New(store.NewFS(filepath.Join(root, "posts")), cache.New(),
		render.New(markdown.New(), tpl, render.Options{Location: time.UTC}),
		site.Options{PostsPerPage: 5, Location: time.UTC})

	srv := New(svc, Options{})
	require.NoError(t, srv.Start(context.Background(), "127.0.0.1:0"))
	t.Cleanup(func() { _ = srv.Stop(context.Background()) })

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	busy := New(svc, Options{})
	err = busy.Start(context.Background(), srv.Addr())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "http startup failed"))
}
