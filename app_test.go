package pubfront

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/a-h/templ"
)

// fakeAPI is a stand-in for the remote blog API that records every call.
type fakeAPI struct {
	*httptest.Server

	mu      sync.Mutex
	hits    map[string]int
	queries map[string]url.Values
	auth    map[string]string
}

func newFakeAPI(t *testing.T, routes map[string]http.HandlerFunc) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		hits:    make(map[string]int),
		queries: make(map[string]url.Values),
		auth:    make(map[string]string),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		f.queries[r.URL.Path] = r.URL.Query()
		f.auth[r.URL.Path] = r.Header.Get("Authorization")
		f.mu.Unlock()

		h, ok := routes[r.URL.Path]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "not found"})
			return
		}
		h(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeAPI) query(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}

func (f *fakeAPI) authorization(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[path]
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respond(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, status, body)
	}
}

func okJSON(data any) http.HandlerFunc {
	return respond(http.StatusOK, map[string]any{"success": true, "data": data})
}

func articleJSON(slug, title string) map[string]any {
	return map[string]any{
		"id":         1,
		"slug":       slug,
		"title":      title,
		"excerpt":    "excerpt of " + title,
		"content":    "some body text",
		"created_at": "2024-03-01T10:00:00Z",
		"updated_at": "2024-03-01T10:00:00Z",
		"user":       map[string]any{"id": 7, "full_name": "Ada Lovelace"},
		"categories": []map[string]any{{"id": 1, "slug": "go", "title": "Go"}},
		"tags":       []map[string]any{{"id": 2, "slug": "web", "title": "web"}},
	}
}

func textComponent(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func userName(l Layout) string {
	if l.User == nil {
		return "-"
	}
	return l.User.FullName
}

// stubViews renders one-line summaries of what each page received.
func stubViews() ViewFuncs {
	return ViewFuncs{
		Article: func(p ArticlePage, l Layout) templ.Component {
			return textComponent(fmt.Sprintf("article=%s related=%d canonical=%s user=%s title=%s",
				p.Article.Title, len(p.Related), p.CanonicalURL, userName(l), l.Meta.Title))
		},
		Listing: func(p ListingPage, l Layout) templ.Component {
			return textComponent(fmt.Sprintf("listing=%s title=%s count=%d page=%d prev=%t next=%t",
				p.Kind, p.Title, len(p.Articles), p.Page, p.HasPrev, p.HasNext))
		},
		Login: func(showError bool, message string, l Layout) templ.Component {
			return textComponent(fmt.Sprintf("login error=%t msg=%s", showError, message))
		},
		NotFound: func(l Layout) templ.Component {
			return textComponent("not found")
		},
		ServerError: func(l Layout) templ.Component {
			return textComponent("server error")
		},
	}
}

func testConfig(apiURL string) SiteConfig {
	return SiteConfig{
		Name:          "Test Blog",
		URL:           "https://blog.example.com",
		APIURL:        apiURL,
		SessionSecret: strings.Repeat("s", 32),
	}
}

func newTestApp(t *testing.T, apiURL string, opts ...Option) *App {
	t.Helper()
	opts = append([]Option{WithStaticDir(t.TempDir())}, opts...)
	a := New(testConfig(apiURL), stubViews(), opts...)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func get(a *App, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
