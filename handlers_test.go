package pubfront

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "github.com/eringen/pubfront/api"
)

func articleRoutes() map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/articles/hello": okJSON(articleJSON("hello", "Hello World")),
		"/articles":       okJSON([]any{articleJSON("second", "Second")}),
	}
}

// signedInCookie issues a credential cookie through the App's own session
// store.
func signedInCookie(t *testing.T, a *App, token string) *http.Cookie {
	t.Helper()
	a.Echo.GET("/test/sign-in", func(c echo.Context) error {
		return storeCredential(c, token)
	})
	rec := get(a, "/test/sign-in")
	cookie := findCookie(rec, credentialSession)
	require.NotNil(t, cookie, "sign-in did not set a credential cookie")
	return cookie
}

func TestArticlePage(t *testing.T) {
	api := newFakeAPI(t, articleRoutes())
	a := newTestApp(t, api.URL)

	rec := get(a, "/article/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "article=Hello World related=1")
	assert.Contains(t, rec.Body.String(), "canonical=https://blog.example.com/article/hello")
	assert.Contains(t, rec.Body.String(), "title=Hello World")
	assert.Equal(t, echo.MIMETextHTMLCharsetUTF8, rec.Header().Get(echo.HeaderContentType))
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "public, max-age=300", rec.Header().Get("Cache-Control"))
}

func TestArticlePageNotFound(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/articles/hello": respond(http.StatusOK, map[string]any{"success": false}),
		"/articles":       okJSON([]any{}),
	})
	a := newTestApp(t, api.URL)

	rec := get(a, "/article/hello")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", rec.Body.String())
}

func TestArticlePageAPIDown(t *testing.T) {
	api := newFakeAPI(t, nil)
	api.Close()
	a := newTestApp(t, api.URL)

	rec := get(a, "/article/hello")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	api := newFakeAPI(t, nil)
	a := newTestApp(t, api.URL)

	rec := get(a, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", rec.Body.String())
}

func TestCurrentUserResolved(t *testing.T) {
	routes := articleRoutes()
	routes["/current_user"] = okJSON(map[string]any{"id": 7, "full_name": "Ada Lovelace"})
	api := newFakeAPI(t, routes)
	a := newTestApp(t, api.URL)

	cookie := signedInCookie(t, a, "tok-123")
	rec := get(a, "/article/hello", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user=Ada Lovelace")
	assert.Equal(t, "Bearer tok-123", api.authorization("/current_user"))
	assert.Equal(t, "private, no-store", rec.Header().Get("Cache-Control"))
	assert.Nil(t, findCookie(rec, credentialSession), "valid credential must not be touched")
}

func TestCurrentUserFailureClearsCredential(t *testing.T) {
	routes := articleRoutes()
	routes["/current_user"] = respond(http.StatusUnauthorized, map[string]any{"success": false, "message": "expired"})
	api := newFakeAPI(t, routes)
	a := newTestApp(t, api.URL)

	cookie := signedInCookie(t, a, "stale")
	rec := get(a, "/article/hello", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "user=-")

	cleared := findCookie(rec, credentialSession)
	require.NotNil(t, cleared, "credential cookie should be cleared")
	assert.Less(t, cleared.MaxAge, 0)
	assert.Equal(t, 1, api.count("/current_user"))
}

func TestCurrentUserFailureIsNotCached(t *testing.T) {
	routes := articleRoutes()
	routes["/current_user"] = respond(http.StatusUnauthorized, map[string]any{"success": false})
	api := newFakeAPI(t, routes)
	a := newTestApp(t, api.URL)

	cookie := signedInCookie(t, a, "stale")
	rec := get(a, "/article/hello", cookie)

	require.NotNil(t, findCookie(rec, credentialSession))
	assert.Equal(t, "private, no-store", rec.Header().Get("Cache-Control"))
}

func TestInjectedAPIConfigKeepsFetchPolicy(t *testing.T) {
	routes := articleRoutes()
	routes["/current_user"] = respond(http.StatusUnauthorized, map[string]any{"success": false})
	fake := newFakeAPI(t, routes)

	var keys []string
	a := newTestApp(t, fake.URL, WithAPIConfig(apiclient.Config{
		BaseURL: fake.URL,
		OnError: func(_ context.Context, _ error, key string) {
			keys = append(keys, key)
		},
	}))

	cookie := signedInCookie(t, a, "stale")
	rec := get(a, "/article/hello", cookie)

	require.Equal(t, http.StatusOK, rec.Code)
	cleared := findCookie(rec, credentialSession)
	require.NotNil(t, cleared, "credential cookie should be cleared")
	assert.Less(t, cleared.MaxAge, 0)
	assert.Equal(t, []string{apiclient.CurrentUserKey}, keys)
}

func TestEscapedSlugIsDecoded(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/articles/a/b":   okJSON(articleJSON("a/b", "Slashed")),
		"/articles":       okJSON([]any{}),
		"/categories/c d": okJSON(map[string]any{"id": 1, "slug": "c d", "title": "Spaced"}),
	})
	a := newTestApp(t, api.URL)

	rec := get(a, "/article/a%2Fb")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "article=Slashed")
	assert.Equal(t, 1, api.count("/articles/a/b"))
	assert.Equal(t, "a/b", api.query("/articles").Get("related"))

	rec = get(a, "/category/c%20d")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c d", api.query("/articles").Get("category"))
}

func TestListingPageOutOfRange(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/articles": okJSON([]any{}),
	})
	a := newTestApp(t, api.URL)

	rec := get(a, "/?page=9223372036854775807")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, api.count("/articles"))
}

func TestOtherFetchFailuresKeepCredential(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/current_user": okJSON(map[string]any{"id": 7, "full_name": "Ada"}),
		"/articles":     okJSON([]any{}),
	})
	a := newTestApp(t, api.URL)

	cookie := signedInCookie(t, a, "tok")
	rec := get(a, "/article/missing", cookie)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Nil(t, findCookie(rec, credentialSession))
}

func TestNoCredentialSkipsUserLookup(t *testing.T) {
	api := newFakeAPI(t, articleRoutes())
	a := newTestApp(t, api.URL)

	get(a, "/article/hello")
	assert.Zero(t, api.count("/current_user"))
}

func TestListingPages(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/articles":      okJSON([]any{articleJSON("a", "A")}),
		"/tags/web":      okJSON(map[string]any{"id": 2, "slug": "web", "title": "Web"}),
		"/categories/go": okJSON(map[string]any{"id": 1, "slug": "go", "title": "Go"}),
	})
	a := newTestApp(t, api.URL)

	tests := []struct {
		target string
		want   string
	}{
		{"/", "listing=home title= count=1 page=1 prev=false next=false"},
		{"/tag/web", "listing=tag title=Web count=1 page=1"},
		{"/category/go?page=3", "listing=category title=Go count=1 page=3 prev=true"},
		{"/?page=bogus", "listing=home title= count=1 page=1"},
	}
	for _, tt := range tests {
		rec := get(a, tt.target)
		require.Equal(t, http.StatusOK, rec.Code, tt.target)
		assert.Contains(t, rec.Body.String(), tt.want, tt.target)
	}

	rec := get(a, "/tag/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrailingSlashRedirect(t *testing.T) {
	api := newFakeAPI(t, articleRoutes())
	a := newTestApp(t, api.URL)

	rec := get(a, "/article/hello/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/article/hello", rec.Header().Get(echo.HeaderLocation))
}

// csrfPair fetches the login form to obtain a CSRF cookie and its token.
func csrfPair(t *testing.T, a *App) *http.Cookie {
	t.Helper()
	rec := get(a, "/login")
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := findCookie(rec, "_csrf")
	require.NotNil(t, cookie)
	return cookie
}

func postLogin(a *App, csrf *http.Cookie, form url.Values) *httptest.ResponseRecorder {
	form.Set("_csrf", csrf.Value)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(csrf)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	var got map[string]string
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/login": func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&got)
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"token": "fresh"}})
		},
	})
	a := newTestApp(t, api.URL)

	rec := postLogin(a, csrfPair(t, a), url.Values{"email": {" ada@example.com "}, "password": {"secret1"}})

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))
	assert.NotNil(t, findCookie(rec, credentialSession))
	assert.Equal(t, "ada@example.com", got["email"])
	assert.Equal(t, "secret1", got["password"])
}

func TestLoginRejected(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/login": respond(http.StatusUnauthorized, map[string]any{"success": false, "message": "bad credentials"}),
	})
	a := newTestApp(t, api.URL)

	rec := postLogin(a, csrfPair(t, a), url.Values{"email": {"ada@example.com"}, "password": {"wrong-pass"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "login error=true msg=Invalid email or password.")
	assert.Nil(t, findCookie(rec, credentialSession))
}

func TestLoginValidation(t *testing.T) {
	api := newFakeAPI(t, nil)
	a := newTestApp(t, api.URL)

	rec := postLogin(a, csrfPair(t, a), url.Values{"email": {"not-an-email"}, "password": {"123"}})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "login error=true")
	assert.Zero(t, api.count("/login"))
}

func TestLoginRateLimited(t *testing.T) {
	api := newFakeAPI(t, nil)
	a := newTestApp(t, api.URL)
	csrf := csrfPair(t, a)

	for i := 0; i < 5; i++ {
		rec := postLogin(a, csrf, url.Values{"email": {"bad"}, "password": {"x"}})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	}
	rec := postLogin(a, csrf, url.Values{"email": {"bad"}, "password": {"x"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestLoginRequiresCSRF(t *testing.T) {
	api := newFakeAPI(t, nil)
	a := newTestApp(t, api.URL)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=a%40b.co&password=secret1"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogout(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/current_user": okJSON(map[string]any{"id": 7, "full_name": "Ada"}),
	})
	a := newTestApp(t, api.URL)
	session := signedInCookie(t, a, "tok")
	csrf := csrfPair(t, a)

	form := url.Values{"_csrf": {csrf.Value}}
	req := httptest.NewRequest(http.MethodPost, "/logout", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(csrf)
	req.AddCookie(session)
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	cleared := findCookie(rec, credentialSession)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestFeedAndSitemap(t *testing.T) {
	api := newFakeAPI(t, map[string]http.HandlerFunc{
		"/articles": okJSON([]any{articleJSON("hello", "Hello World")}),
	})
	a := newTestApp(t, api.URL)

	rec := get(a, "/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/rss+xml")
	assert.Contains(t, rec.Body.String(), "<title>Hello World</title>")
	assert.Contains(t, rec.Body.String(), "https://blog.example.com/article/hello")

	rec = get(a, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://blog.example.com/article/hello</loc>")
	assert.Contains(t, rec.Body.String(), "<loc>https://blog.example.com/category/go</loc>")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	assert.Equal(t, 1, api.count("/articles"), "feed and sitemap share the cached list")
	assert.Equal(t, "50", api.query("/articles").Get("limit"))
}

func TestRobotsDefault(t *testing.T) {
	api := newFakeAPI(t, nil)
	a := newTestApp(t, api.URL)

	rec := get(a, "/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://blog.example.com/sitemap.xml")
}

func TestHealthz(t *testing.T) {
	api := newFakeAPI(t, nil)
	a := newTestApp(t, api.URL)

	rec := get(a, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
