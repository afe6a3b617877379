package pubfront

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubfront/logger"
)

func (a *App) handleArticle(c echo.Context) error {
	slug, err := slugParam(c)
	if err != nil {
		return a.notFound(c, err)
	}
	page, err := a.LoadArticlePage(a.requestContext(c), slug)
	if err != nil {
		return a.notFound(c, err)
	}

	article := page.Article
	meta := PageMeta{
		Title:       article.Title,
		Description: article.Excerpt,
		URL:         page.CanonicalURL,
		OGType:      "article",
		Image:       article.Image,
		ImageAlt:    article.Title,
		JSONLD:      ArticleJSONLD(article, page.CanonicalURL, a.Config),
	}
	return Render(c, a.Views.Article(page, a.layout(c, meta)))
}

func (a *App) handleHome(c echo.Context) error {
	return a.listing(c, ListingHome, "")
}

func (a *App) handleCategory(c echo.Context) error {
	slug, err := slugParam(c)
	if err != nil {
		return a.notFound(c, err)
	}
	return a.listing(c, ListingCategory, slug)
}

func (a *App) handleTag(c echo.Context) error {
	slug, err := slugParam(c)
	if err != nil {
		return a.notFound(c, err)
	}
	return a.listing(c, ListingTag, slug)
}

// slugParam decodes the :slug segment. Echo returns it still escaped when
// the request path carries percent-escapes.
func slugParam(c echo.Context) (string, error) {
	slug, err := url.PathUnescape(c.Param("slug"))
	if err != nil {
		return "", fmt.Errorf("%w: slug %q: %v", ErrNotFound, c.Param("slug"), err)
	}
	return slug, nil
}

func (a *App) listing(c echo.Context, kind ListingKind, slug string) error {
	page, err := a.LoadListing(a.requestContext(c), kind, slug, pageParam(c.QueryParam("page")))
	if err != nil {
		return a.notFound(c, err)
	}

	meta := PageMeta{URL: BuildURL(a.Config.URL, page.BasePath)}
	switch kind {
	case ListingHome:
		meta.JSONLD = WebsiteJSONLD(a.Config)
	default:
		meta.Title = page.Title + " | " + a.Config.Name
	}
	return Render(c, a.Views.Listing(page, a.layout(c, meta)))
}

func (a *App) handleSitemap(c echo.Context) error {
	articles, err := a.Index.Recent(a.requestContext(c))
	if err != nil {
		return err
	}
	return a.renderSitemap(c, articles)
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Index.Recent(a.requestContext(c))
	if err != nil {
		return err
	}
	return a.renderRSS(c, articles)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.staticDir, "favicon.svg"))
}

// handleRobots serves public/robots.txt when present and a permissive
// default pointing at the sitemap otherwise.
func (a *App) handleRobots(c echo.Context) error {
	file := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(file); err == nil {
		return c.File(file)
	}
	body := "User-agent: *\nAllow: /\n\nSitemap: " + BuildURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// notFound renders the 404 page for a loader failure.
func (a *App) notFound(c echo.Context, err error) error {
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	logger.Debug().Err(err).Str("path", c.Request().URL.Path).Msg("page not found")
	return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.layout(c, PageMeta{Title: "Not found"})))
}

// layout fills the page chrome, defaulting metadata from the site config.
func (a *App) layout(c echo.Context, meta PageMeta) Layout {
	if meta.Title == "" {
		meta.Title = a.Config.Name
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	if meta.URL == "" {
		meta.URL = BuildURL(a.Config.URL, c.Request().URL.Path)
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	return Layout{
		SiteName:  a.Config.Name,
		SiteURL:   a.Config.URL,
		Meta:      meta,
		User:      CurrentUser(c),
		CSRFToken: CsrfToken(c),
	}
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.layout(c, PageMeta{Title: "Not found"})))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		logger.Error().Err(err).
			Str("path", c.Request().URL.Path).
			Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
			Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.layout(c, PageMeta{Title: "Server error"})))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
