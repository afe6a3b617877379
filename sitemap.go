package pubfront

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubfront/api"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// buildSitemap lists the home page, every article and each category and tag
// referenced by those articles, in first-seen order.
func buildSitemap(base string, articles []api.Article) sitemapURLSet {
	urls := []sitemapURL{{Loc: BuildURL(base)}}
	seen := make(map[string]bool)
	var taxonomy []sitemapURL

	addTaxonomy := func(kind, slug string) {
		loc := BuildURL(base, kind, slug)
		if slug == "" || seen[loc] {
			return
		}
		seen[loc] = true
		taxonomy = append(taxonomy, sitemapURL{Loc: loc})
	}

	for _, art := range articles {
		modified := art.CreatedAt
		if art.WasUpdated() {
			modified = art.UpdatedAt
		}
		u := sitemapURL{Loc: ArticleURL(base, art.Slug)}
		if !modified.IsZero() {
			u.LastMod = modified.UTC().Format(time.DateOnly)
		}
		urls = append(urls, u)
		for _, cat := range art.Categories {
			addTaxonomy("category", cat.Slug)
		}
		for _, tag := range art.Tags {
			addTaxonomy("tag", tag.Slug)
		}
	}

	return sitemapURLSet{XMLNS: sitemapNS, URLs: append(urls, taxonomy...)}
}

func (a *App) renderSitemap(c echo.Context, articles []api.Article) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(buildSitemap(a.Config.URL, articles)); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", buf.Bytes())
}
