package pubfront

import (
	"net/http"
	"time"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"

	"github.com/eringen/pubfront/api"
)

// buildFeed turns the newest articles into a feed. The channel date is the
// newest article date so identical input yields identical output.
func buildFeed(cfg SiteConfig, articles []api.Article) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       cfg.Name,
		Link:        &feeds.Link{Href: BuildURL(cfg.URL)},
		Description: cfg.Description,
	}

	var newest time.Time
	for _, art := range articles {
		link := ArticleURL(cfg.URL, art.Slug)
		item := &feeds.Item{
			Title:       art.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: art.Excerpt,
			Created:     art.CreatedAt,
		}
		if art.WasUpdated() {
			item.Updated = art.UpdatedAt
		}
		if art.User.FullName != "" {
			item.Author = &feeds.Author{Name: art.User.FullName}
		}
		if art.CreatedAt.After(newest) {
			newest = art.CreatedAt
		}
		if art.UpdatedAt.After(newest) {
			newest = art.UpdatedAt
		}
		feed.Items = append(feed.Items, item)
	}
	if newest.IsZero() {
		newest = time.Now()
	}
	feed.Created = newest
	return feed
}

func (a *App) renderRSS(c echo.Context, articles []api.Article) error {
	rss, err := buildFeed(a.Config, articles).ToRss()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
