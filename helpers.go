package pubfront

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/pubfront/api"
)

const (
	facebookSharer = "https://www.facebook.com/sharer.php"
	twitterIntent  = "https://twitter.com/intent/tweet"

	wordsPerMinute = 200
	dateLayout     = "Jan 2, 2006"
)

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	u.RawPath = ""
	return u.String()
}

// ArticleURL is the canonical URL of the article with slug.
func ArticleURL(siteURL, slug string) string {
	return BuildURL(siteURL, "article", slug)
}

// ArticlePath, CategoryPath and TagPath are site-relative links.
func ArticlePath(slug string) string  { return "/article/" + url.PathEscape(slug) }
func CategoryPath(slug string) string { return "/category/" + url.PathEscape(slug) }
func TagPath(slug string) string      { return "/tag/" + url.PathEscape(slug) }

// NewShareLinks builds the Facebook and Twitter share URLs for an article.
func NewShareLinks(canonical, title string) ShareLinks {
	fb := url.Values{"u": {canonical}}
	tw := url.Values{"text": {title + " " + canonical}}
	return ShareLinks{
		Facebook: facebookSharer + "?" + fb.Encode(),
		Twitter:  twitterIntent + "?" + tw.Encode(),
	}
}

// ReadingTime estimates whole minutes needed to read markdown content.
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 1
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// FormatDate renders t for display, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// pageParam parses a 1-based ?page value; anything invalid is page 1.
func pageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// WebsiteJSONLD returns a schema.org WebSite block for cfg.
func WebsiteJSONLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	return encodeJSONLD(data)
}

// ArticleJSONLD returns a schema.org BlogPosting block for article.
func ArticleJSONLD(article api.Article, canonical string, cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      article.Title,
		"description":   article.Excerpt,
		"datePublished": article.CreatedAt.Format(time.RFC3339),
		"url":           canonical,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   canonical,
		},
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
	}
	if article.WasUpdated() {
		data["dateModified"] = article.UpdatedAt.Format(time.RFC3339)
	}
	if article.User.FullName != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  article.User.FullName,
		}
	}
	if article.Image != "" {
		data["image"] = article.Image
	}
	if len(article.Tags) > 0 {
		keywords := make([]string, len(article.Tags))
		for i, t := range article.Tags {
			keywords[i] = t.Title
		}
		data["keywords"] = strings.Join(keywords, ", ")
	}
	return encodeJSONLD(data)
}

func encodeJSONLD(data map[string]interface{}) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
