package pubfront

import "github.com/eringen/pubfront/api"

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, optional
	ImageAlt    string
	JSONLD      string // pre-encoded schema.org block, optional
}

// Layout is the per-request chrome every page is rendered inside.
type Layout struct {
	SiteName  string
	SiteURL   string
	Meta      PageMeta
	User      *api.User // nil when signed out
	CSRFToken string
}

// ShareLinks are the prebuilt social sharing URLs of an article.
type ShareLinks struct {
	Facebook string
	Twitter  string
}

// ArticlePage is everything the article view renders.
type ArticlePage struct {
	Article      api.Article
	Related      []api.Article
	CanonicalURL string
	Share        ShareLinks
}

// ListingKind tells the listing view which header to show.
type ListingKind string

const (
	ListingHome     ListingKind = "home"
	ListingCategory ListingKind = "category"
	ListingTag      ListingKind = "tag"
)

// ListingPage is a paginated list of articles with an optional taxonomy header.
type ListingPage struct {
	Kind     ListingKind
	Slug     string
	Title    string
	Articles []api.Article
	Page     int
	HasPrev  bool
	HasNext  bool
	BasePath string // "/", "/category/{slug}", "/tag/{slug}"
}
