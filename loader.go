package pubfront

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubfront/api"
)

// ErrNotFound is returned by the loaders when a page cannot be built: any
// failed request or any response with success=false.
var ErrNotFound = errors.New("pubfront: not found")

var errUnsuccessful = errors.New("unsuccessful response")

// MaxListingPage bounds ?page so the article offset stays in range.
const MaxListingPage = 100000

// LoadArticlePage fetches the article with slug and its related articles in
// parallel. The page is only returned when both requests succeed.
func (a *App) LoadArticlePage(ctx context.Context, slug string) (ArticlePage, error) {
	var (
		article api.Envelope[api.Article]
		related api.Envelope[[]api.Article]
	)

	var g errgroup.Group
	g.Go(func() (err error) {
		article, err = a.API.Article(ctx, slug)
		return err
	})
	g.Go(func() (err error) {
		related, err = a.API.Articles(ctx, api.ArticleQuery{
			Related: slug,
			Offset:  0,
			Limit:   a.Config.RelatedLimit,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return ArticlePage{}, fmt.Errorf("%w: article %q: %v", ErrNotFound, slug, err)
	}
	if !article.Success || !related.Success {
		return ArticlePage{}, fmt.Errorf("%w: article %q: %v", ErrNotFound, slug, errUnsuccessful)
	}

	canonicalSlug := article.Data.Slug
	if canonicalSlug == "" {
		canonicalSlug = slug
	}
	canonical := ArticleURL(a.Config.URL, canonicalSlug)
	return ArticlePage{
		Article:      article.Data,
		Related:      related.Data,
		CanonicalURL: canonical,
		Share:        NewShareLinks(canonical, article.Data.Title),
	}, nil
}

// LoadListing fetches one page of articles. Category and tag listings also
// fetch the taxonomy entry for the header, in parallel with the articles.
func (a *App) LoadListing(ctx context.Context, kind ListingKind, slug string, page int) (ListingPage, error) {
	if page < 1 {
		page = 1
	}
	if page > MaxListingPage {
		return ListingPage{}, fmt.Errorf("%w: page %d", ErrNotFound, page)
	}
	lp := ListingPage{Kind: kind, Slug: slug, Page: page, HasPrev: page > 1, BasePath: "/"}
	q := api.ArticleQuery{Offset: (page - 1) * a.Config.PageSize, Limit: a.Config.PageSize}

	var (
		g        errgroup.Group
		title    string
		articles api.Envelope[[]api.Article]
	)
	switch kind {
	case ListingCategory:
		q.Category = slug
		lp.BasePath = CategoryPath(slug)
		g.Go(func() error {
			env, err := a.API.Category(ctx, slug)
			if err != nil {
				return err
			}
			if !env.Success {
				return errUnsuccessful
			}
			title = env.Data.Title
			return nil
		})
	case ListingTag:
		q.Tag = slug
		lp.BasePath = TagPath(slug)
		g.Go(func() error {
			env, err := a.API.Tag(ctx, slug)
			if err != nil {
				return err
			}
			if !env.Success {
				return errUnsuccessful
			}
			title = env.Data.Title
			return nil
		})
	}
	g.Go(func() (err error) {
		articles, err = a.API.Articles(ctx, q)
		return err
	})

	if err := g.Wait(); err != nil {
		return ListingPage{}, fmt.Errorf("%w: %s listing %q: %v", ErrNotFound, kind, slug, err)
	}
	if !articles.Success {
		return ListingPage{}, fmt.Errorf("%w: %s listing %q: %v", ErrNotFound, kind, slug, errUnsuccessful)
	}

	lp.Title = title
	lp.Articles = articles.Data
	lp.HasNext = len(articles.Data) == a.Config.PageSize
	return lp, nil
}

// fetchRecent loads the newest articles for the feed and sitemap.
func (a *App) fetchRecent(ctx context.Context) ([]api.Article, error) {
	env, err := a.API.Articles(ctx, api.ArticleQuery{Offset: 0, Limit: a.Config.FeedSize})
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("pubfront: recent articles: %w", errUnsuccessful)
	}
	return env.Data, nil
}
