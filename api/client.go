// Package api is the client for the remote blog API that every page is
// rendered from. One Client is built at startup and shared by all requests.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// CurrentUserKey is the request key of the signed-in user lookup.
const CurrentUserKey = "/current_user"

// ErrorHandler is called once for every failed request. key is the request
// path without its query string.
type ErrorHandler func(ctx context.Context, err error, key string)

// Config is the shared fetch configuration.
type Config struct {
	BaseURL   string        // API root, e.g. https://api.example.com/v1
	Timeout   time.Duration // 0 keeps the transport default
	UserAgent string
	OnError   ErrorHandler // optional
	Logger    *zerolog.Logger
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Key        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s: status %d: %s", e.Key, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s: status %d", e.Key, e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// Client issues requests against the blog API. Retries are disabled.
type Client struct {
	rc      *resty.Client
	onError ErrorHandler
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		rc.SetHeader("User-Agent", cfg.UserAgent)
	}
	if cfg.Logger != nil {
		rc.SetLogger(restyLogger{cfg.Logger})
	}
	return &Client{rc: rc, onError: cfg.OnError}
}

// Article fetches a single article by slug.
func (c *Client) Article(ctx context.Context, slug string) (Envelope[Article], error) {
	return do[Article](ctx, c, http.MethodGet, "/articles/"+url.PathEscape(slug), nil)
}

// Articles fetches a page of articles matching q.
func (c *Client) Articles(ctx context.Context, q ArticleQuery) (Envelope[[]Article], error) {
	params := url.Values{}
	if q.Related != "" {
		params.Set("related", q.Related)
	}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Tag != "" {
		params.Set("tag", q.Tag)
	}
	params.Set("offset", strconv.Itoa(q.Offset))
	params.Set("limit", strconv.Itoa(q.Limit))
	return do[[]Article](ctx, c, http.MethodGet, "/articles", func(r *resty.Request) {
		r.SetQueryParamsFromValues(params)
	})
}

// Category fetches a category by slug.
func (c *Client) Category(ctx context.Context, slug string) (Envelope[Category], error) {
	return do[Category](ctx, c, http.MethodGet, "/categories/"+url.PathEscape(slug), nil)
}

// Tag fetches a tag by slug.
func (c *Client) Tag(ctx context.Context, slug string) (Envelope[Tag], error) {
	return do[Tag](ctx, c, http.MethodGet, "/tags/"+url.PathEscape(slug), nil)
}

// CurrentUser resolves the user owning token.
func (c *Client) CurrentUser(ctx context.Context, token string) (Envelope[User], error) {
	return do[User](ctx, c, http.MethodGet, CurrentUserKey, func(r *resty.Request) {
		r.SetAuthToken(token)
	})
}

// Login exchanges credentials for an API token.
func (c *Client) Login(ctx context.Context, in LoginRequest) (Envelope[Credentials], error) {
	return do[Credentials](ctx, c, http.MethodPost, "/login", func(r *resty.Request) {
		r.SetHeader("Content-Type", "application/json").SetBody(in)
	})
}

func do[T any](ctx context.Context, c *Client, method, key string, build func(*resty.Request)) (Envelope[T], error) {
	var env Envelope[T]

	req := c.rc.R().SetContext(ctx)
	if build != nil {
		build(req)
	}
	resp, err := req.Execute(method, key)
	if err != nil {
		return env, c.fail(ctx, key, fmt.Errorf("api: %s %s: %w", method, key, err))
	}
	if !resp.IsSuccess() {
		se := &StatusError{Key: key, StatusCode: resp.StatusCode()}
		var body Envelope[json.RawMessage]
		if json.Unmarshal(resp.Body(), &body) == nil {
			se.Message = body.Message
		}
		return env, c.fail(ctx, key, se)
	}
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return env, c.fail(ctx, key, fmt.Errorf("api: decode %s: %w", key, err))
	}
	return env, nil
}

func (c *Client) fail(ctx context.Context, key string, err error) error {
	if c.onError != nil {
		c.onError(ctx, err, key)
	}
	return err
}

// restyLogger routes resty's internal messages into zerolog.
type restyLogger struct {
	l *zerolog.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error().Str("component", "resty").Msgf(format, v...)
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn().Str("component", "resty").Msgf(format, v...)
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug().Str("component", "resty").Msgf(format, v...)
}
