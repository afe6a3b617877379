package pubfront

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/eringen/pubfront/api"
	"github.com/eringen/pubfront/logger"
)

type requestKey struct{}

// withRequest attaches the in-flight request to ctx so fetch failures can
// act on its cookies.
func withRequest(ctx context.Context, c echo.Context) context.Context {
	return context.WithValue(ctx, requestKey{}, c)
}

func requestFrom(ctx context.Context) (echo.Context, bool) {
	c, ok := ctx.Value(requestKey{}).(echo.Context)
	return c, ok
}

// requestContext is the context handlers pass to the API client.
func (a *App) requestContext(c echo.Context) context.Context {
	return withRequest(c.Request().Context(), c)
}

// onFetchError is the API client's shared error handler. Every failure is
// logged; a failed signed-in user lookup also drops the credential cookie so
// the next request is served signed out.
func (a *App) onFetchError(ctx context.Context, err error, key string) {
	ev := logger.Warn().Err(err).Str("key", key)
	c, ok := requestFrom(ctx)
	if ok {
		ev = ev.Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
	}
	ev.Msg("api request failed")

	if key != api.CurrentUserKey || !ok {
		return
	}
	if cerr := clearCredential(c); cerr != nil {
		logger.Error().Err(cerr).Msg("clear credential cookie")
	}
}

// fetchConfig is the shared fetch configuration. The fetch error policy is
// always installed, after any handler supplied through WithAPIConfig.
func (a *App) fetchConfig() api.Config {
	cfg := api.Config{
		BaseURL:   a.Config.APIURL,
		Timeout:   a.Config.APITimeout,
		UserAgent: "pubfront",
		Logger:    logger.Get(),
	}
	if a.apiConfig != nil {
		cfg = *a.apiConfig
	}
	if inner := cfg.OnError; inner != nil {
		cfg.OnError = func(ctx context.Context, err error, key string) {
			inner(ctx, err, key)
			a.onFetchError(ctx, err, key)
		}
	} else {
		cfg.OnError = a.onFetchError
	}
	return cfg
}
