package pubfront

import (
	"net/http"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/eringen/pubfront/api"
	"github.com/eringen/pubfront/logger"
)

const (
	// credentialSession is the cookie holding the API token.
	credentialSession = "token"
	credentialKey     = "token"
	userContextKey    = "user"
)

// CurrentUser returns the signed-in user resolved for this request, or nil.
func CurrentUser(c echo.Context) *api.User {
	u, _ := c.Get(userContextKey).(*api.User)
	return u
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}

func credentialToken(c echo.Context) string {
	sess, err := session.Get(credentialSession, c)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[credentialKey].(string)
	return token
}

func storeCredential(c echo.Context, token string) error {
	sess, err := session.Get(credentialSession, c)
	if err != nil {
		return err
	}
	sess.Values[credentialKey] = token
	return sess.Save(c.Request(), c.Response())
}

// clearCredential expires the credential cookie on the client.
func clearCredential(c echo.Context) error {
	sess, err := session.Get(credentialSession, c)
	if err != nil {
		return err
	}
	delete(sess.Values, credentialKey)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// currentUser resolves the credential cookie into a user before the handler
// runs. A failed lookup goes through onFetchError, which clears the cookie.
func (a *App) currentUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if skipUserLookup(c.Request().URL.Path) {
			return next(c)
		}
		token := credentialToken(c)
		if token == "" {
			return next(c)
		}
		env, err := a.API.CurrentUser(a.requestContext(c), token)
		if err == nil && env.Success {
			u := env.Data
			c.Set(userContextKey, &u)
		}
		return next(c)
	}
}

func skipUserLookup(path string) bool {
	return strings.HasPrefix(path, "/public/") ||
		path == "/healthz" || path == "/favicon.svg" ||
		path == "/sitemap.xml" || path == "/feed.xml" || path == "/robots.txt"
}

func (a *App) handleLoginForm(c echo.Context) error {
	if CurrentUser(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.Login(false, "", a.layout(c, PageMeta{Title: "Sign in"})))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}

	var in api.LoginRequest
	if err := c.Bind(&in); err != nil {
		return a.loginFailed(c, http.StatusBadRequest, "Invalid request.")
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := a.validate.Struct(in); err != nil {
		a.loginLimiter.Record(ip)
		return a.loginFailed(c, http.StatusUnprocessableEntity, "Enter a valid email and a password of at least 6 characters.")
	}

	env, err := a.API.Login(a.requestContext(c), in)
	switch {
	case api.IsStatus(err, http.StatusUnauthorized), api.IsStatus(err, http.StatusUnprocessableEntity),
		err == nil && (!env.Success || env.Data.Token == ""):
		a.loginLimiter.Record(ip)
		msg := "Invalid email or password."
		if err == nil && env.Message != "" {
			msg = env.Message
		}
		return a.loginFailed(c, http.StatusUnauthorized, msg)
	case err != nil:
		return err
	}

	if err := storeCredential(c, env.Data.Token); err != nil {
		return err
	}
	logger.Info().Str("ip", ip).Msg("user signed in")
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) loginFailed(c echo.Context, code int, msg string) error {
	return RenderStatus(c, code, a.Views.Login(true, msg, a.layout(c, PageMeta{Title: "Sign in"})))
}

func handleLogout(c echo.Context) error {
	if err := clearCredential(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
