package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/canvass/internal/apperror"
)

// CSRF token settings. The token is 32 random bytes, hex encoded.
const (
	csrfTokenLength = 32
	csrfCookieName  = "canvass_csrf"
	csrfHeaderName  = "X-CSRF-Token"
	csrfFormField   = "csrf_token"
	csrfContextKey  = "csrf_token"
)

// CSRF returns double-submit cookie middleware. Every response carries a
// token cookie; POST, PUT, PATCH and DELETE requests must send the same
// value back in the X-CSRF-Token header or the csrf_token form field or
// they fail with 403. secure marks the cookie HTTPS-only.
func CSRF(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := ensureCSRFCookie(c, secure)
			if err != nil {
				return err
			}
			c.Set(csrfContextKey, token)

			if isSafeMethod(c.Request().Method) {
				return next(c)
			}

			submitted := submittedCSRFToken(c.Request())
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				return apperror.NewForbidden("Your form expired. Please reload the page and try again.")
			}
			return next(c)
		}
	}
}

// ensureCSRFCookie returns the request's token, issuing a fresh cookie when
// the request has none. A freshly issued token can never match a mutating
// request, which is what rejects cross-site posts from cookieless clients.
func ensureCSRFCookie(c echo.Context, secure bool) (string, error) {
	if cookie, err := c.Request().Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	token, err := generateCSRFToken()
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("generating CSRF token: %w", err))
	}
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // HTMX reads it to fill the header.
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// submittedCSRFToken prefers the header (HTMX) over the form field.
func submittedCSRFToken(req *http.Request) string {
	if token := req.Header.Get(csrfHeaderName); token != "" {
		return token
	}
	return req.FormValue(csrfFormField)
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetCSRFToken returns the token for the current request so forms can
// embed it.
func GetCSRFToken(c echo.Context) string {
	if token, ok := c.Get(csrfContextKey).(string); ok {
		return token
	}
	return ""
}
