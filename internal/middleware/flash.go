package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// flashCookieName holds a one-shot banner across a POST-redirect-GET.
const flashCookieName = "canvass_flash"

// flashSecureKey marks requests whose flash cookie must be HTTPS-only.
const flashSecureKey = "flash_secure"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash returns middleware that configures the flash cookie for the
// request. secure marks it HTTPS-only.
func Flash(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(flashSecureKey, secure)
			return next(c)
		}
	}
}

// SetFlash queues a banner for the next page render.
func SetFlash(c echo.Context, kind, message string) {
	c.SetCookie(flashCookie(c, url.QueryEscape(kind+":"+message), 0))
}

// PopFlash returns the queued banner, if any, and clears it. Unknown kinds
// are dropped.
func PopFlash(c echo.Context) (success, errMsg string) {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return "", ""
	}
	c.SetCookie(flashCookie(c, "", -1))

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", ""
	}
	kind, message, ok := strings.Cut(raw, ":")
	if !ok {
		return "", ""
	}
	switch kind {
	case FlashSuccess:
		return message, ""
	case FlashError:
		return "", message
	}
	return "", ""
}

func flashCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	secure, _ := c.Get(flashSecureKey).(bool)
	return &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
