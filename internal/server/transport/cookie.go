package transport

import (
	"net/http"
	"strings"
	"time"
)

// CookieCredentials keeps the credential in an HttpOnly cookie.
type CookieCredentials struct {
	w    http.ResponseWriter
	r    *http.Request
	name string
	p    pending
}

func NewCookieCredentials(w http.ResponseWriter, r *http.Request, name string) *CookieCredentials {
	return &CookieCredentials{w: w, r: r, name: name}
}

// Get returns the trimmed cookie value when present.
func (c *CookieCredentials) Get() (string, bool) {
	return c.p.get(func() (string, bool) {
		cookie, err := c.r.Cookie(c.name)
		if err != nil {
			return "", false
		}
		value := strings.TrimSpace(cookie.Value)
		return value, value != ""
	})
}

// Set writes the cookie with the session lifetime.
func (c *CookieCredentials) Set(value string, ttl time.Duration) {
	c.p = pending{written: true, value: value}
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   isHTTPS(c.r),
		SameSite: http.SameSiteLaxMode,
	})
}

// Delete expires the cookie.
func (c *CookieCredentials) Delete() {
	c.p = pending{written: true}
	http.SetCookie(c.w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isHTTPS(c.r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
