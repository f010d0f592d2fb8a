package catalogapi

import (
	"net/http"
	"net/url"
	"os"
	"strings"
)

// CSRFHeader is the header Django reads the anti-forgery token from
const CSRFHeader = "X-CSRFToken"

// DefaultCSRFCookie is the cookie Django stores the token in
const DefaultCSRFCookie = "csrftoken"

// TokenSource supplies the anti-forgery token for a mutating request.
// It is asked once per request; an empty token means none is available.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to the TokenSource interface
type TokenFunc func() string

// Token calls f
func (f TokenFunc) Token() string {
	return f()
}

// StaticToken always returns the same token
type StaticToken string

// Token returns the token
func (t StaticToken) Token() string {
	return strings.TrimSpace(string(t))
}

// EnvToken reads the token from an environment variable on every request
type EnvToken string

// Token returns the variable's current value
func (e EnvToken) Token() string {
	return strings.TrimSpace(os.Getenv(string(e)))
}

// CookieToken reads the token from a cookie jar, typically the one shared
// with the client so it follows whatever the server last set
type CookieToken struct {
	Jar  http.CookieJar
	URL  *url.URL
	Name string
}

// Token returns the cookie value for URL
func (c CookieToken) Token() string {
	if c.Jar == nil || c.URL == nil {
		return ""
	}
	name := c.Name
	if name == "" {
		name = DefaultCSRFCookie
	}
	for _, cookie := range c.Jar.Cookies(c.URL) {
		if cookie.Name == name {
			return strings.TrimSpace(cookie.Value)
		}
	}
	return ""
}
