// Package session carries the caller's identity into every adapter call.
// Service code never reaches into ambient global state; a Context is
// constructed once per dispatch and passed down explicitly.
package session

import (
	"golang.org/x/oauth2"

	"haru-assistant/internal/gateway"
)

// Context identifies the current user for one dispatch. Token is the
// accessor for the bearer credential; it may be nil for backends that
// do not require one.
type Context struct {
	UserID string
	Token  oauth2.TokenSource
}

// RequireUser guards write paths: they must reject before any network
// call when no user is signed in.
func (c Context) RequireUser() error {
	if c.UserID == "" {
		return gateway.NewError(gateway.KindValidation, 0, "로그인이 필요합니다")
	}
	return nil
}

// BearerToken resolves the current access token, empty when absent.
func (c Context) BearerToken() string {
	if c.Token == nil {
		return ""
	}
	tok, err := c.Token.Token()
	if err != nil || tok == nil {
		return ""
	}
	return tok.AccessToken
}

// StaticToken wraps a fixed credential as a token source.
func StaticToken(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
}
