// Package account implements the authenticated-session contract for the
// two campus portals: the teaching-affairs system (direct, cookie-based)
// and the unified SSO pass (CAS-style ticket login, optionally routed
// through the WebVPN gateway). Accounts own their cookie jars, re-login
// transparently exactly once on an invalidated session, and persist
// every cookie the portals hand back.
package account

import (
	"context"
	"net/url"
	"strings"

	"github.com/campass/campass/pkg/credman"
	"github.com/campass/campass/pkg/transport"
)

// Default hosts for the campus deployment this client targets. The
// teaching-affairs host is switchable at runtime through the store's
// EA_HOST key.
const (
	DefaultPortalHost = "jwxt.example.edu.cn"
	DefaultSsoHost    = "sso.example.edu.cn"
	DefaultProxyBase  = "https://vpn.example.edu.cn"
)

// maxRedirectHops bounds the post-login redirect chain the SSO gateway
// issues after ticket validation. Reaching the bound is not a failure;
// the verification probe decides.
const maxRedirectHops = 5

// SessionConfig carries the per-account VPN routing decision, replacing
// the ambient global flag of older clients.
type SessionConfig struct {
	// UseVPN routes every request through the WebVPN gateway by
	// rewriting target URLs with the hostname cipher.
	UseVPN bool

	// ProxyBase is the gateway origin, e.g. "https://vpn.example.edu.cn".
	ProxyBase string
}

// Account is an authenticated remote resource. Implementations are not
// safe for concurrent logins: callers must not invoke Login concurrently
// on the same Account.
type Account interface {
	// Login authenticates with the given credentials. When creds is nil,
	// persisted credentials are loaded; absent persisted credentials fail
	// closed with (false, ErrNeedsLogin). remember persists the
	// credentials on success.
	Login(ctx context.Context, creds *credman.Credentials, remember bool) (bool, error)

	// EnsureLoggedIn short-circuits when a cheap remote check confirms an
	// existing session, otherwise attempts Login with persisted
	// credentials. Returns ErrNeedsLogin when both fail.
	EnsureLoggedIn(ctx context.Context) error

	// CheckLogin asks the remote whether the current cookies still carry
	// a valid session. The isLogin cache is updated accordingly.
	CheckLogin(ctx context.Context) bool

	// Get performs an authenticated GET; a login-redirect response
	// triggers exactly one transparent re-login and one retry.
	Get(ctx context.Context, path string) (*transport.Response, error)

	// Post performs an authenticated POST with the same retry contract.
	Post(ctx context.Context, path string, form url.Values) (*transport.Response, error)

	// RawGet skips the login check; used during the handshake itself.
	RawGet(ctx context.Context, rawURL string) (*transport.Response, error)

	// RawPost skips the login check.
	RawPost(ctx context.Context, rawURL string, form url.Values) (*transport.Response, error)

	// Logout clears the cookie jars and the session state.
	Logout()

	// IsLoggedIn returns the cached login state. The cache is not a
	// source of truth; revalidate with CheckLogin before trusting it
	// for more than a few requests.
	IsLoggedIn() bool
}

// RedirectOutcome reports how a manually followed redirect chain ended.
type RedirectOutcome struct {
	// FinalResponse is the last response received, redirect or not.
	FinalResponse *transport.Response

	// HopsFollowed is the number of redirects actually taken.
	HopsFollowed int
}

// isLoginRedirect reports whether a response bounces the client back to a
// login page, the signature of an invalidated session.
func isLoginRedirect(resp *transport.Response) bool {
	return resp.Redirect() && strings.Contains(strings.ToLower(resp.Location), "login")
}

// formBody encodes a POST form, tolerating nil.
func formBody(form url.Values) []byte {
	if form == nil {
		return nil
	}
	return []byte(form.Encode())
}

// formHeaders returns the headers for a form POST, with an optional
// Referer.
func formHeaders(referer string) map[string]string {
	h := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	}
	if referer != "" {
		h["Referer"] = referer
	}
	return h
}
