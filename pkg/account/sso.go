package account

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/campass/campass/pkg/cookiejar"
	"github.com/campass/campass/pkg/credman"
	"github.com/campass/campass/pkg/logger"
	"github.com/campass/campass/pkg/store"
	"github.com/campass/campass/pkg/transport"
	"github.com/campass/campass/pkg/urlcipher"
)

const (
	ssoLoginPath = "/cas/login"
	ssoHomePath  = "/cas/index"

	// casFormMarker is present on every rendering of the CAS login form.
	// The verification probe's only job is to prove its absence.
	casFormMarker = `id="casLoginForm"`

	// vpnTicketFragment matches the gateway-issued session cookie name;
	// the gateway versions the prefix, so lookups go by fragment.
	vpnTicketFragment = "vpn_ticket"
)

// ltPattern extracts the CAS login transaction token from the login page.
var ltPattern = regexp.MustCompile(`name="lt"\s+value="([^"]+)"`)

// SsoAccount is the unified campus pass: CAS-style ticket login with an
// optional WebVPN routing mode. It keeps two jars, one per mode, because
// the gateway and the portal issue unrelated cookie sets.
type SsoAccount struct {
	tr  transport.Transport
	st  store.Store
	cm  *credman.Manager
	log logger.Logger

	host string
	cfg  SessionConfig

	direct *cookiejar.Jar
	vpn    *cookiejar.Jar

	loginMu sync.Mutex

	mu      sync.Mutex
	isLogin bool
	ticket  string
}

// NewSsoAccount constructs the SSO account with an explicit session
// config; nothing is read from ambient global state.
func NewSsoAccount(tr transport.Transport, st store.Store, cm *credman.Manager, log logger.Logger, cfg SessionConfig) *SsoAccount {
	if cfg.ProxyBase == "" {
		cfg.ProxyBase = DefaultProxyBase
	}
	return &SsoAccount{
		tr:     tr,
		st:     st,
		cm:     cm,
		log:    log,
		host:   DefaultSsoHost,
		cfg:    cfg,
		direct: cookiejar.NewJar(DefaultSsoHost, store.KeySsoCookie, st, log),
		vpn:    cookiejar.NewJar(DefaultSsoHost, store.KeyVpnCookie, st, log),
	}
}

// UseVPN reports whether requests are currently routed via the gateway.
func (s *SsoAccount) UseVPN() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.UseVPN
}

// setUseVPN flips the routing mode and persists it so the next process
// start comes up in the mode that last worked.
func (s *SsoAccount) setUseVPN(v bool) {
	s.mu.Lock()
	s.cfg.UseVPN = v
	s.mu.Unlock()
	flag := "0"
	if v {
		flag = "1"
	}
	if err := s.st.Set(store.KeyEaUseVpn, flag); err != nil {
		s.log.Warning("sso: persisting vpn flag failed: %v", err)
	}
}

// Ticket returns the last CAS ticket captured during login, if any.
func (s *SsoAccount) Ticket() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticket
}

// VPNTicket returns the gateway's session ticket cookie value, or "".
func (s *SsoAccount) VPNTicket() string {
	return s.vpn.Find(vpnTicketFragment)
}

func (s *SsoAccount) setLogin(v bool) {
	s.mu.Lock()
	s.isLogin = v
	s.mu.Unlock()
}

// IsLoggedIn returns the cached login state.
func (s *SsoAccount) IsLoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isLogin
}

// jarFor returns the jar matching the routing mode.
func (s *SsoAccount) jarFor(useVPN bool) *cookiejar.Jar {
	if useVPN {
		return s.vpn
	}
	return s.direct
}

// buildURL turns a portal path (or absolute URL) into the address to
// actually request, encrypting the hostname into the path when routed
// through the gateway.
func (s *SsoAccount) buildURL(path string, useVPN bool) (string, error) {
	raw := path
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + s.host + path
	}
	if !useVPN || urlcipher.IsProxied(raw, s.cfg.ProxyBase) {
		return raw, nil
	}
	return urlcipher.ToProxyURL(raw, s.cfg.ProxyBase)
}

// request performs one exchange in the given mode, merging response
// cookies into that mode's jar.
func (s *SsoAccount) request(ctx context.Context, method, rawURL string, form url.Values, referer string, useVPN bool) (*transport.Response, error) {
	jar := s.jarFor(useVPN)
	opts := transport.Options{Cookies: jar.CookieString()}
	if method == "POST" {
		opts.Body = formBody(form)
		opts.Headers = formHeaders(referer)
	} else if referer != "" {
		opts.Headers = map[string]string{"Referer": referer}
	}
	resp, err := s.tr.Perform(ctx, method, rawURL, opts)
	if err != nil {
		return nil, err
	}
	jar.SaveFromResponse(resp.SetCookies)
	return resp, nil
}

// RawGet fetches without a login check in the current mode.
func (s *SsoAccount) RawGet(ctx context.Context, rawURL string) (*transport.Response, error) {
	useVPN := s.UseVPN()
	u, err := s.buildURL(rawURL, useVPN)
	if err != nil {
		return nil, err
	}
	return s.request(ctx, "GET", u, nil, "", useVPN)
}

// RawPost posts without a login check in the current mode.
func (s *SsoAccount) RawPost(ctx context.Context, rawURL string, form url.Values) (*transport.Response, error) {
	useVPN := s.UseVPN()
	u, err := s.buildURL(rawURL, useVPN)
	if err != nil {
		return nil, err
	}
	return s.request(ctx, "POST", u, form, "", useVPN)
}

// Login runs the CAS handshake. When the direct flow fails for any
// reason the whole flow is retried exactly once through the gateway;
// the fallback never recurses.
func (s *SsoAccount) Login(ctx context.Context, creds *credman.Credentials, remember bool) (bool, error) {
	if !s.loginMu.TryLock() {
		return false, ErrLoginInProgress
	}
	defer s.loginMu.Unlock()

	if creds == nil {
		stored, err := s.cm.Load(store.KeySsoAccount, store.KeySsoPassword)
		if err != nil {
			s.log.Warning("sso: stored credentials unreadable: %v", err)
		}
		if stored == nil {
			return false, ErrNeedsLogin
		}
		creds = stored
		remember = false
	}

	useVPN := s.UseVPN()
	err := s.performLogin(ctx, creds, useVPN)
	if err != nil && !useVPN {
		// One-shot fallback: any direct-mode failure, credential or
		// transport, gets a single try through the gateway. Log the
		// class so genuine credential failures remain visible.
		if errors.Is(err, ErrWrongCredentials) {
			s.log.Warning("sso: direct login rejected credentials, retrying via vpn anyway: %v", err)
		} else {
			s.log.Info("sso: direct login failed (%v), retrying via vpn", err)
		}
		if vpnErr := s.performLogin(ctx, creds, true); vpnErr == nil {
			s.setUseVPN(true)
			err = nil
		}
	}
	if err != nil {
		s.setLogin(false)
		return false, err
	}

	if remember {
		if saveErr := s.cm.Save(store.KeySsoAccount, store.KeySsoPassword, *creds); saveErr != nil {
			s.log.Warning("sso: persisting credentials failed: %v", saveErr)
		}
	}
	s.setLogin(true)
	return true, nil
}

// performLogin is the login state machine:
// FetchLoginPage -> ExtractToken -> Submit -> FollowRedirects -> Verified.
// The redirect chain is a fast path only; the verification probe is the
// authoritative success signal.
func (s *SsoAccount) performLogin(ctx context.Context, creds *credman.Credentials, useVPN bool) error {
	loginURL, err := s.buildURL(ssoLoginPath, useVPN)
	if err != nil {
		return err
	}

	page, err := s.request(ctx, "GET", loginURL, nil, "", useVPN)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginPageUnavailable, err)
	}
	if !page.OK() {
		return fmt.Errorf("%w: status %d", ErrLoginPageUnavailable, page.Status)
	}

	token, err := extractToken(page.Data)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("rsa", urlcipher.EncodeCredentials(creds.Account, creds.Password, token))
	form.Set("ul", strconv.Itoa(len(creds.Account)))
	form.Set("pl", strconv.Itoa(len(creds.Password)))
	form.Set("lt", token)
	form.Set("execution", "e1s1")
	form.Set("_eventId", "submit")

	resp, err := s.request(ctx, "POST", loginURL, form, loginURL, useVPN)
	if err != nil {
		return err
	}

	// CAS re-renders the form on a rejected password.
	if resp.OK() && strings.Contains(string(resp.Data), casFormMarker) {
		return ErrWrongCredentials
	}

	if resp.Redirect() {
		if ticket := extractTicket(resp.Location); ticket != "" {
			s.mu.Lock()
			s.ticket = ticket
			s.mu.Unlock()
		}
		outcome, err := s.followRedirects(ctx, loginURL, resp.Location, useVPN)
		if err != nil {
			s.log.Warning("sso: redirect chain broke after %d hops: %v", outcome.HopsFollowed, err)
		} else {
			s.log.Info("sso: redirect chain done after %d hops", outcome.HopsFollowed)
		}
	}

	// Always verify, whatever the chain did.
	if !s.verify(ctx, useVPN) {
		return fmt.Errorf("%w: verification probe still sees the login form", ErrWrongCredentials)
	}
	return nil
}

// extractToken pulls the CAS login transaction token from the page body.
func extractToken(body []byte) (string, error) {
	m := ltPattern.FindSubmatch(body)
	if m == nil {
		return "", ErrTokenNotFound
	}
	return string(m[1]), nil
}

// extractTicket returns the ticket query parameter of a redirect
// location, or "".
func extractTicket(location string) string {
	u, err := url.Parse(location)
	if err != nil {
		return ""
	}
	return u.Query().Get("ticket")
}

// followRedirects chases the gateway's post-ticket redirect chain, at
// most maxRedirectHops hops, sending each hop the latest cookies and the
// previous URL as Referer. Running out of hops is not an error.
func (s *SsoAccount) followRedirects(ctx context.Context, fromURL, location string, useVPN bool) (RedirectOutcome, error) {
	outcome := RedirectOutcome{}
	prev := fromURL
	next := location
	for hop := 0; hop < maxRedirectHops; hop++ {
		target, err := s.resolveLocation(prev, next, useVPN)
		if err != nil {
			return outcome, err
		}
		resp, err := s.request(ctx, "GET", target, nil, prev, useVPN)
		if err != nil {
			return outcome, err
		}
		outcome.FinalResponse = resp
		outcome.HopsFollowed = hop + 1

		if ticket := extractTicket(resp.Location); ticket != "" {
			s.mu.Lock()
			s.ticket = ticket
			s.mu.Unlock()
		}
		if !resp.Redirect() || resp.Location == "" {
			return outcome, nil
		}
		prev = target
		next = resp.Location
	}
	return outcome, nil
}

// resolveLocation resolves a possibly relative Location header against
// the previous URL and reroutes it through the gateway when needed.
func (s *SsoAccount) resolveLocation(prevURL, location string, useVPN bool) (string, error) {
	base, err := url.Parse(prevURL)
	if err != nil {
		return "", fmt.Errorf("parse previous url: %w", err)
	}
	ref, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse redirect location: %w", err)
	}
	resolved := base.ResolveReference(ref).String()
	if useVPN && !urlcipher.IsProxied(resolved, s.cfg.ProxyBase) {
		return urlcipher.ToProxyURL(resolved, s.cfg.ProxyBase)
	}
	return resolved, nil
}

// verify probes the authenticated landing page; seeing the login form
// means the session does not exist, whatever the redirect chain said.
func (s *SsoAccount) verify(ctx context.Context, useVPN bool) bool {
	homeURL, err := s.buildURL(ssoHomePath, useVPN)
	if err != nil {
		return false
	}
	resp, err := s.request(ctx, "GET", homeURL, nil, "", useVPN)
	if err != nil {
		return false
	}
	if isLoginRedirect(resp) {
		return false
	}
	return !strings.Contains(string(resp.Data), casFormMarker)
}

// CheckLogin re-runs the verification probe and updates the cache.
func (s *SsoAccount) CheckLogin(ctx context.Context) bool {
	ok := s.verify(ctx, s.UseVPN())
	s.setLogin(ok)
	return ok
}

// EnsureLoggedIn short-circuits on a valid session, otherwise tries
// persisted credentials once.
func (s *SsoAccount) EnsureLoggedIn(ctx context.Context) error {
	if s.CheckLogin(ctx) {
		return nil
	}
	ok, err := s.Login(ctx, nil, false)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNeedsLogin
	}
	return nil
}

// Get performs an authenticated GET with the single re-login retry.
func (s *SsoAccount) Get(ctx context.Context, path string) (*transport.Response, error) {
	return s.authenticated(ctx, "GET", path, nil)
}

// Post performs an authenticated POST with the single re-login retry.
func (s *SsoAccount) Post(ctx context.Context, path string, form url.Values) (*transport.Response, error) {
	return s.authenticated(ctx, "POST", path, form)
}

func (s *SsoAccount) authenticated(ctx context.Context, method, path string, form url.Values) (*transport.Response, error) {
	if !s.IsLoggedIn() {
		if err := s.EnsureLoggedIn(ctx); err != nil {
			return nil, err
		}
	}
	useVPN := s.UseVPN()
	rawURL, err := s.buildURL(path, useVPN)
	if err != nil {
		return nil, err
	}
	resp, err := s.request(ctx, method, rawURL, form, "", useVPN)
	if err != nil {
		return nil, err
	}
	if !isLoginRedirect(resp) {
		return resp, nil
	}

	s.setLogin(false)
	ok, err := s.Login(ctx, nil, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNeedsLogin
	}
	// The fallback may have flipped the routing mode; rebuild the URL.
	useVPN = s.UseVPN()
	rawURL, err = s.buildURL(path, useVPN)
	if err != nil {
		return nil, err
	}
	resp, err = s.request(ctx, method, rawURL, form, "", useVPN)
	if err != nil {
		return nil, err
	}
	if isLoginRedirect(resp) {
		return nil, ErrNeedsLogin
	}
	return resp, nil
}

// Logout clears both jars and all session state.
func (s *SsoAccount) Logout() {
	s.direct.Clear()
	s.vpn.Clear()
	s.mu.Lock()
	s.isLogin = false
	s.ticket = ""
	s.mu.Unlock()
}

var _ Account = (*SsoAccount)(nil)
