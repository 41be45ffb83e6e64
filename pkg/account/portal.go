package account

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/campass/campass/pkg/cookiejar"
	"github.com/campass/campass/pkg/credman"
	"github.com/campass/campass/pkg/logger"
	"github.com/campass/campass/pkg/store"
	"github.com/campass/campass/pkg/transport"
)

const (
	portalLoginPagePath = "/jsxsd/"
	portalLoginPath     = "/jsxsd/xk/LoginToXk"
	portalHomePath      = "/jsxsd/framework/xsMain.jsp"

	// portalFormMarker appears in the login page body; its presence in a
	// probed page means the session is gone.
	portalFormMarker = `id="loginForm"`
)

// PortalAccount is the teaching-affairs (EAS) account: single host,
// cookie-based login, never proxied.
type PortalAccount struct {
	tr  transport.Transport
	st  store.Store
	cm  *credman.Manager
	log logger.Logger

	host string
	jar  *cookiejar.Jar

	loginMu sync.Mutex

	mu      sync.Mutex
	isLogin bool
}

// NewPortalAccount constructs the EAS account. The host comes from the
// store's EA_HOST key when set, otherwise DefaultPortalHost.
func NewPortalAccount(tr transport.Transport, st store.Store, cm *credman.Manager, log logger.Logger) *PortalAccount {
	host := DefaultPortalHost
	if v, ok, err := st.Get(store.KeyEaHost); err == nil && ok && v != "" {
		host = v
	}
	return &PortalAccount{
		tr:   tr,
		st:   st,
		cm:   cm,
		log:  log,
		host: host,
		jar:  cookiejar.NewJar(host, store.KeyPortalCookie, st, log),
	}
}

// Host returns the current EAS host.
func (p *PortalAccount) Host() string { return p.host }

// SwitchHost changes the EAS host, persists it and clears the cookie jar;
// cookies never survive a host switch.
func (p *PortalAccount) SwitchHost(host string) error {
	if host == p.host {
		return nil
	}
	if err := p.st.Set(store.KeyEaHost, host); err != nil {
		return fmt.Errorf("persist host: %w", err)
	}
	p.jar.Clear()
	p.host = host
	p.jar = cookiejar.NewJar(host, store.KeyPortalCookie, p.st, p.log)
	p.setLogin(false)
	return nil
}

func (p *PortalAccount) setLogin(v bool) {
	p.mu.Lock()
	p.isLogin = v
	p.mu.Unlock()
}

// IsLoggedIn returns the cached login state.
func (p *PortalAccount) IsLoggedIn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.isLogin
}

func (p *PortalAccount) baseURL() string {
	return "https://" + p.host
}

func (p *PortalAccount) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return p.baseURL() + path
}

// request performs one exchange with the jar's cookies attached and
// merges returned cookies back.
func (p *PortalAccount) request(ctx context.Context, method, rawURL string, form url.Values, referer string) (*transport.Response, error) {
	opts := transport.Options{Cookies: p.jar.CookieString()}
	if method == "POST" {
		opts.Body = formBody(form)
		opts.Headers = formHeaders(referer)
	} else if referer != "" {
		opts.Headers = map[string]string{"Referer": referer}
	}
	resp, err := p.tr.Perform(ctx, method, rawURL, opts)
	if err != nil {
		return nil, err
	}
	p.jar.SaveFromResponse(resp.SetCookies)
	return resp, nil
}

// RawGet fetches without a login check; used during the handshake.
func (p *PortalAccount) RawGet(ctx context.Context, rawURL string) (*transport.Response, error) {
	return p.request(ctx, "GET", p.resolve(rawURL), nil, "")
}

// RawPost posts without a login check.
func (p *PortalAccount) RawPost(ctx context.Context, rawURL string, form url.Values) (*transport.Response, error) {
	return p.request(ctx, "POST", p.resolve(rawURL), form, p.baseURL()+portalLoginPagePath)
}

// Login authenticates against the EAS. See Account.Login for the
// credential resolution and persistence contract.
func (p *PortalAccount) Login(ctx context.Context, creds *credman.Credentials, remember bool) (bool, error) {
	if !p.loginMu.TryLock() {
		return false, ErrLoginInProgress
	}
	defer p.loginMu.Unlock()

	if creds == nil {
		stored, err := p.cm.Load(store.KeyPortalAccount, store.KeyPortalPassword)
		if err != nil {
			p.log.Warning("portal: stored credentials unreadable: %v", err)
		}
		if stored == nil {
			return false, ErrNeedsLogin
		}
		creds = stored
		remember = false
	}

	if err := p.performLogin(ctx, creds); err != nil {
		p.setLogin(false)
		return false, err
	}

	if remember {
		if err := p.cm.Save(store.KeyPortalAccount, store.KeyPortalPassword, *creds); err != nil {
			p.log.Warning("portal: persisting credentials failed: %v", err)
		}
	}
	p.setLogin(true)
	return true, nil
}

// performLogin runs the cookie handshake: fetch the login page, post the
// form, verify with the home-page probe.
func (p *PortalAccount) performLogin(ctx context.Context, creds *credman.Credentials) error {
	page, err := p.RawGet(ctx, portalLoginPagePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoginPageUnavailable, err)
	}
	if !page.OK() && !page.Redirect() {
		return fmt.Errorf("%w: status %d", ErrLoginPageUnavailable, page.Status)
	}

	form := url.Values{}
	form.Set("userAccount", creds.Account)
	form.Set("userPassword", creds.Password)
	form.Set("encoded", encodePortalSecret(creds.Account, creds.Password))

	resp, err := p.RawPost(ctx, portalLoginPath, form)
	if err != nil {
		return err
	}
	// A successful login answers with a redirect away from the login
	// pages; landing back on one means the portal rejected the password.
	if isLoginRedirect(resp) || (resp.OK() && strings.Contains(string(resp.Data), portalFormMarker)) {
		return ErrWrongCredentials
	}

	if !p.CheckLogin(ctx) {
		return ErrWrongCredentials
	}
	return nil
}

// encodePortalSecret builds the EAS form's "encoded" field:
// base64(account) + "%%%" + base64(password).
func encodePortalSecret(account, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(account)) +
		"%%%" +
		base64.StdEncoding.EncodeToString([]byte(password))
}

// CheckLogin probes the authenticated home page. The probe is cheap and
// authoritative: a login form in the body or a bounce to a login URL
// means the session is gone.
func (p *PortalAccount) CheckLogin(ctx context.Context) bool {
	resp, err := p.RawGet(ctx, portalHomePath)
	ok := err == nil && resp.OK() && !strings.Contains(string(resp.Data), portalFormMarker)
	if err == nil && isLoginRedirect(resp) {
		ok = false
	}
	p.setLogin(ok)
	return ok
}

// EnsureLoggedIn short-circuits on a valid remote session, otherwise
// tries persisted credentials once.
func (p *PortalAccount) EnsureLoggedIn(ctx context.Context) error {
	if p.CheckLogin(ctx) {
		return nil
	}
	ok, err := p.Login(ctx, nil, false)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNeedsLogin
	}
	return nil
}

// Get performs an authenticated GET with the single re-login retry.
func (p *PortalAccount) Get(ctx context.Context, path string) (*transport.Response, error) {
	return p.authenticated(ctx, "GET", path, nil)
}

// Post performs an authenticated POST with the single re-login retry.
func (p *PortalAccount) Post(ctx context.Context, path string, form url.Values) (*transport.Response, error) {
	return p.authenticated(ctx, "POST", path, form)
}

func (p *PortalAccount) authenticated(ctx context.Context, method, path string, form url.Values) (*transport.Response, error) {
	if !p.IsLoggedIn() {
		if err := p.EnsureLoggedIn(ctx); err != nil {
			return nil, err
		}
	}
	rawURL := p.resolve(path)
	resp, err := p.request(ctx, method, rawURL, form, "")
	if err != nil {
		return nil, err
	}
	if !isLoginRedirect(resp) {
		return resp, nil
	}

	// Session invalidated under us: one re-login, one retry, never more.
	p.setLogin(false)
	ok, err := p.Login(ctx, nil, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNeedsLogin
	}
	resp, err = p.request(ctx, method, rawURL, form, "")
	if err != nil {
		return nil, err
	}
	if isLoginRedirect(resp) {
		return nil, ErrNeedsLogin
	}
	return resp, nil
}

// Logout clears the jar and the cached state.
func (p *PortalAccount) Logout() {
	p.jar.Clear()
	p.setLogin(false)
}

var _ Account = (*PortalAccount)(nil)
