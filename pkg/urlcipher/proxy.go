package urlcipher

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnsupportedScheme is returned for URLs that are not http or https.
// The gateway proxies nothing else.
var ErrUnsupportedScheme = errors.New("unsupported scheme: not http/https")

// ToProxyURL rewrites originalURL into its WebVPN form:
//
//	{proxyBase}/{scheme}[-{port}]/{EncryptHost(host)}{path}
//
// The port is appended to the scheme segment as "-{port}" only when the
// URL carries an explicit port. Query strings are preserved. The exact
// shape is load-bearing: any deviation breaks every proxied request.
func ToProxyURL(originalURL, proxyBase string) (string, error) {
	u, err := url.Parse(originalURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", originalURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	seg := u.Scheme
	if port := u.Port(); port != "" {
		seg += "-" + port
	}

	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return strings.TrimRight(proxyBase, "/") + "/" + seg + "/" + EncryptHost(u.Hostname()) + path, nil
}

// IsProxied reports whether rawURL already points at the given proxy
// base, so callers do not rewrite a URL twice.
func IsProxied(rawURL, proxyBase string) bool {
	return proxyBase != "" && strings.HasPrefix(rawURL, strings.TrimRight(proxyBase, "/")+"/")
}
