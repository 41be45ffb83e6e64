package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

const (
	requestTimeout = 20 * time.Second

	// maxFollowedRedirects bounds the transport's own redirect chasing
	// when a caller opts in with FollowRedirects.
	maxFollowedRedirects = 10

	// maxBodyBytes caps response bodies; portal pages are small and an
	// unbounded read would let a misbehaving gateway exhaust memory.
	maxBodyBytes = 8 << 20
)

// HTTPTransport implements Transport over net/http. Redirects are not
// followed unless the request opts in, so the account layer sees every
// intermediate hop and its cookies.
type HTTPTransport struct {
	noFollow *http.Client
	follow   *http.Client
}

// NewHTTPTransport creates a transport with sane timeouts and manual
// redirect handling.
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{
		noFollow: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		follow: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxFollowedRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Perform executes one HTTP exchange. A network-level error is returned
// wrapped as ErrTransportFailure; any completed exchange, whatever its
// status code, yields a Response.
func (t *HTTPTransport) Perform(ctx context.Context, method, rawURL string, opts Options) (*Response, error) {
	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, Failure(err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	if opts.Cookies != "" {
		req.Header.Set("Cookie", opts.Cookies)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	client := t.noFollow
	if opts.FollowRedirects {
		client = t.follow
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, Failure(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, Failure(err)
	}

	return &Response{
		Status:     resp.StatusCode,
		Location:   resp.Header.Get("Location"),
		SetCookies: resp.Header.Values("Set-Cookie"),
		Data:       data,
	}, nil
}

var _ Transport = (*HTTPTransport)(nil)
