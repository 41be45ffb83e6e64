// Package transport defines the HTTP collaborator consumed by the account
// layer. The core never performs raw socket I/O itself: it shapes requests,
// then interprets status, Location and Set-Cookie from the response.
package transport

import (
	"context"
	"errors"
	"fmt"
)

// DefaultUserAgent is sent on every request unless overridden per call.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// ErrTransportFailure wraps network-level errors from the collaborator.
// Callers treat it as a login/request failure, not a crash.
var ErrTransportFailure = errors.New("transport failure")

// Options shape a single request.
type Options struct {
	// Cookies is the Cookie header value ("name=value; name2=value2").
	// Empty means no Cookie header.
	Cookies string

	// Headers are extra request headers (Referer, Content-Type, ...).
	Headers map[string]string

	// Body is the request body for POST requests.
	Body []byte

	// FollowRedirects lets the transport chase 3xx responses itself.
	// The login state machine keeps this off and follows hops manually
	// so every hop's cookies can be captured.
	FollowRedirects bool
}

// Response is the transport's view of an HTTP exchange.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// Location is the Location header, empty when absent.
	Location string

	// SetCookies are the raw Set-Cookie header values in arrival order.
	SetCookies []string

	// Data is the response body.
	Data []byte
}

// OK reports whether the response carries a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Redirect reports whether the response is a 3xx redirect.
func (r *Response) Redirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// Transport performs HTTP exchanges on behalf of the account layer.
type Transport interface {
	Perform(ctx context.Context, method, rawURL string, opts Options) (*Response, error)
}

// Failure wraps err as an ErrTransportFailure.
func Failure(err error) error {
	return fmt.Errorf("%w: %v", ErrTransportFailure, err)
}
