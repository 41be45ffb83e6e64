package account

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/campass/campass/pkg/credman"
	"github.com/campass/campass/pkg/logger"
	"github.com/campass/campass/pkg/store"
	"github.com/campass/campass/pkg/transport"
)

// recordedCall is one exchange seen by the fake transport.
type recordedCall struct {
	Method string
	URL    string
	Opts   transport.Options
}

// fakeTransport routes requests to a test-provided handler and records
// every exchange for later assertions.
type fakeTransport struct {
	mu     sync.Mutex
	calls  []recordedCall
	handle func(method, rawURL string, opts transport.Options) (*transport.Response, error)
}

func (f *fakeTransport) Perform(_ context.Context, method, rawURL string, opts transport.Options) (*transport.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: method, URL: rawURL, Opts: opts})
	f.mu.Unlock()
	return f.handle(method, rawURL, opts)
}

func (f *fakeTransport) countURL(t *testing.T, substr string) int {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c.URL, substr) {
			n++
		}
	}
	return n
}

func (f *fakeTransport) lastCallTo(t *testing.T, substr string) *recordedCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if strings.Contains(f.calls[i].URL, substr) {
			return &f.calls[i]
		}
	}
	t.Fatalf("no call to %q recorded", substr)
	return nil
}

func parseForm(t *testing.T, body []byte) url.Values {
	t.Helper()
	v, err := url.ParseQuery(string(body))
	if err != nil {
		t.Fatalf("parse form body: %v", err)
	}
	return v
}

func newTestManager(t *testing.T) (*credman.Manager, store.Store) {
	t.Helper()
	st := store.NewMemStore()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return credman.NewManager(st, key), st
}

func okResponse(body string) *transport.Response {
	return &transport.Response{Status: 200, Data: []byte(body)}
}

func redirectResponse(location string, setCookies ...string) *transport.Response {
	return &transport.Response{Status: 302, Location: location, SetCookies: setCookies}
}

func nopLog() logger.Logger { return logger.NewNopLogger() }
