package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPerformGet(t *testing.T) {
	var gotUA, gotCookie, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCookie = r.Header.Get("Cookie")
		gotReferer = r.Header.Get("Referer")
		w.Header().Add("Set-Cookie", "a=1; Path=/")
		w.Header().Add("Set-Cookie", "b=2; Path=/x")
		io.WriteString(w, "hello")
	}))
	defer srv.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Perform(context.Background(), "GET", srv.URL, Options{
		Cookies: "sid=abc",
		Headers: map[string]string{"Referer": "https://prev.example/"},
	})
	if err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if !resp.OK() || string(resp.Data) != "hello" {
		t.Errorf("resp = %d %q", resp.Status, resp.Data)
	}
	if len(resp.SetCookies) != 2 {
		t.Errorf("SetCookies = %v", resp.SetCookies)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotCookie != "sid=abc" {
		t.Errorf("Cookie = %q", gotCookie)
	}
	if gotReferer != "https://prev.example/" {
		t.Errorf("Referer = %q", gotReferer)
	}
}

func TestPerformPost(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	tr := NewHTTPTransport()
	_, err := tr.Perform(context.Background(), "POST", srv.URL, Options{
		Body:    []byte("a=1&b=2"),
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	})
	if err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if string(gotBody) != "a=1&b=2" {
		t.Errorf("body = %q", gotBody)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

// TestPerformNoFollow checks the default behavior: the caller sees the
// redirect itself, including its cookies, instead of the final page.
func TestPerformNoFollow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			w.Header().Set("Set-Cookie", "hop=1")
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		io.WriteString(w, "final")
	}))
	defer srv.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Perform(context.Background(), "GET", srv.URL+"/start", Options{})
	if err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if !resp.Redirect() {
		t.Fatalf("status = %d, want a redirect", resp.Status)
	}
	if resp.Location != "/next" {
		t.Errorf("Location = %q", resp.Location)
	}
	if len(resp.SetCookies) != 1 || resp.SetCookies[0] != "hop=1" {
		t.Errorf("SetCookies = %v", resp.SetCookies)
	}
}

func TestPerformFollow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		io.WriteString(w, "final")
	}))
	defer srv.Close()

	tr := NewHTTPTransport()
	resp, err := tr.Perform(context.Background(), "GET", srv.URL+"/start", Options{FollowRedirects: true})
	if err != nil {
		t.Fatalf("Perform: %v", err)
	}
	if !resp.OK() || string(resp.Data) != "final" {
		t.Errorf("resp = %d %q", resp.Status, resp.Data)
	}
}

func TestPerformNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens any more

	tr := NewHTTPTransport()
	_, err := tr.Perform(context.Background(), "GET", srv.URL, Options{})
	if !errors.Is(err, ErrTransportFailure) {
		t.Fatalf("err = %v, want ErrTransportFailure", err)
	}
}

func TestPerformContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	tr := NewHTTPTransport()
	if _, err := tr.Perform(ctx, "GET", srv.URL, Options{}); err == nil {
		t.Fatal("cancelled context must fail the exchange")
	}
}
