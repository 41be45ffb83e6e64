package cookiejar

import (
	"errors"
	"testing"
	"time"
)

func TestParseCookie(t *testing.T) {
	t.Run("bare pair", func(t *testing.T) {
		c, err := ParseCookie("JSESSIONID=abc123", "jwxt.example.edu.cn")
		if err != nil {
			t.Fatalf("ParseCookie: %v", err)
		}
		if c.Name != "JSESSIONID" || c.Value != "abc123" {
			t.Errorf("pair = %s=%s", c.Name, c.Value)
		}
		if c.Domain != "jwxt.example.edu.cn" {
			t.Errorf("Domain = %q, want default", c.Domain)
		}
		if c.Path != "/" {
			t.Errorf("Path = %q, want /", c.Path)
		}
	})

	t.Run("full attributes", func(t *testing.T) {
		c, err := ParseCookie(
			"token=v1; Domain=.example.edu.cn; Path=/jsxsd; Expires=Wed, 01 Jan 2053 00:00:00 GMT; Secure; HttpOnly",
			"jwxt.example.edu.cn",
		)
		if err != nil {
			t.Fatalf("ParseCookie: %v", err)
		}
		if c.Domain != ".example.edu.cn" || c.Path != "/jsxsd" {
			t.Errorf("Domain/Path = %q/%q", c.Domain, c.Path)
		}
		if c.Expires.Year() != 2053 {
			t.Errorf("Expires = %v", c.Expires)
		}
		if !c.Secure || !c.HttpOnly {
			t.Error("Secure/HttpOnly flags lost")
		}
	})

	t.Run("dashed expires layout", func(t *testing.T) {
		c, err := ParseCookie("a=b; Expires=Wed, 01-Jan-2053 00:00:00 GMT", "h")
		if err != nil {
			t.Fatalf("ParseCookie: %v", err)
		}
		if c.Expires.Year() != 2053 {
			t.Errorf("Expires = %v", c.Expires)
		}
	})

	t.Run("max-age wins over expires", func(t *testing.T) {
		c, err := ParseCookie("a=b; Expires=Wed, 01 Jan 2053 00:00:00 GMT; Max-Age=60", "h")
		if err != nil {
			t.Fatalf("ParseCookie: %v", err)
		}
		if d := time.Until(c.Expires); d > 61*time.Second || d < 50*time.Second {
			t.Errorf("Max-Age ignored, expiry %v away", d)
		}
	})

	t.Run("unknown attributes ignored", func(t *testing.T) {
		c, err := ParseCookie("a=b; SameSite=Lax; Priority=High", "h")
		if err != nil {
			t.Fatalf("ParseCookie: %v", err)
		}
		if c.Name != "a" || c.Value != "b" {
			t.Errorf("pair = %s=%s", c.Name, c.Value)
		}
	})

	t.Run("value with equals sign", func(t *testing.T) {
		c, err := ParseCookie("a=b=c", "h")
		if err != nil {
			t.Fatalf("ParseCookie: %v", err)
		}
		if c.Value != "b=c" {
			t.Errorf("Value = %q, want b=c", c.Value)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		for _, s := range []string{"", "noequals", "=value"} {
			if _, err := ParseCookie(s, "h"); !errors.Is(err, ErrMalformedCookie) {
				t.Errorf("ParseCookie(%q) err = %v, want ErrMalformedCookie", s, err)
			}
		}
	})
}

// TestCookieRoundTrip checks the stringify/parse law: every attribute the
// core sets survives a round trip.
func TestCookieRoundTrip(t *testing.T) {
	in := Cookie{
		Name:     "vpn_ticket_v2",
		Value:    "xyz",
		Domain:   "vpn.example.edu.cn",
		Path:     "/login",
		Expires:  time.Date(2053, 6, 1, 12, 0, 0, 0, time.UTC),
		Secure:   true,
		HttpOnly: true,
	}
	out, err := ParseCookie(in.String(), "fallback.host")
	if err != nil {
		t.Fatalf("ParseCookie(%q): %v", in.String(), err)
	}
	if out.Name != in.Name || out.Value != in.Value ||
		out.Domain != in.Domain || out.Path != in.Path ||
		out.Secure != in.Secure || out.HttpOnly != in.HttpOnly {
		t.Errorf("round trip changed the cookie:\n in %+v\nout %+v", in, out)
	}
	if !out.Expires.Equal(in.Expires) {
		t.Errorf("Expires = %v, want %v", out.Expires, in.Expires)
	}
}

func TestCookieExpired(t *testing.T) {
	now := time.Now()
	past := Cookie{Name: "a", Expires: now.Add(-time.Minute)}
	future := Cookie{Name: "b", Expires: now.Add(time.Minute)}
	session := Cookie{Name: "c"}

	if !past.Expired(now) {
		t.Error("past cookie not expired")
	}
	if future.Expired(now) {
		t.Error("future cookie expired")
	}
	if session.Expired(now) {
		t.Error("session cookie must never expire")
	}
}
