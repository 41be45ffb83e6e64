// Package cookiejar implements per-portal cookie storage: parsing and
// stringifying Set-Cookie values, replace-or-insert merging keyed by
// (name, domain, path), expiry purging, and persistence through the
// key-value store collaborator.
package cookiejar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedCookie is returned when a cookie string has no name=value pair.
// Malformed cookies are dropped individually and never fail a whole batch.
var ErrMalformedCookie = errors.New("malformed cookie")

// Cookie is a single HTTP cookie with the attributes this core round-trips.
// A zero Expires means a session cookie that never expires locally.
type Cookie struct {
	Name     string
	Value    string
	Domain   string
	Path     string
	Expires  time.Time
	Secure   bool
	HttpOnly bool
}

// expiresFormats are the HTTP-date layouts accepted for the Expires
// attribute, most common first.
var expiresFormats = []string{
	time.RFC1123,
	"Mon, 02-Jan-2006 15:04:05 MST",
	time.RFC850,
	time.ANSIC,
}

// ParseCookie parses a single Set-Cookie style string. The first `;`
// segment must be name=value; later segments are attributes. Domain
// defaults to defaultDomain, Path to "/". Max-Age is converted to an
// absolute expiry and takes precedence over Expires. Unrecognized
// attributes are ignored.
func ParseCookie(s, defaultDomain string) (Cookie, error) {
	segments := strings.Split(s, ";")
	nameValue := strings.TrimSpace(segments[0])
	eq := strings.IndexByte(nameValue, '=')
	if eq <= 0 {
		return Cookie{}, fmt.Errorf("%w: %q", ErrMalformedCookie, nameValue)
	}

	c := Cookie{
		Name:   nameValue[:eq],
		Value:  nameValue[eq+1:],
		Domain: defaultDomain,
		Path:   "/",
	}

	var maxAge *int64
	for _, seg := range segments[1:] {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		attr, val := seg, ""
		if i := strings.IndexByte(seg, '='); i >= 0 {
			attr, val = seg[:i], strings.TrimSpace(seg[i+1:])
		}
		switch strings.ToLower(attr) {
		case "domain":
			if val != "" {
				c.Domain = val
			}
		case "path":
			if val != "" {
				c.Path = val
			}
		case "expires":
			if t, ok := parseExpires(val); ok {
				c.Expires = t
			}
		case "max-age":
			if secs, err := strconv.ParseInt(val, 10, 64); err == nil {
				maxAge = &secs
			}
		case "secure":
			c.Secure = true
		case "httponly":
			c.HttpOnly = true
		}
	}
	if maxAge != nil {
		c.Expires = time.Now().Add(time.Duration(*maxAge) * time.Second)
	}
	return c, nil
}

func parseExpires(val string) (time.Time, bool) {
	for _, layout := range expiresFormats {
		if t, err := time.Parse(layout, val); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// String renders the cookie in the persisted wire format:
// "name=value; Domain=d; Path=p; Expires=<RFC1123>; Secure; HttpOnly".
// The output round-trips through ParseCookie losslessly for every
// attribute this core sets.
func (c Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)
	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(time.RFC1123))
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	return b.String()
}

// Expired reports whether the cookie's expiry is in the past at now.
// Session cookies (zero Expires) never expire.
func (c Cookie) Expired(now time.Time) bool {
	return !c.Expires.IsZero() && c.Expires.Before(now)
}

// sameKey reports whether two cookies share the (name, domain, path)
// identity; within one jar that triple is unique and the most recently
// received cookie wins.
func (c Cookie) sameKey(o Cookie) bool {
	return c.Name == o.Name && c.Domain == o.Domain && c.Path == o.Path
}
