package cookiejar

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/campass/campass/pkg/logger"
	"github.com/campass/campass/pkg/store"
)

// Jar owns the mutable ordered cookie collection for one
// (host, persistence-key) scope. It is created alongside its owning
// account, loaded from the store at construction, mutated on every
// response that carries Set-Cookie, and persisted after every mutation.
type Jar struct {
	host     string
	storeKey string

	st  store.Store
	log logger.Logger

	mu      sync.Mutex
	cookies []Cookie
}

// NewJar creates a jar for cookies from host persisting under storeKey.
// Storage failures on load yield an empty jar: losing persisted cookies
// only costs a future re-login.
func NewJar(host, storeKey string, st store.Store, log logger.Logger) *Jar {
	j := &Jar{
		host:     host,
		storeKey: storeKey,
		st:       st,
		log:      log,
	}
	j.load()
	return j
}

// load reads the persisted cookie strings and parses each one.
// Individual parse failures are dropped without aborting the load.
func (j *Jar) load() {
	raw, ok, err := j.st.Get(j.storeKey)
	if err != nil {
		j.log.Warning("cookie jar %s: load failed, starting empty: %v", j.storeKey, err)
		return
	}
	if !ok || raw == "" {
		return
	}
	var lines []string
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		j.log.Warning("cookie jar %s: corrupt persisted data, starting empty: %v", j.storeKey, err)
		return
	}
	for _, line := range lines {
		c, err := ParseCookie(line, j.host)
		if err != nil {
			j.log.Warning("cookie jar %s: dropping cookie: %v", j.storeKey, err)
			continue
		}
		j.cookies = append(j.cookies, c)
	}
}

// SaveFromResponse merges each Set-Cookie value into the jar,
// replace-or-insert keyed by (name, domain, path), purges expired
// cookies and persists the result. Malformed values are dropped
// individually; a persist failure is logged and does not fail the merge.
func (j *Jar) SaveFromResponse(setCookies []string) {
	if len(setCookies) == 0 {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	for _, line := range setCookies {
		c, err := ParseCookie(line, j.host)
		if err != nil {
			j.log.Warning("cookie jar %s: dropping cookie: %v", j.storeKey, err)
			continue
		}
		j.upsert(c)
	}
	j.purgeExpired(time.Now())
	j.persist()
}

// SetCookie inserts or replaces a single cookie and persists the jar.
func (j *Jar) SetCookie(c Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if c.Domain == "" {
		c.Domain = j.host
	}
	if c.Path == "" {
		c.Path = "/"
	}
	j.upsert(c)
	j.purgeExpired(time.Now())
	j.persist()
}

// upsert replaces the cookie with the same (name, domain, path) in place,
// preserving insertion order, or appends a new one.
func (j *Jar) upsert(c Cookie) {
	for i := range j.cookies {
		if j.cookies[i].sameKey(c) {
			j.cookies[i] = c
			return
		}
	}
	j.cookies = append(j.cookies, c)
}

func (j *Jar) purgeExpired(now time.Time) {
	kept := j.cookies[:0]
	for _, c := range j.cookies {
		if !c.Expired(now) {
			kept = append(kept, c)
		}
	}
	j.cookies = kept
}

func (j *Jar) persist() {
	lines := make([]string, 0, len(j.cookies))
	for _, c := range j.cookies {
		lines = append(lines, c.String())
	}
	data, err := json.Marshal(lines)
	if err != nil {
		j.log.Warning("cookie jar %s: encode failed: %v", j.storeKey, err)
		return
	}
	if err := j.st.Set(j.storeKey, string(data)); err != nil {
		j.log.Warning("cookie jar %s: persist failed: %v", j.storeKey, err)
	}
}

// CookieString returns the Cookie request header value: name=value pairs
// of all non-expired cookies joined with "; " in insertion order.
func (j *Jar) CookieString() string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	parts := make([]string, 0, len(j.cookies))
	for _, c := range j.cookies {
		if c.Expired(now) {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// Cookies returns a copy of the current non-expired cookies.
func (j *Jar) Cookies() []Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	out := make([]Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		if !c.Expired(now) {
			out = append(out, c)
		}
	}
	return out
}

// Get returns the value of the first non-expired cookie with the given
// name, or "" when absent.
func (j *Jar) Get(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	for _, c := range j.cookies {
		if c.Name == name && !c.Expired(now) {
			return c.Value
		}
	}
	return ""
}

// Find returns the value of the first non-expired cookie whose name
// contains substr, or "" when absent. Proxy-issued tickets arrive under
// gateway-versioned names, so lookups match by fragment.
func (j *Jar) Find(substr string) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := time.Now()
	for _, c := range j.cookies {
		if strings.Contains(c.Name, substr) && !c.Expired(now) {
			return c.Value
		}
	}
	return ""
}

// Clear empties the jar and deletes the persisted entry. A storage
// failure is logged and does not resurrect the in-memory cookies.
func (j *Jar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cookies = nil
	if err := j.st.Delete(j.storeKey); err != nil {
		j.log.Warning("cookie jar %s: clear failed: %v", j.storeKey, err)
	}
}

// Len returns the number of cookies currently held, expired included.
func (j *Jar) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.cookies)
}

// String implements fmt.Stringer for debug logging: names only, cookie
// values are never logged.
func (j *Jar) String() string {
	j.mu.Lock()
	defer j.mu.Unlock()

	names := make([]string, 0, len(j.cookies))
	for _, c := range j.cookies {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("jar(%s%s: %s)", j.host, pathSuffix(j.storeKey), strings.Join(names, " "))
}

func pathSuffix(key string) string {
	if key == "" {
		return ""
	}
	return "/" + key
}
