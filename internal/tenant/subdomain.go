// Package tenant resolves the organisation addressed by a request and owns the
// subdomain naming rules shared with registration.
package tenant

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrMalformed = errors.New("malformed subdomain")
	ErrReserved  = errors.New("reserved subdomain")
)

// BuiltinReserved are never handed out to a tenant
var BuiltinReserved = []string{
	"admin", "www", "api", "app", "demo", "test", "mail", "smtp", "ftp",
	"support", "help", "status", "static", "assets", "cdn", "blog", "docs",
	"dashboard", "super-admin", "superadmin", "root", "system", "billing",
	"login", "register", "staging", "dev",
}

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,61})[a-z0-9]$`)

// Rules validates subdomains against the format and the reserved list
type Rules struct {
	reserved map[string]struct{}
}

// NewRules returns the built-in rules plus extra reserved words
func NewRules(extra ...string) *Rules {
	r := &Rules{reserved: make(map[string]struct{}, len(BuiltinReserved)+len(extra))}
	for _, w := range BuiltinReserved {
		r.reserved[w] = struct{}{}
	}
	for _, w := range extra {
		if w = Normalize(w); w != "" {
			r.reserved[w] = struct{}{}
		}
	}
	return r
}

// Normalize trims and lower-cases a subdomain
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// WellFormed reports whether s is 3-63 chars of [a-z0-9-] without a leading or
// trailing hyphen. s must already be normalized.
func WellFormed(s string) bool {
	return subdomainPattern.MatchString(s)
}

// IsReserved reports whether s is on the reserved list
func (r *Rules) IsReserved(s string) bool {
	_, ok := r.reserved[Normalize(s)]
	return ok
}

// Check normalizes s and returns it, or ErrReserved / ErrMalformed.
// Reserved words are reported first so that "demo" is reserved, not malformed.
func (r *Rules) Check(s string) (string, error) {
	s = Normalize(s)
	if r.IsReserved(s) {
		return s, ErrReserved
	}
	if !WellFormed(s) {
		return s, ErrMalformed
	}
	return s, nil
}
