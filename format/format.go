// Package format hosts the checkers behind the "format" schema keyword.
// Checkers validate a string and may rewrite it into canonical form (the
// date-time checker re-renders parsed input as RFC 3339). The registry is
// extensible; unknown names are the caller's concern.
package format

import (
	"errors"
	"net/mail"
	"net/netip"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Checker validates value and returns its (possibly canonicalized) form.
type Checker func(value string) (string, error)

var (
	mu       sync.RWMutex
	registry = map[string]Checker{
		"date-time": DateTime,
		"email":     Email,
		"ipv4":      IPv4,
		"ipv6":      IPv6,
		"ip":        IP,
		"uri":       URI,
	}
)

// Register installs or replaces a named checker.
func Register(name string, chk Checker) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = chk
}

// Lookup returns the checker registered under name.
func Lookup(name string) (Checker, bool) {
	mu.RLock()
	defer mu.RUnlock()
	chk, ok := registry[name]
	return chk, ok
}

// dateLayouts are tried in order when parsing date-ish strings. RFC 3339
// first; the laxer layouts accept common API inputs.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime parses a date-ish string using the known layouts.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("format: empty date-time")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("format: unrecognized date-time " + s)
}

// DateTime parses and re-renders the value canonically as RFC 3339.
func DateTime(value string) (string, error) {
	t, err := ParseDateTime(value)
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339), nil
}

// Email validates an RFC 5322 address; display names are rejected.
func Email(value string) (string, error) {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return "", err
	}
	if addr.Address != value {
		return "", errors.New("format: not a bare email address")
	}
	return value, nil
}

// IPv4 validates a dotted-quad address.
func IPv4(value string) (string, error) {
	addr, err := netip.ParseAddr(value)
	if err != nil || !addr.Is4() {
		return "", errors.New("format: not an IPv4 address")
	}
	return value, nil
}

// IPv6 validates an IPv6 address.
func IPv6(value string) (string, error) {
	addr, err := netip.ParseAddr(value)
	if err != nil || !addr.Is6() || addr.Is4In6() {
		return "", errors.New("format: not an IPv6 address")
	}
	return value, nil
}

// IP validates either address family.
func IP(value string) (string, error) {
	if _, err := netip.ParseAddr(value); err != nil {
		return "", errors.New("format: not an IP address")
	}
	return value, nil
}

// URI validates an absolute URI.
func URI(value string) (string, error) {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" {
		return "", errors.New("format: not an absolute URI")
	}
	return value, nil
}
