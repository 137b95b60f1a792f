package format_test

import (
	"errors"
	"testing"
	"time"

	"github.com/kushiro/coerce/format"
)

func TestParseDateTimeLayouts(t *testing.T) {
	want := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	for _, in := range []string{
		"2026-08-28T10:30:00Z",
		"2026-08-28T10:30:00",
		"2026-08-28 10:30:00",
	} {
		got, err := format.ParseDateTime(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: got %v want %v", in, got, want)
		}
	}
	if _, err := format.ParseDateTime("28/08/2026"); err == nil {
		t.Fatalf("unknown layout must fail")
	}
	if _, err := format.ParseDateTime("   "); err == nil {
		t.Fatalf("blank input must fail")
	}
}

func TestDateTimeCanonical(t *testing.T) {
	got, err := format.DateTime("2026-08-28 10:30:00")
	if err != nil {
		t.Fatalf("DateTime: %v", err)
	}
	if got != "2026-08-28T10:30:00Z" {
		t.Fatalf("canonical form: %q", got)
	}
}

func TestEmail(t *testing.T) {
	if _, err := format.Email("ada@example.com"); err != nil {
		t.Fatalf("bare address: %v", err)
	}
	if _, err := format.Email("Ada <ada@example.com>"); err == nil {
		t.Fatalf("display names are rejected")
	}
	if _, err := format.Email("nope"); err == nil {
		t.Fatalf("non-address rejected")
	}
}

func TestAddressFamilies(t *testing.T) {
	if _, err := format.IPv4("192.168.0.1"); err != nil {
		t.Fatalf("ipv4: %v", err)
	}
	if _, err := format.IPv4("::1"); err == nil {
		t.Fatalf("ipv6 input is not ipv4")
	}
	if _, err := format.IPv6("2001:db8::1"); err != nil {
		t.Fatalf("ipv6: %v", err)
	}
	if _, err := format.IPv6("::ffff:192.168.0.1"); err == nil {
		t.Fatalf("4-in-6 mapped addresses are not bare ipv6")
	}
	if _, err := format.IP("192.168.0.1"); err != nil {
		t.Fatalf("ip accepts v4: %v", err)
	}
	if _, err := format.IP("2001:db8::1"); err != nil {
		t.Fatalf("ip accepts v6: %v", err)
	}
}

func TestURI(t *testing.T) {
	if _, err := format.URI("https://example.com/a?b=c"); err != nil {
		t.Fatalf("uri: %v", err)
	}
	if _, err := format.URI("/relative/path"); err == nil {
		t.Fatalf("relative references are rejected")
	}
}

func TestRegister(t *testing.T) {
	format.Register("upper", func(v string) (string, error) {
		if v == "" {
			return "", errors.New("empty")
		}
		return v, nil
	})
	chk, ok := format.Lookup("upper")
	if !ok {
		t.Fatalf("registered checker not found")
	}
	if _, err := chk("x"); err != nil {
		t.Fatalf("checker: %v", err)
	}
	if _, ok := format.Lookup("never-registered"); ok {
		t.Fatalf("unknown names must miss")
	}
}
