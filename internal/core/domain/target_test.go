package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTarget_Domains(t *testing.T) {
	cases := []struct{ in, normalized string }{
		{"example.com", "example.com"},
		{"Example.COM", "example.com"},
		{"  sub.example.co.uk  ", "sub.example.co.uk"},
		{"example.com.", "example.com"},
	}
	for _, c := range cases {
		target, err := ParseTarget(c.in)
		if err != nil {
			t.Fatalf("ParseTarget(%q) unexpected error: %v", c.in, err)
		}
		if target.Kind != TargetKindDomain {
			t.Errorf("ParseTarget(%q).Kind = %s, want domain", c.in, target.Kind)
		}
		if target.Normalized != c.normalized {
			t.Errorf("ParseTarget(%q).Normalized = %q, want %q", c.in, target.Normalized, c.normalized)
		}
		if target.Raw != c.in {
			t.Errorf("ParseTarget(%q).Raw should preserve the original input", c.in)
		}
	}
}

func TestParseTarget_IPv4(t *testing.T) {
	target, err := ParseTarget("8.8.8.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Kind != TargetKindIPv4 {
		t.Errorf("Kind = %s, want ipv4", target.Kind)
	}
	if target.Normalized != "8.8.8.8" {
		t.Errorf("Normalized = %q", target.Normalized)
	}
}

func TestParseTarget_IPv6(t *testing.T) {
	target, err := ParseTarget("2001:0db8::0001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Kind != TargetKindIPv6 {
		t.Errorf("Kind = %s, want ipv6", target.Kind)
	}
	if target.Normalized != "2001:db8::1" {
		t.Errorf("Normalized = %q, want canonical form", target.Normalized)
	}
}

func TestParseTarget_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		reason ValidationReason
	}{
		{"empty", "", ReasonEmpty},
		{"whitespace", "   ", ReasonEmpty},
		{"too long", strings.Repeat("a", 254), ReasonTooLong},
		{"malformed ipv4", "256.1.1.1", ReasonNotAnIP},
		{"truncated ipv4", "1.2.3", ReasonNotAnIP},
		{"malformed ipv6", "gggg::1", ReasonNotAnIP},
		{"bad domain label", "-example.com", ReasonNotADomain},
		{"underscore", "exa_mple.com", ReasonNotADomain},
		{"single label", "localhost", ReasonNotADomain},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseTarget(c.in)
			if err == nil {
				t.Fatalf("ParseTarget(%q) should fail", c.in)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error should be *ValidationError, got %T", err)
			}
			if verr.Reason != c.reason {
				t.Errorf("reason = %s, want %s", verr.Reason, c.reason)
			}
		})
	}
}

func TestTargetKindIsIP(t *testing.T) {
	if TargetKindDomain.IsIP() {
		t.Error("domain kind should not be IP")
	}
	if !TargetKindIPv4.IsIP() || !TargetKindIPv6.IsIP() {
		t.Error("ip kinds should report IsIP")
	}
}
