package validator

import (
	"strings"
	"testing"
)

func TestIsDomain(t *testing.T) {
	valid := []string{
		"example.com",
		"sub.example.com",
		"a.b.c.d.example.co.uk",
		"xn--bcher-kva.example",
		"123.example.com",
		"my-host.example.org",
	}
	for _, d := range valid {
		if !IsDomain(d) {
			t.Errorf("IsDomain(%q) = false, want true", d)
		}
	}

	invalid := []string{
		"",
		"example",                        // single label
		"-example.com",                   // leading hyphen
		"example-.com",                   // trailing hyphen
		"exa_mple.com",                   // underscore
		"example..com",                   // empty label
		"192.168.1.1",                    // IP, not a domain
		"example.123",                    // numeric TLD
		strings.Repeat("a", 64) + ".com", // label > 63
		strings.Repeat("abcdefgh.", 32) + "example.com", // total > 253
	}
	for _, d := range invalid {
		if IsDomain(d) {
			t.Errorf("IsDomain(%q) = true, want false", d)
		}
	}
}

func TestIsIPv4(t *testing.T) {
	valid := []string{"192.168.1.1", "8.8.8.8", "0.0.0.0", "255.255.255.255"}
	for _, ip := range valid {
		if !IsIPv4(ip) {
			t.Errorf("IsIPv4(%q) = false, want true", ip)
		}
	}

	invalid := []string{"", "256.1.1.1", "1.2.3", "::1", "::ffff:8.8.8.8", "example.com"}
	for _, ip := range invalid {
		if IsIPv4(ip) {
			t.Errorf("IsIPv4(%q) = true, want false", ip)
		}
	}
}

func TestIsIPv6(t *testing.T) {
	valid := []string{"::1", "2001:db8::1", "fe80::1", "::", "::ffff:8.8.8.8"}
	for _, ip := range valid {
		if !IsIPv6(ip) {
			t.Errorf("IsIPv6(%q) = false, want true", ip)
		}
	}

	invalid := []string{"", "8.8.8.8", "gggg::1", "example.com"}
	for _, ip := range invalid {
		if IsIPv6(ip) {
			t.Errorf("IsIPv6(%q) = true, want false", ip)
		}
	}
}

func TestNormalizeDomain(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Example.COM", "example.com"},
		{"  example.com  ", "example.com"},
		{"example.com.", "example.com"},
	}
	for _, c := range cases {
		if got := NormalizeDomain(c.in); got != c.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeIP(t *testing.T) {
	cases := []struct{ in, want string }{
		{"192.168.001.001", ""}, // leading zeros rejected by strict parse
		{"192.168.1.1", "192.168.1.1"},
		{"2001:0db8:0000:0000:0000:0000:0000:0001", "2001:db8::1"},
		{"bogus", ""},
	}
	for _, c := range cases {
		if got := NormalizeIP(c.in); got != c.want {
			t.Errorf("NormalizeIP(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
