package domainutil

import (
	"fmt"
	"net"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/publicsuffix"
)

// Normalize canonicalizes a zone name: lowercase, trimmed, no trailing dot,
// no port. IP addresses and names without a dot are rejected.
func Normalize(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("domain must not be empty")
	}

	host = strings.ToLower(host)
	host = strings.TrimSuffix(host, ".")

	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" {
		return "", fmt.Errorf("domain must not be empty after normalization")
	}

	if net.ParseIP(host) != nil {
		return "", fmt.Errorf("IP address is not allowed as domain: %s", host)
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		inner := host[1 : len(host)-1]
		if net.ParseIP(inner) != nil {
			return "", fmt.Errorf("IP address is not allowed as domain: %s", host)
		}
	}

	for i := 0; i < len(host); {
		r, size := utf8.DecodeRuneInString(host[i:])
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-') {
			return "", fmt.Errorf("domain contains invalid character: %c in %s", r, host)
		}
		i += size
	}

	if strings.HasPrefix(host, ".") || strings.HasPrefix(host, "-") {
		return "", fmt.Errorf("domain must not start with '.' or '-': %s", host)
	}
	if !strings.Contains(host, ".") {
		return "", fmt.Errorf("domain must contain at least one dot: %s", host)
	}

	return host, nil
}

// EffectiveApex computes the registrable domain (eTLD+1) via the public
// suffix list. A managed zone must be an apex: www.example.com is not a
// zone, example.com is.
func EffectiveApex(domain string) (string, error) {
	normalized, err := Normalize(domain)
	if err != nil {
		return "", err
	}
	apex, err := publicsuffix.EffectiveTLDPlusOne(normalized)
	if err != nil {
		return "", fmt.Errorf("PSL lookup failed for %s: %w", domain, err)
	}
	return apex, nil
}

// ValidateZoneName checks that name is a normalized registrable apex and
// returns the canonical form.
func ValidateZoneName(name string) (string, error) {
	normalized, err := Normalize(name)
	if err != nil {
		return "", err
	}
	apex, err := EffectiveApex(normalized)
	if err != nil {
		return "", err
	}
	if apex != normalized {
		return "", fmt.Errorf("%s is not a zone apex (did you mean %s?)", normalized, apex)
	}
	return normalized, nil
}
