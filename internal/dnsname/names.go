package dnsname

import "strings"

// ToFQDN converts a relative record name to a fully qualified name within zone.
//
// Rules:
// - zone = "example.com"
// - name = "@"    -> "example.com"
// - name = "www"  -> "www.example.com"
// - name = "a.b"  -> "a.b.example.com"
// - name = "*"    -> "*.example.com"
//
// If name already ends with the zone it is returned as-is.
func ToFQDN(name, zone string) string {
	zone = strings.TrimSuffix(strings.TrimSpace(zone), ".")
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")

	if name == "" || name == "@" {
		return zone
	}
	if name == zone || strings.HasSuffix(name, "."+zone) {
		return name
	}
	return name + "." + zone
}

// Relative converts any name format to the relative form stored locally.
//
// Rules:
// - zone = "example.com"
// - name = "example.com"      -> "@"
// - name = "www.example.com"  -> "www"
// - name = "www.example.com." -> "www" (trailing dot removed)
// - name = "abc"              -> "abc"
//
// dns_records.name always stores relative names; the provider returns FQDNs.
func Relative(name, zone string) string {
	zone = strings.TrimSuffix(strings.TrimSpace(zone), ".")
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")

	if name == "" || name == zone {
		return "@"
	}
	if strings.HasSuffix(name, "."+zone) {
		rel := strings.TrimSuffix(name, "."+zone)
		if rel == "" {
			return "@"
		}
		return rel
	}
	return name
}

// EqualFold compares two zone names case-insensitively ignoring a trailing dot
func EqualFold(a, b string) bool {
	a = strings.TrimSuffix(strings.TrimSpace(a), ".")
	b = strings.TrimSuffix(strings.TrimSpace(b), ".")
	return strings.EqualFold(a, b)
}
