package x509util

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// SubjectAltNames groups SAN entries by their X.509 GeneralName kind.
type SubjectAltNames struct {
	DNSNames       []string
	EmailAddresses []string
	IPAddresses    []net.IP
	URIs           []*url.URL
}

// Len returns the total number of entries.
func (s SubjectAltNames) Len() int {
	return len(s.DNSNames) + len(s.EmailAddresses) + len(s.IPAddresses) + len(s.URIs)
}

// Strings flattens the entries back to their textual form.
func (s SubjectAltNames) Strings() []string {
	out := make([]string, 0, s.Len())
	out = append(out, s.DNSNames...)
	for _, ip := range s.IPAddresses {
		out = append(out, ip.String())
	}
	out = append(out, s.EmailAddresses...)
	for _, u := range s.URIs {
		out = append(out, u.String())
	}
	return out
}

// ParseSANs classifies and validates each entry. An entry that parses as
// an IP is an IP SAN, one containing "://" is a URI, one containing "@" is
// an e-mail address, anything else must be a valid DNS name.
// Duplicates are dropped after normalization (DNS case and trailing dot,
// IP textual form); order within each kind is preserved.
func ParseSANs(entries []string) (SubjectAltNames, error) {
	var sans SubjectAltNames
	seen := make(map[string]bool, len(entries))
	first := func(key string) bool {
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	}

	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			return SubjectAltNames{}, fmt.Errorf("empty subject alternative name")
		}

		if ip := net.ParseIP(entry); ip != nil {
			if first("ip:" + ip.String()) {
				sans.IPAddresses = append(sans.IPAddresses, ip)
			}
			continue
		}

		switch {
		case strings.Contains(entry, "://"):
			u, err := url.Parse(entry)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return SubjectAltNames{}, fmt.Errorf("invalid URI %q: scheme and host are required", entry)
			}
			if first("uri:" + u.String()) {
				sans.URIs = append(sans.URIs, u)
			}

		case strings.Contains(entry, "@"):
			addr, err := mail.ParseAddress(entry)
			if err != nil || addr.Address != entry {
				return SubjectAltNames{}, fmt.Errorf("invalid email address %q", entry)
			}
			if first("email:" + entry) {
				sans.EmailAddresses = append(sans.EmailAddresses, entry)
			}

		default:
			if err := ValidateDNSName(entry); err != nil {
				return SubjectAltNames{}, err
			}
			if err := ValidateWildcard(entry); err != nil {
				return SubjectAltNames{}, err
			}
			name := NormalizeDNSName(entry)
			if first("dns:" + name) {
				sans.DNSNames = append(sans.DNSNames, name)
			}
		}
	}

	return sans, nil
}

// NormalizeDNSName lowercases a DNS name and strips the trailing root dot.
func NormalizeDNSName(name string) string {
	return strings.TrimSuffix(strings.ToLower(name), ".")
}

// ValidateDNSName validates a DNS name according to RFC 1035/1123.
// It checks:
//   - Total length ≤ 253 characters
//   - Each label ≤ 63 characters
//   - No empty labels (double dots)
//   - Valid characters (alphanumeric, hyphen)
//   - Labels don't start or end with hyphen
//
// Single-label names such as "localhost" are accepted. A "*" label is only
// accepted in leftmost position; see ValidateWildcard for the rest.
func ValidateDNSName(name string) error {
	if name == "" {
		return fmt.Errorf("DNS name cannot be empty")
	}

	name = NormalizeDNSName(name)

	if len(name) > 253 {
		return fmt.Errorf("DNS name too long: %d > 253 characters", len(name))
	}

	for i, label := range strings.Split(name, ".") {
		if label == "" {
			return fmt.Errorf("empty label in DNS name %q (double dot or leading dot)", name)
		}

		if len(label) > 63 {
			return fmt.Errorf("label too long: %q (%d > 63 characters)", label, len(label))
		}

		if label == "*" {
			if i != 0 {
				return fmt.Errorf("wildcard (*) must be leftmost label: %q", name)
			}
			continue
		}

		if !isValidDNSLabel(label) {
			return fmt.Errorf("invalid DNS label %q in %q: must contain only alphanumeric characters and hyphens, and not start or end with a hyphen", label, name)
		}
	}

	return nil
}

// isValidDNSLabel checks if a DNS label is valid per RFC 1123.
func isValidDNSLabel(label string) bool {
	if len(label) == 0 {
		return false
	}

	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}

	for _, c := range label {
		isLower := c >= 'a' && c <= 'z'
		isUpper := c >= 'A' && c <= 'Z'
		isDigit := c >= '0' && c <= '9'
		if !isLower && !isUpper && !isDigit && c != '-' {
			return false
		}
	}

	return true
}

// ValidateWildcard checks a wildcard DNS name against RFC 6125 rules.
// Names without a wildcard are accepted unchanged.
func ValidateWildcard(name string) error {
	name = NormalizeDNSName(name)
	labels := strings.Split(name, ".")

	wildcardPos := -1
	for i, label := range labels {
		if label == "*" {
			if wildcardPos >= 0 {
				return fmt.Errorf("multiple wildcards not allowed: %q", name)
			}
			wildcardPos = i
		}
	}

	if wildcardPos < 0 {
		return nil
	}

	if wildcardPos != 0 {
		return fmt.Errorf("wildcard must be leftmost label: %q", name)
	}

	// *.domain.tld at minimum
	if len(labels) < 3 {
		return fmt.Errorf("wildcard requires at least 3 labels (*.domain.tld): %q has only %d", name, len(labels))
	}

	// *.co.uk has baseDomain "co.uk", which is itself a public suffix
	baseDomain := strings.Join(labels[1:], ".")
	suffix, icann := publicsuffix.PublicSuffix(baseDomain)
	if icann && suffix == baseDomain {
		return fmt.Errorf("wildcard on public suffix not allowed: %q (public suffix: %q)", name, suffix)
	}

	return nil
}
