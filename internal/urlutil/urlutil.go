// Package urlutil provides URL normalization and same-domain checks shared
// by the crawler and extractors.
package urlutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// EnsureScheme prefixes scheme-less input with https://.
func EnsureScheme(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return "https://" + raw
}

// Normalize lowercases the scheme and host, strips the fragment, and strips
// a trailing slash from non-root paths. Query parameters are preserved.
func Normalize(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("cannot normalize empty URL")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("normalize URL %q: %w", raw, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", errors.New("URL must have both scheme and host")
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""
	if parsed.Path == "" {
		parsed.Path = "/"
	}
	if parsed.Path != "/" && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	}
	return parsed.String(), nil
}

// SameDomain reports whether the URL's hostname equals baseHost or is a
// subdomain of it.
func SameDomain(raw, baseHost string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	base := strings.ToLower(baseHost)
	return host == base || strings.HasSuffix(host, "."+base)
}

// Hostname extracts the hostname (without port) from a URL string.
func Hostname(raw string) string {
	parsed, err := url.Parse(EnsureScheme(raw))
	if err != nil {
		return raw
	}
	return strings.ToLower(parsed.Hostname())
}

// Hash creates a SHA256 hash of a URL, used for safe Redis keys.
func Hash(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
