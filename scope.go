package doclens

import (
	"net/url"
	"path"
	"strings"
)

// BlockedExtensions lists file extensions that are never crawled.
var BlockedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".pdf", ".zip", ".svg"}

// Scope confines a crawl to one hostname and path prefix.
type Scope struct {
	Host       string
	PathPrefix string
}

// NewScope derives the crawl scope from a seed URL. The path prefix always
// ends with a slash.
func NewScope(seedURL string) (Scope, error) {
	u, err := url.Parse(seedURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return Scope{}, Errorf(EINVALID, "invalid seed URL %q", seedURL)
	}
	prefix := u.Path
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return Scope{Host: u.Hostname(), PathPrefix: prefix}, nil
}

// Contains reports whether the URL belongs to the scope and is not a
// blocked file type.
func (s Scope) Contains(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !strings.EqualFold(u.Hostname(), s.Host) {
		return false
	}
	if !strings.HasPrefix(u.Path, s.PathPrefix) {
		return false
	}
	return !HasBlockedExtension(u.Path)
}

// HasBlockedExtension reports whether the path ends in a blocked extension.
func HasBlockedExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, blocked := range BlockedExtensions {
		if ext == blocked {
			return true
		}
	}
	return false
}

// NormalizeURL strips the fragment and query string, lowercases the host
// and gives an absolute URL without a path the root path, so
// https://example.com and https://example.com/ share one identity. The
// result is the identity used for deduplication.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Host = strings.ToLower(u.Host)
	if u.Host != "" && u.Path == "" && u.Opaque == "" {
		u.Path = "/"
		u.RawPath = ""
	}
	u.Fragment = ""
	u.RawFragment = ""
	u.RawQuery = ""
	u.ForceQuery = false
	return u.String(), nil
}

// NormalizeDomain reduces a URL or bare host to a lowercase hostname.
// Returns an empty string when no hostname can be found.
func NormalizeDomain(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}
	u, err := url.Parse(input)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
