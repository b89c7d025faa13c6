// internal/content/reference.go
package content

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

// CanonicalHost is the host every reference and account is rewritten to.
const CanonicalHost = "x.com"

// ErrNotPost marks a locator that does not address a single post, such as
// a media subview, an analytics page, or a foreign host.
var ErrNotPost = errors.New("not a post locator")

// hosts serving the same content as CanonicalHost.
var aliasHosts = map[string]bool{
	"x.com":              true,
	"mobile.x.com":       true,
	"twitter.com":        true,
	"mobile.twitter.com": true,
}

// subviewMarkers identify links into a post's media viewer or stats page.
var subviewMarkers = []string{"/photo/", "/video/", "/analytics"}

const normalizeFlags = purell.FlagsUsuallySafeGreedy |
	purell.FlagRemoveFragment |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveWWW

var baseURL = &url.URL{Scheme: "https", Host: CanonicalHost, Path: "/"}

// Reference is the canonical locator of one post:
// https://x.com/<handle>/status/<id>, handle lowercased.
type Reference string

func (r Reference) String() string { return string(r) }

// ID returns the numeric post identifier.
func (r Reference) ID() string {
	s := string(r)
	return s[strings.LastIndex(s, "/")+1:]
}

// Handle returns the lowercased author handle.
func (r Reference) Handle() string {
	rest := strings.TrimPrefix(string(r), "https://"+CanonicalHost+"/")
	if i := strings.Index(rest, "/"); i >= 0 {
		return rest[:i]
	}
	return rest
}

// normalize resolves raw against the canonical site and applies the
// generic URL normalizations. Host aliases are folded to CanonicalHost.
func normalize(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty locator", ErrNotPost)
	}
	// "x.com/..." without a scheme would otherwise resolve as a path.
	if !strings.Contains(raw, "://") && strings.Contains(strings.SplitN(raw, "/", 2)[0], ".") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPost, err)
	}
	resolved := baseURL.ResolveReference(parsed)

	clean, err := url.Parse(purell.NormalizeURL(resolved, normalizeFlags))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPost, err)
	}
	if clean.Scheme != "https" && clean.Scheme != "http" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrNotPost, clean.Scheme)
	}
	host := strings.ToLower(clean.Hostname())
	if !aliasHosts[host] {
		return nil, fmt.Errorf("%w: foreign host %q", ErrNotPost, host)
	}
	clean.Scheme = "https"
	clean.Host = CanonicalHost
	clean.RawQuery = ""
	clean.Fragment = ""
	return clean, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validHandle(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// Canonicalize turns a raw post link (absolute or relative) into a
// Reference. Query strings, fragments, host aliases, case and trailing
// slashes do not affect the result, and trailing post subpaths such as
// /likes are dropped. Links into media subviews or analytics are
// rejected with ErrNotPost. Canonicalize(Canonicalize(x)) == Canonicalize(x).
func Canonicalize(raw string) (Reference, error) {
	u, err := normalize(raw)
	if err != nil {
		return "", err
	}

	segments := strings.Split(strings.Trim(strings.ToLower(u.Path), "/"), "/")
	if len(segments) < 3 || segments[1] != "status" || !isDigits(segments[2]) || !validHandle(segments[0]) {
		return "", fmt.Errorf("%w: %s has no /<handle>/status/<id> path", ErrNotPost, raw)
	}

	// Only the part after the status ID can name a subview; handles such
	// as "photo" or "analyticsdesk" are ordinary accounts.
	tail := "/" + strings.Join(segments[3:], "/") + "/"
	for _, marker := range subviewMarkers {
		if strings.Contains(tail, marker) {
			return "", fmt.Errorf("%w: %s links a subview", ErrNotPost, raw)
		}
	}

	return Reference(fmt.Sprintf("https://%s/%s/status/%s", CanonicalHost, segments[0], segments[2])), nil
}
