// Package identity derives the stable identity of a job posting from its
// submitted URL: the canonical URL, the platform-assigned job ID, and the
// site the posting was found on.
package identity

import (
	"net/url"
)

// PlatformIDParam is the query parameter job boards use to carry the
// platform-assigned job identifier.
const PlatformIDParam = "currentJobId"

// Identity is the stable identity tuple of a job posting. PlatformID is
// empty when the URL carries no discoverable identifier; that is a normal
// state, not an error.
type Identity struct {
	CanonicalURL string
	PlatformID   string
	SourceSite   string
}

// PlatformID extracts the platform-assigned job ID from the URL's query
// string. Returns "" when the parameter is absent or the URL is malformed.
func PlatformID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	values, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return ""
	}
	if ids, ok := values[PlatformIDParam]; ok && len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// SourceSite returns the network location (host, optionally with port) of
// the URL, unmodified. Returns "" for unparseable URLs.
func SourceSite(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// Canonicalize normalizes a job posting URL. When the platform ID parameter
// is present, the query string is rewritten to contain only that parameter,
// so two URLs differing in tracking parameters but sharing a job ID
// canonicalize identically. URLs without the parameter pass through
// unchanged. Idempotent.
func Canonicalize(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	values, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return rawURL
	}
	ids, ok := values[PlatformIDParam]
	if !ok || len(ids) == 0 {
		return rawURL
	}
	cleaned := url.Values{PlatformIDParam: []string{ids[0]}}
	parsed.RawQuery = cleaned.Encode()
	return parsed.String()
}

// Resolve derives the full identity tuple from a raw URL. Pure function of
// its input; never fails, absent fields come back empty.
func Resolve(rawURL string) Identity {
	return Identity{
		CanonicalURL: Canonicalize(rawURL),
		PlatformID:   PlatformID(rawURL),
		SourceSite:   SourceSite(rawURL),
	}
}
