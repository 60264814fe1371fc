package intent

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Hangul ends a link: Korean particles attach directly to it ("…pdf를").
	urlPattern     = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"'\x60\p{Hangul}]+`)
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// trailing characters that usually belong to the sentence, not the link
const urlTrailCutset = ".,;:!?'\"…"

// closing brackets are trimmed only when they have no opener in the link
var urlClosers = map[rune]rune{')': '(', ']': '[', '}': '{'}

var youtubeHosts = map[string]bool{
	"youtube.com":              true,
	"www.youtube.com":          true,
	"m.youtube.com":            true,
	"music.youtube.com":        true,
	"youtube-nocookie.com":     true,
	"www.youtube-nocookie.com": true,
	"youtu.be":                 true,
	"www.youtu.be":             true,
}

// ExtractURLs returns the http(s) links in text, in order, without duplicates.
func ExtractURLs(text string) []string {
	matches := urlPattern.FindAllString(text, -1)
	out := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		m = trimURLTrail(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// trimURLTrail strips sentence punctuation and unbalanced closing brackets
// from the end of a matched link.
func trimURLTrail(m string) string {
	for m != "" {
		r, size := utf8.DecodeLastRuneInString(m)
		if strings.ContainsRune(urlTrailCutset, r) {
			m = m[:len(m)-size]
			continue
		}
		opener, ok := urlClosers[r]
		if !ok || strings.Count(m, string(opener)) >= strings.Count(m, string(r)) {
			return m
		}
		m = m[:len(m)-size]
	}
	return m
}

// NormalizeURL canonicalises a link for use as a cache key: lowercase scheme
// and host, no fragment, no trailing slash on an empty path.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String()
}

// IsPDFURL reports whether the link path ends in .pdf or contains /pdf/.
func IsPDFURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	return strings.HasSuffix(p, ".pdf") || strings.Contains(p, "/pdf/")
}

// IsYoutubeURL reports whether the link points at a YouTube host, whether or
// not a video id can be read from it.
func IsYoutubeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return youtubeHosts[strings.ToLower(u.Hostname())]
}

// ExtractVideoID reads the 11 character video id from the supported YouTube
// shapes: watch?v=, embed/, v/, youtu.be/ and shorts/. ok is false when the
// link is not YouTube or carries no valid id.
func ExtractVideoID(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	if !youtubeHosts[host] {
		return "", false
	}

	var id string
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		id = segments[0]
	case len(segments) >= 1 && segments[0] == "watch":
		id = u.Query().Get("v")
	case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "v" || segments[0] == "shorts"):
		id = segments[1]
	}
	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}
