package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var wsRe = regexp.MustCompile(`\s+`)
var nonSlug = regexp.MustCompile(`[^a-z0-9\-]+`)
var multiDash = regexp.MustCompile(`\-+`)

// FoldDiacritics strips accents so "Brésilien" and "Bresilien" normalize
// to the same token. Club and city names in the directory are French.
func FoldDiacritics(s string) string {
	t := norm.NFKD.String(s)
	b := make([]rune, 0, len(t))
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b = append(b, r)
	}
	return string(b)
}

// Slugify turns a display name into a lowercase ascii slug usable as a
// storage object path segment.
func Slugify(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	out := strings.ToLower(FoldDiacritics(name))
	out = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		if unicode.IsSpace(r) || r == '-' || r == '_' {
			return '-'
		}
		return -1
	}, out)
	out = nonSlug.ReplaceAllString(out, "-")
	out = multiDash.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}

// NormalizeToken lowercases and collapses whitespace for token matching.
func NormalizeToken(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	return wsRe.ReplaceAllString(s, " ")
}

// SearchTokens builds the deduplicated lowercase token set stored on each
// listing document: whole values plus individual words of length >= 2,
// each in both accented and folded form.
func SearchTokens(strs ...string) []string {
	tokens := make([]string, 0)
	seen := make(map[string]bool)
	add := func(s string) {
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		tokens = append(tokens, s)
	}
	for _, s := range strs {
		lower := NormalizeToken(s)
		if lower == "" {
			continue
		}
		add(lower)
		add(NormalizeToken(FoldDiacritics(lower)))
		for _, word := range strings.Fields(lower) {
			if len(word) < 2 {
				continue
			}
			add(word)
			add(NormalizeToken(FoldDiacritics(word)))
		}
	}
	return tokens
}

// TrimMax trims surrounding whitespace and caps the byte length, cutting
// on a rune boundary so the result stays valid UTF-8.
func TrimMax(s string, max int) string {
	s = strings.TrimSpace(s)
	if max < 0 {
		max = 0
	}
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
