// package normalize canonicalizes music entity names so results from
// different services can be matched against each other.
//
// It handles the usual cross-service disagreements: "The Beatles" vs
// "Beatles", "Björk" vs "Bjork", and "Come Together" vs "Come Together
// (Remastered 2009)".
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ignorePrefixes are leading articles dropped before comparison.
var ignorePrefixes = []string{"the ", "a ", "an "}

// stripSuffixes are edition tags removed from the end of a name. Matched
// after lowercasing and accent folding but before punctuation removal.
var stripSuffixes = []string{
	"(remastered)", "(remaster)", "[remastered]", "[remaster]",
	"(deluxe edition)", "(deluxe)", "[deluxe edition]", "[deluxe]",
	"(expanded edition)", "(expanded)", "[expanded edition]", "[expanded]",
	"(bonus track version)", "(bonus tracks)", "[bonus tracks]",
	"(anniversary edition)", "[anniversary edition]",
	"(special edition)", "[special edition]",
	"- remastered", "- remaster", "- deluxe", "- expanded",
	"(original motion picture soundtrack)", "(original soundtrack)",
	"(ost)", "[ost]",
}

// versionIndicators flag names that refer to a rerelease rather than a
// distinct recording.
var versionIndicators = []string{
	"remaster", "remastered", "remix", "remixed", "deluxe", "expanded",
	"edition", "version", "anniversary", "special", "bonus", "extended",
}

var (
	parenRe   = regexp.MustCompile(`\([^)]*\)`)
	bracketRe = regexp.MustCompile(`\[[^\]]*\]`)
	yearRe    = regexp.MustCompile(`\b(19|20)\d{2}\b`)

	versionAlt       = strings.Join(versionIndicators, "|")
	versionParenRe   = regexp.MustCompile(`(?i)\s*\([^)]*(?:` + versionAlt + `)[^)]*\)`)
	versionBracketRe = regexp.MustCompile(`(?i)\s*\[[^\]]*(?:` + versionAlt + `)[^\]]*\]`)
	versionDashRe    = regexp.MustCompile(`(?i)\s*[-–—]\s*(?:` + versionAlt + `).*$`)
)

// Normalize lowercases a name, folds accents, strips edition suffixes and a
// leading article, and drops punctuation.
//
//	Normalize("The Beatles") == "beatles"
//	Normalize("Sgt. Pepper's Lonely Hearts Club Band") == "sgt peppers lonely hearts club band"
func Normalize(name string) string {
	return normalize(name, false)
}

// NormalizeStrict additionally removes all parenthesized and bracketed
// content. Used for tracks, where "(feat. ...)" tags vary per service.
func NormalizeStrict(name string) string {
	return normalize(name, true)
}

func normalize(name string, strict bool) string {
	if name == "" {
		return ""
	}

	s := foldAccents(strings.ToLower(strings.TrimSpace(name)))

	for _, suffix := range stripSuffixes {
		if strings.HasSuffix(s, suffix) {
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
		}
	}

	if strict {
		s = parenRe.ReplaceAllString(s, "")
		s = bracketRe.ReplaceAllString(s, "")
	}

	for _, prefix := range ignorePrefixes {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// foldAccents decomposes accented characters and drops the combining marks,
// so "björk" becomes "bjork".
func foldAccents(s string) string {
	decomposed := norm.NFKD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExtractYear pulls the first four-digit year (1900-2099) out of a name.
//
//	ExtractYear("Abbey Road (1969)") == 1969, true
func ExtractYear(text string) (int, bool) {
	match := yearRe.FindString(text)
	if match == "" {
		return 0, false
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return year, true
}

// IsVersionVariant reports whether a name refers to a remaster, remix or
// other rerelease of an existing recording.
func IsVersionVariant(name string) bool {
	lower := strings.ToLower(name)
	for _, indicator := range versionIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// RemoveVersionInfo strips rerelease annotations while keeping the title.
//
//	RemoveVersionInfo("Come Together (Remastered 2009)") == "Come Together"
//	RemoveVersionInfo("Abbey Road [Deluxe Edition]") == "Abbey Road"
func RemoveVersionInfo(name string) string {
	s := versionParenRe.ReplaceAllString(name, "")
	s = versionBracketRe.ReplaceAllString(s, "")
	s = versionDashRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
