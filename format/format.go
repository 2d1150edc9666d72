// Package format classifies string values against an ordered set of
// semantic format patterns. Patterns run most-specific-first so a full
// timestamp is never also reported as a bare date, and a jwt is never
// reported as base64.
package format

import (
	"net"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	reDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[Tt ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|z|[+-]\d{2}:\d{2})?$`)
	reDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reTime     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)
	reEmail    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reURI      = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://\S+$`)
	reJWT      = regexp.MustCompile(`^[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]{4,}\.[A-Za-z0-9_-]*$`)
	reSemver   = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?$`)
	reMime     = regexp.MustCompile(`^(application|audio|font|image|message|model|multipart|text|video)/[a-z0-9][a-z0-9!#$&^_.+-]*$`)
	reCurrency = regexp.MustCompile(`^[A-Z]{3}$`)
	reCountry  = regexp.MustCompile(`^[A-Z]{2}$`)
	reLanguage = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)
	reHostname = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
	reBase64   = regexp.MustCompile(`^[A-Za-z0-9+/]+={0,2}$`)
	reSlug     = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)+$`)
	rePhone    = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{6,14}[0-9]$`)
)

type pattern struct {
	name  string
	match func(s string) bool
}

// ordered most-specific-first; Detect stops at the first hit
var patterns = []pattern{
	{"date-time", reDateTime.MatchString},
	{"date", reDate.MatchString},
	{"time", reTime.MatchString},
	{"uuid", matchUUID},
	{"email", reEmail.MatchString},
	{"uri", reURI.MatchString},
	{"jwt", reJWT.MatchString},
	{"ipv4", matchIPv4},
	{"ipv6", matchIPv6},
	{"semver", reSemver.MatchString},
	{"mime-type", reMime.MatchString},
	{"currency-code", reCurrency.MatchString},
	{"country-code", reCountry.MatchString},
	{"language-code", reLanguage.MatchString},
	{"hostname", reHostname.MatchString},
	{"base64", matchBase64},
	{"slug", matchSlug},
	{"phone", rePhone.MatchString},
}

func matchUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func matchIPv4(s string) bool {
	return strings.Count(s, ".") == 3 && net.ParseIP(s) != nil
}

func matchIPv6(s string) bool {
	return strings.Contains(s, ":") && net.ParseIP(s) != nil
}

// matchBase64 wants more than the raw alphabet: short or all-letter
// strings are overwhelmingly ordinary words, not encoded data.
func matchBase64(s string) bool {
	if len(s) < 12 || len(s)%4 != 0 {
		return false
	}
	if !reBase64.MatchString(s) {
		return false
	}
	return strings.ContainsAny(s, "0123456789+/=")
}

// matchSlug rejects all-digit candidates like "1234-56", which are ids
// or ranges rather than slugs.
func matchSlug(s string) bool {
	return reSlug.MatchString(s) && strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz")
}

// Detect returns the name of the first matching format pattern.
func Detect(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	for _, p := range patterns {
		if p.match(s) {
			return p.name, true
		}
	}
	return "", false
}

// Names lists the recognized format names in evaluation order.
func Names() []string {
	names := make([]string, len(patterns))
	for i, p := range patterns {
		names[i] = p.name
	}
	return names
}
