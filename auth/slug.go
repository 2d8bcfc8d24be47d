package auth

import (
	"math/rand"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const slugSuffixLen = 8

var (
	whitespaceRun    = regexp.MustCompile(`\s+`)
	invalidSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	hyphenRun        = regexp.MustCompile(`-+`)
)

// newRandomID is swapped in tests to exercise the fallback suffix.
var newRandomID = uuid.NewRandom

// SlugBase turns a display name into the deterministic part of a slug:
// only [a-z0-9-], no leading or trailing hyphen, no repeated hyphens.
func SlugBase(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRun.ReplaceAllString(s, "-")
	s = invalidSlugChars.ReplaceAllString(s, "")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Slugify returns the base of name joined to a random 8 character suffix,
// or the suffix alone when name has no usable characters.
func Slugify(name string) string {
	suffix := slugSuffix()
	if base := SlugBase(name); base != "" {
		return base + "-" + suffix
	}
	return suffix
}

func slugSuffix() string {
	id, err := newRandomID()
	if err == nil {
		return id.String()[:slugSuffixLen]
	}
	return fallbackSuffix()
}

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func fallbackSuffix() string {
	b := make([]byte, slugSuffixLen)
	for i := range b {
		b[i] = base36[rand.Intn(len(base36))]
	}
	return string(b)
}
