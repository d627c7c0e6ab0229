package util

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases name, drops accents and joins runs of letters and digits
// with single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range norm.NFKD.String(strings.ToLower(name)) {
		switch {
		case unicode.Is(unicode.Mn, r):
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}

const maxSlugAttempts = 100

var ErrSlugExhausted = errors.New("no free slug found")

// UniqueSlug returns the slug for name. When taken reports the plain slug in
// use, a base36 millisecond suffix is appended and bumped until taken reports
// a free one.
func UniqueSlug(name string, now time.Time, taken func(slug string) (bool, error)) (string, error) {
	slug := Slugify(name)
	if slug == "" {
		slug = "item"
	}
	used, err := taken(slug)
	if err != nil {
		return "", err
	}
	if !used {
		return slug, nil
	}

	ms := now.UnixMilli()
	for i := range int64(maxSlugAttempts) {
		candidate := slug + "-" + strconv.FormatInt(ms+i, 36)
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", ErrSlugExhausted
}
