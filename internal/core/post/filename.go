package post

import (
	"strings"
	"time"
	"unicode"
)

const (
	fileDateLayout = "2006-01-02"
	untitledPrefix = "untitled-"
	idPrefixLen    = 8
)

// Slugify lowercases title, collapses whitespace runs into single hyphens
// and drops every character outside [a-z0-9-]. Surrounding whitespace is
// ignored.
func Slugify(title string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('-')
				inSpace = true
			}
			continue
		}
		inSpace = false
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// blankSlug reports whether slug carries no letters or digits.
func blankSlug(slug string) bool {
	return strings.Trim(slug, "-") == ""
}

// FileName returns "yyyy-MM-dd-<slug>.md" using the UTC calendar date of
// created. Titles that slug to nothing use "untitled-" plus a prefix of id,
// so untitled posts on the same day still get distinct names.
func FileName(title string, created time.Time, id string) string {
	date := created.UTC().Format(fileDateLayout)

	slug := Slugify(title)
	if blankSlug(slug) {
		slug = untitledPrefix + idToken(id)
	}
	return date + "-" + slug + ".md"
}

func idToken(id string) string {
	token := strings.ToLower(strings.ReplaceAll(id, "-", ""))
	if len(token) > idPrefixLen {
		token = token[:idPrefixLen]
	}
	if token == "" {
		token = "post"
	}
	return token
}
