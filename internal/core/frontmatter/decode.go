package frontmatter

import "strings"

// Decode reads a header block in the line-oriented "key: value" format.
//
// The first colon on a line separates key from value and both are trimmed.
// Recognised keys are title, date, draft, tags (alias tag), categories
// (alias category) and sha. Lists are comma separated. Every other line,
// including unknown keys and lines without a colon, is kept verbatim in
// Extra with leading and trailing blank lines dropped. Decode never fails;
// fields it cannot read keep their zero value.
func Decode(header string) Metadata {
	var m Metadata
	for _, line := range strings.Split(normalize(header), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found || !knownKey(strings.TrimSpace(key)) {
			if len(m.Extra) > 0 || strings.TrimSpace(line) != "" {
				m.Extra = append(m.Extra, line)
			}
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "title":
			m.Title = value
		case "date":
			m.Date = value
		case "draft":
			m.Draft = value == "true"
		case "tags", "tag":
			m.Tags = splitList(value)
		case "categories", "category":
			m.Categories = splitList(value)
		case "sha":
			m.SHA = value
		}
	}
	for len(m.Extra) > 0 && strings.TrimSpace(m.Extra[len(m.Extra)-1]) == "" {
		m.Extra = m.Extra[:len(m.Extra)-1]
	}
	if len(m.Extra) == 0 {
		m.Extra = nil
	}
	return m
}

func knownKey(key string) bool {
	switch key {
	case "title", "date", "draft", "tags", "tag", "categories", "category", "sha":
		return true
	}
	return false
}

// splitList splits an inline comma-separated list. Elements are trimmed and
// empty ones dropped; order and duplicates are kept.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(list []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}
