package frontmatter

import (
	"strconv"
	"strings"
)

// Parse splits doc and decodes its header. Without a header the zero
// Metadata and the unmodified document are returned.
func Parse(doc string) (Metadata, string) {
	header, body, ok := Split(doc)
	if !ok {
		return Metadata{}, doc
	}
	return Decode(header), body
}

// Generate writes m as a header block followed by one blank line and body.
// Fields are always written in the same order: title, date, tags,
// categories, draft, then sha when set, followed by any Extra lines.
func Generate(m Metadata, body string) string {
	var b strings.Builder
	b.Grow(len(body) + 128)

	b.WriteString(delimiter + "\n")
	writeField(&b, "title", m.Title)
	writeField(&b, "date", m.Date)
	writeField(&b, "tags", strings.Join(m.Tags, ", "))
	writeField(&b, "categories", strings.Join(m.Categories, ", "))
	writeField(&b, "draft", strconv.FormatBool(m.Draft))
	if m.SHA != "" {
		writeField(&b, "sha", m.SHA)
	}
	for _, line := range m.Extra {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(delimiter + "\n\n")
	b.WriteString(body)

	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteByte(':')
	if value != "" {
		b.WriteByte(' ')
		b.WriteString(value)
	}
	b.WriteByte('\n')
}
