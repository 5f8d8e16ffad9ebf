package frontmatter

import "strings"

const delimiter = "---"

// normalize converts CRLF and lone CR line endings to LF.
func normalize(doc string) string {
	if !strings.Contains(doc, "\r") {
		return doc
	}
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	return strings.ReplaceAll(doc, "\r", "\n")
}

func isDelimiter(line string) bool {
	return strings.TrimSpace(line) == delimiter
}

// Split separates a document into its header block and body.
//
// The first line must be "---" (surrounding whitespace ignored) and the
// header ends at the next line that is "---". The header is every line in
// between joined with "\n". The body is everything after the closing
// delimiter with a single leading blank line removed, which is the separator
// Generate writes. When no header is found ok is false and the caller should
// treat the original document as the body.
func Split(doc string) (header, body string, ok bool) {
	lines := strings.Split(normalize(doc), "\n")
	if !isDelimiter(lines[0]) {
		return "", "", false
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			end = i
			break
		}
	}
	if end == -1 {
		return "", "", false
	}

	header = strings.Join(lines[1:end], "\n")

	rest := lines[end+1:]
	if len(rest) > 1 && rest[0] == "" {
		rest = rest[1:]
	}
	return header, strings.Join(rest, "\n"), true
}
