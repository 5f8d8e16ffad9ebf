// Package frontmatter splits Markdown documents into a "---" fenced metadata
// header and a body, and writes them back.
//
// Every function in this package is total: malformed or missing headers
// produce zero-value Metadata and the original document as body, so a
// corrupted header never loses document content.
package frontmatter

import "slices"

// Metadata is the typed view of a post header. The zero value is the default
// metadata for a document without frontmatter.
type Metadata struct {
	Title      string   `json:"title" yaml:"title"`
	Date       string   `json:"date" yaml:"date"`
	Tags       []string `json:"tags" yaml:"tags"`
	Categories []string `json:"categories" yaml:"categories"`
	Draft      bool     `json:"draft" yaml:"draft"`
	// SHA is the content hash of the last published remote version.
	// Empty means the post has not been published.
	SHA string `json:"sha,omitempty" yaml:"sha,omitempty"`
	// Extra holds header lines Decode did not read, in their original order.
	// Generate writes them back after the known fields.
	Extra []string `json:"extra,omitempty" yaml:"-"`
}

// Equal reports whether m and other hold the same values. Nil and empty
// slices compare equal.
func (m Metadata) Equal(other Metadata) bool {
	return m.Title == other.Title &&
		m.Date == other.Date &&
		m.Draft == other.Draft &&
		m.SHA == other.SHA &&
		slices.Equal(m.Tags, other.Tags) &&
		slices.Equal(m.Categories, other.Categories) &&
		slices.Equal(m.Extra, other.Extra)
}

// HasTag reports whether tag is present, ignoring case.
func (m Metadata) HasTag(tag string) bool {
	return containsFold(m.Tags, tag)
}

// HasCategory reports whether category is present, ignoring case.
func (m Metadata) HasCategory(category string) bool {
	return containsFold(m.Categories, category)
}

// Document is the result of ParseStrict.
type Document struct {
	Meta Metadata
	Body string
	// Raw is the header text between the delimiters. It is only kept for
	// display when the header could not be decoded.
	Raw string
}
