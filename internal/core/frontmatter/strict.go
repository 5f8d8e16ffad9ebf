package frontmatter

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// strictHeader mirrors Metadata for YAML decoding. Singular aliases are
// merged into the plural fields after decoding.
type strictHeader struct {
	Title      string   `yaml:"title"`
	Date       string   `yaml:"date"`
	Tags       yamlList `yaml:"tags"`
	Tag        yamlList `yaml:"tag"`
	Categories yamlList `yaml:"categories"`
	Category   yamlList `yaml:"category"`
	Draft      bool     `yaml:"draft"`
	SHA        string   `yaml:"sha"`
}

// yamlList accepts either a YAML sequence or an inline comma-separated
// string.
type yamlList []string

func (l *yamlList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = splitList(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		var out []string
		for _, item := range items {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a list or string", node.Line)
	}
}

// ParseStrict decodes the header as YAML. If the header is not valid YAML
// the zero Metadata and the whole original document are returned, with Raw
// holding the header text so it can be shown to the user.
func ParseStrict(doc string) Document {
	header, body, ok := Split(doc)
	if !ok {
		return Document{Body: doc}
	}

	var h strictHeader
	if err := yaml.Unmarshal([]byte(header), &h); err != nil {
		return Document{Body: doc, Raw: header}
	}

	m := Metadata{
		Title:      h.Title,
		Date:       h.Date,
		Tags:       h.Tags,
		Categories: h.Categories,
		Draft:      h.Draft,
		SHA:        h.SHA,
	}
	if len(m.Tags) == 0 {
		m.Tags = h.Tag
	}
	if len(m.Categories) == 0 {
		m.Categories = h.Category
	}

	return Document{Meta: m, Body: body}
}
