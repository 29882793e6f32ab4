package model

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Front matter parsing errors.
// Malformed front matter is a structural integrity failure: the site cannot
// be validated against metadata we cannot read, so these abort the run
// rather than becoming soft issues.
var (
	// ErrNoFrontMatter is returned when a markdown file has no leading
	// "---" delimited YAML block.
	ErrNoFrontMatter = errors.New("markdown file has no front matter block")

	// ErrUnclosedFrontMatter is returned when the opening "---" has no
	// closing delimiter.
	ErrUnclosedFrontMatter = errors.New("front matter block is not closed")
)

// FrontMatter is the YAML metadata header of a markdown source file.
// Only the fields consumed by checks are mapped; unknown fields are ignored.
type FrontMatter struct {
	// Title is cross-checked against <title> and og:title.
	Title string `yaml:"title"`

	// Description is cross-checked against the meta description tags.
	Description string `yaml:"description"`

	// CardImage is the social preview image URL.
	CardImage string `yaml:"card_image"`

	// Permalink is the canonical output path for the page, without the
	// .html suffix.
	Permalink string `yaml:"permalink"`

	// Aliases lists alternate permalinks. Pages reached only through an
	// alias are exempt from having their own checked HTML file.
	Aliases StringList `yaml:"aliases"`

	// DatePublished and DateUpdated are kept as strings: checks only test
	// presence, and round-tripping the original formatting matters more
	// than time arithmetic.
	DatePublished string `yaml:"date_published"`
	DateUpdated   string `yaml:"date_updated"`
}

// StringList unmarshals a YAML value that may be either a single scalar or
// a sequence of scalars. Front matter written by hand uses both forms.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Value == "" {
			*s = nil
			return nil
		}
		*s = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(value.Content))
		for _, item := range value.Content {
			out = append(out, item.Value)
		}
		*s = out
		return nil
	default:
		return fmt.Errorf("line %d: cannot unmarshal %v into string list", value.Line, value.Kind)
	}
}

// frontMatterDelimiter separates the YAML header from the markdown body.
const frontMatterDelimiter = "---"

// SplitFrontMatter separates a markdown file into its YAML header and body.
// The returned header excludes the delimiters.
func SplitFrontMatter(content string) (header, body string, err error) {
	// Normalize line endings before splitting; content authored on Windows
	// would otherwise never match the delimiter.
	content = strings.ReplaceAll(content, "\r\n", "\n")

	if !strings.HasPrefix(content, frontMatterDelimiter+"\n") {
		return "", "", ErrNoFrontMatter
	}
	rest := content[len(frontMatterDelimiter)+1:]

	end := strings.Index(rest, "\n"+frontMatterDelimiter)
	if end < 0 {
		return "", "", ErrUnclosedFrontMatter
	}

	header = rest[:end]
	body = rest[end+len(frontMatterDelimiter)+1:]
	body = strings.TrimPrefix(body, "\n")
	return header, body, nil
}

// ParseFrontMatter parses the YAML header of a markdown file.
func ParseFrontMatter(content string) (*FrontMatter, string, error) {
	header, body, err := SplitFrontMatter(content)
	if err != nil {
		return nil, "", err
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, "", fmt.Errorf("malformed front matter: %w", err)
	}
	return &fm, body, nil
}
