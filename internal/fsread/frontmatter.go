package fsread

import (
	"bytes"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

// FrontMatter splits a markdown document into its YAML header and body.
// The header opens on the first line and closes on the next line that is
// exactly "---" once surrounding whitespace is trimmed. A document without
// a header returns a nil header and the whole content as body. A header
// that is not valid YAML, or not a mapping, is dropped and the body is
// still returned.
func FrontMatter(content []byte) (map[string]any, string) {
	content = bytes.TrimPrefix(content, []byte("\ufeff"))
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	lines := strings.Split(text, "\n")
	if !isDelimiter(lines[0]) {
		return nil, text
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			closing = i
			break
		}
	}
	if closing < 0 {
		// Unterminated header: treat the file as plain body.
		return nil, text
	}

	header := strings.Join(lines[1:closing], "\n")
	body := strings.Join(lines[closing+1:], "\n")

	var parsed map[string]any
	if err := yaml.Unmarshal([]byte(header), &parsed); err != nil {
		return nil, body
	}
	return parsed, body
}

func isDelimiter(line string) bool {
	return strings.TrimSpace(line) == frontMatterDelim
}
