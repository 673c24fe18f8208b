// Package frontmatter splits `---` delimited YAML front matter from a markdown
// document and decodes it into loosely typed fields.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoFrontMatter is returned by Parse when the document does not start
	// with a front matter delimiter.
	ErrNoFrontMatter = errors.New("document has no yaml front matter")

	// ErrMissingClosingDelimiter indicates the document opened a front matter
	// block but never closed it.
	ErrMissingClosingDelimiter = errors.New("yaml front matter start delimiter found but closing delimiter is missing")
)

// Split separates YAML front matter from the markdown body.
//
// If the document does not start with a delimiter line, had is false and body
// is the whole input. A leading UTF-8 BOM is ignored.
func Split(content []byte) (fm []byte, body []byte, had bool, err error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter on the very last line has no trailing newline.
		closeEOF := []byte(nl + "---")
		if bytes.HasSuffix(content, closeEOF) {
			end := len(content) - len(closeEOF)
			return content[start : end+len(nl)], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// ParseYAML decodes raw front matter (without delimiters) into a map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(fm)) == 0 {
		return map[string]any{}, nil
	}
	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Parse splits content and decodes its front matter in one step.
func Parse(content []byte) (map[string]any, []byte, error) {
	fm, body, had, err := Split(content)
	if err != nil {
		return nil, nil, err
	}
	if !had {
		return nil, body, ErrNoFrontMatter
	}
	fields, err := ParseYAML(fm)
	if err != nil {
		return nil, nil, err
	}
	return fields, body, nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
