// Package frontmatter reads and writes the YAML metadata block that leads
// every post document: the `---` fenced record carrying author, pubDatetime,
// title, slug, featured, ogImage, tags and description.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

const fence = "---"

// ErrMissingClosingDelimiter reports a document that opens a metadata block
// and never closes it.
var ErrMissingClosingDelimiter = errors.New("frontmatter: opening --- delimiter without closing delimiter")

// Style records the newline shape of a document so that an edited file can
// be written back without churning every line. It does not try to preserve
// YAML formatting beyond that.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates the leading YAML metadata block from the Markdown body.
// Documents that do not start with a fence return had=false and the whole
// input as body. The returned meta excludes both fence lines.
func Split(content []byte) (meta, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	open := []byte(fence + style.Newline)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}
	rest := content[len(open):]

	// A block closed on the very next line is legal and carries no fields.
	// The closing fence may also be the last bytes of the file.
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, style, nil
	}
	if bytes.Equal(rest, []byte(fence)) {
		return []byte{}, nil, true, style, nil
	}

	closing := []byte(style.Newline + fence + style.Newline)
	if i := bytes.Index(rest, closing); i >= 0 {
		return rest[:i+len(style.Newline)], rest[i+len(closing):], true, style, nil
	}

	// The closing fence may sit on the last line of the file with no
	// trailing newline.
	if tail := []byte(style.Newline + fence); bytes.HasSuffix(rest, tail) {
		return rest[:len(rest)-len(fence)], nil, true, style, nil
	}

	return nil, nil, false, style, ErrMissingClosingDelimiter
}

// Join reassembles a document from raw metadata and body. When had is false
// the body is returned unchanged; otherwise both fence lines are emitted in
// the captured newline style.
func Join(meta, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}
	open := []byte(fence + nl)

	out := make([]byte, 0, 2*len(open)+len(meta)+len(body))
	out = append(out, open...)
	out = append(out, meta...)
	out = append(out, open...)
	out = append(out, body...)
	return out
}

// ParseYAML parses a raw metadata block (without fences) into a map. Empty
// input and YAML that decodes to null both yield an empty map.
func ParseYAML(meta []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(meta)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(meta, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	s := Style{Newline: "\n"}
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		s.Newline = "\r\n"
	}
	s.HasTrailingNewline = len(content) > 0 && content[len(content)-1] == '\n'
	return s
}
