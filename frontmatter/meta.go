package frontmatter

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Meta is the typed front-matter record of a post document.
type Meta struct {
	Author       string
	PubDatetime  time.Time
	ModDatetime  *time.Time
	Title        string
	Slug         string
	Featured     bool
	Draft        bool
	OGImage      string
	Tags         []string
	Description  string
	CanonicalURL string

	// Extra preserves fields the schema does not know about across
	// read-modify-write cycles.
	Extra map[string]any
}

// DefaultTag is applied when a post declares no tags.
const DefaultTag = "others"

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a well-formed slug: lowercase alphanumeric
// runs separated by single hyphens.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// ParseMeta decodes a raw metadata block (without fences) into a Meta.
// Unknown keys land in Extra. Defaulting and validation are separate steps,
// see Normalize and Validate.
func ParseMeta(meta []byte) (Meta, error) {
	fields, err := ParseYAML(meta)
	if err != nil {
		return Meta{}, fmt.Errorf("frontmatter: %w", err)
	}
	return FromMap(fields)
}

// FromMap builds a Meta from an untyped field map, tolerating the value
// shapes YAML produces in the wild: timestamps as strings or time.Time,
// tags as a sequence or a single scalar.
func FromMap(fields map[string]any) (Meta, error) {
	var m Meta
	m.Extra = map[string]any{}

	for key, value := range fields {
		switch key {
		case "author":
			m.Author = stringField(value)
		case "pubDatetime":
			t, ok := timeField(value)
			if !ok {
				return Meta{}, fmt.Errorf("frontmatter: pubDatetime: unrecognized value %v", value)
			}
			m.PubDatetime = t
		case "modDatetime":
			if value == nil {
				continue
			}
			t, ok := timeField(value)
			if !ok {
				return Meta{}, fmt.Errorf("frontmatter: modDatetime: unrecognized value %v", value)
			}
			m.ModDatetime = &t
		case "title":
			m.Title = stringField(value)
		case "slug":
			m.Slug = stringField(value)
		case "featured":
			m.Featured = boolField(value)
		case "draft":
			m.Draft = boolField(value)
		case "ogImage":
			m.OGImage = stringField(value)
		case "tags":
			m.Tags = stringsField(value)
		case "description":
			m.Description = stringField(value)
		case "canonicalURL":
			m.CanonicalURL = stringField(value)
		default:
			m.Extra[key] = value
		}
	}
	return m, nil
}

// Normalize applies schema defaults in place: the fallback author, the
// default tag, tag case folding and deduplication, and a slug derived from
// the title when none was declared.
func (m *Meta) Normalize(defaultAuthor string) {
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)

	if strings.TrimSpace(m.Author) == "" {
		m.Author = defaultAuthor
	}
	if m.Slug == "" {
		m.Slug = Slugify(m.Title)
	}

	seen := make(map[string]bool, len(m.Tags))
	tags := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tags = append(tags, t)
	}
	if len(tags) == 0 {
		tags = []string{DefaultTag}
	}
	m.Tags = tags
}

// Validate returns the list of schema violations, empty when the record is
// valid. It assumes Normalize has run.
func (m Meta) Validate() []string {
	var problems []string

	if m.Title == "" {
		problems = append(problems, "title is required")
	}
	if m.Description == "" {
		problems = append(problems, "description is required")
	}
	if m.Author == "" {
		problems = append(problems, "author is required")
	}
	if m.PubDatetime.IsZero() {
		problems = append(problems, "pubDatetime is required")
	}
	if m.ModDatetime != nil && m.ModDatetime.Before(m.PubDatetime) {
		problems = append(problems, "modDatetime precedes pubDatetime")
	}
	if m.Slug != "" && !ValidSlug(m.Slug) {
		problems = append(problems, fmt.Sprintf("slug %q is not lowercase-hyphenated", m.Slug))
	}
	if p := checkImageRef(m.OGImage); p != "" {
		problems = append(problems, p)
	}
	if m.CanonicalURL != "" {
		u, err := url.Parse(m.CanonicalURL)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			problems = append(problems, fmt.Sprintf("canonicalURL %q is not an absolute http(s) URL", m.CanonicalURL))
		}
	}
	return problems
}

func checkImageRef(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ""
	}
	for _, part := range strings.Split(strings.TrimPrefix(ref, "/"), "/") {
		if part == ".." {
			return fmt.Sprintf("ogImage %q escapes the site root", ref)
		}
	}
	return ""
}

// ToMap renders the record as an untyped field map, schema fields first by
// name, Extra fields preserved. Zero-valued optional fields are omitted.
func (m Meta) ToMap() map[string]any {
	fields := make(map[string]any, 11+len(m.Extra))

	fields["author"] = m.Author
	fields["pubDatetime"] = m.PubDatetime.UTC().Format(time.RFC3339)
	if m.ModDatetime != nil {
		fields["modDatetime"] = m.ModDatetime.UTC().Format(time.RFC3339)
	}
	fields["title"] = m.Title
	if m.Slug != "" {
		fields["slug"] = m.Slug
	}
	fields["featured"] = m.Featured
	fields["draft"] = m.Draft
	if m.OGImage != "" {
		fields["ogImage"] = m.OGImage
	}
	fields["tags"] = append([]string(nil), m.Tags...)
	fields["description"] = m.Description
	if m.CanonicalURL != "" {
		fields["canonicalURL"] = m.CanonicalURL
	}
	for k, v := range m.Extra {
		fields[k] = v
	}
	return fields
}

// metaFieldOrder is the canonical key order for written-back records.
var metaFieldOrder = []string{
	"author", "pubDatetime", "modDatetime", "title", "slug",
	"featured", "draft", "ogImage", "tags", "description", "canonicalURL",
}

// EncodeMeta renders the record as a YAML block (without fences) with the
// schema fields in canonical order followed by Extra keys sorted. Repeated
// encodes of the same record are byte-identical.
func EncodeMeta(m Meta, style Style) ([]byte, error) {
	fields := m.ToMap()

	node := &yamlMapping{}
	for _, key := range metaFieldOrder {
		if v, ok := fields[key]; ok {
			if err := node.append(key, v); err != nil {
				return nil, err
			}
			delete(fields, key)
		}
	}
	extras := make([]string, 0, len(fields))
	for k := range fields {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	for _, key := range extras {
		if err := node.append(key, fields[key]); err != nil {
			return nil, err
		}
	}
	return encodeNode(node.node(), style)
}

func stringField(v any) string {
	switch vv := v.(type) {
	case string:
		return vv
	case nil:
		return ""
	default:
		return fmt.Sprint(vv)
	}
}

func boolField(v any) bool {
	switch vv := v.(type) {
	case bool:
		return vv
	case string:
		return strings.EqualFold(strings.TrimSpace(vv), "true")
	default:
		return false
	}
}

func stringsField(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			out = append(out, stringField(item))
		}
		return out
	case string:
		return []string{vv}
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(vv)}
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func timeField(v any) (time.Time, bool) {
	switch vv := v.(type) {
	case time.Time:
		return vv, true
	case string:
		s := strings.TrimSpace(vv)
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				// Layouts without a zone are read as UTC.
				return t, true
			}
		}
	}
	return time.Time{}, false
}
