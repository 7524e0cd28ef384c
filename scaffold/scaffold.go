// Package scaffold creates new post source files from an embedded template,
// front-matter prefilled so the result passes the schema as-is.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/eringen/geopress/frontmatter"
)

//go:embed templates
var templates embed.FS

// PostData fills the post template.
type PostData struct {
	Title       string
	Slug        string
	Description string
	Author      string
	Tags        []string
	Featured    bool
	Draft       bool
	PubDatetime time.Time
}

// NewPost writes a scaffolded post into dir and returns its path. The slug
// is derived from the title when empty; an existing file is never
// overwritten.
func NewPost(dir string, data PostData) (string, error) {
	if data.Slug == "" {
		data.Slug = frontmatter.Slugify(data.Title)
	}
	if data.Slug == "" {
		return "", fmt.Errorf("scaffold: a title or slug is required")
	}
	if !frontmatter.ValidSlug(data.Slug) {
		return "", fmt.Errorf("scaffold: slug %q is not lowercase-hyphenated", data.Slug)
	}
	if data.PubDatetime.IsZero() {
		data.PubDatetime = time.Now().UTC()
	}
	if len(data.Tags) == 0 {
		data.Tags = []string{frontmatter.DefaultTag}
	}

	tmpl, err := template.New("post.md.tmpl").Funcs(template.FuncMap{
		"rfc3339": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	}).ParseFS(templates, "templates/post.md.tmpl")
	if err != nil {
		return "", fmt.Errorf("scaffold: parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("scaffold: render: %w", err)
	}

	path := filepath.Join(dir, data.Slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("scaffold: %s already exists", path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("scaffold: %w", err)
	}
	return path, nil
}
