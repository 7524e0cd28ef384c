package content

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eringen/geopress/frontmatter"
)

// WritePost serializes the post's record and body back to its source file,
// creating parent directories as needed. The newline style captured at load
// time is kept so editors do not see whole-file rewrites.
func WritePost(post Post) error {
	if post.SourcePath == "" {
		return fmt.Errorf("content: post %q has no source path", post.Meta.Slug)
	}

	style := post.Style
	if style.Newline == "" {
		style.Newline = "\n"
	}

	meta, err := frontmatter.EncodeMeta(post.Meta, style)
	if err != nil {
		return fmt.Errorf("content: encode %s: %w", post.SourcePath, err)
	}

	body := post.Body
	if body != "" && !strings.HasSuffix(body, style.Newline) {
		body += style.Newline
	}

	doc := frontmatter.Join(meta, []byte(body), true, style)
	if err := os.MkdirAll(filepath.Dir(post.SourcePath), 0o755); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	if err := os.WriteFile(post.SourcePath, doc, 0o644); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}

// RemovePost deletes the post's source file.
func RemovePost(post Post) error {
	if post.SourcePath == "" {
		return fmt.Errorf("content: post %q has no source path", post.Meta.Slug)
	}
	if err := os.Remove(post.SourcePath); err != nil {
		return fmt.Errorf("content: %w", err)
	}
	return nil
}
