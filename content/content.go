// Package content loads the site's corpus: a directory tree of Markdown
// documents with front-matter records. Files are the source of truth; the
// engine's index and caches are derived from what this package returns.
package content

import (
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/eringen/geopress/frontmatter"
	"github.com/eringen/geopress/markdown"
)

// DefaultReadingWPM is the reading speed used when none is configured.
const DefaultReadingWPM = 200

// Post is a fully loaded post document: its front-matter record, raw and
// rendered body, and source location.
type Post struct {
	Meta        frontmatter.Meta
	Body        string
	HTML        string
	SourcePath  string
	Style       frontmatter.Style
	WordCount   int
	ReadingTime time.Duration
}

// Link returns the site-relative pretty URL of the post.
func (p Post) Link() string { return "/posts/" + p.Meta.Slug + "/" }

// PublishedAt returns the publication instant.
func (p Post) PublishedAt() time.Time { return p.Meta.PubDatetime }

// LastModified returns modDatetime when set, pubDatetime otherwise.
func (p Post) LastModified() time.Time {
	if p.Meta.ModDatetime != nil {
		return *p.Meta.ModDatetime
	}
	return p.Meta.PubDatetime
}

// Problem is a non-fatal finding made while loading a corpus: a schema
// violation, a duplicate slug, an unexpandable directive. The file it names
// may have been excluded from the corpus.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	return p.Path + ": " + p.Message
}

// Corpus is a loaded content tree.
type Corpus struct {
	Posts []Post
	Tags  []string

	bySlug map[string]int
}

// BySlug returns the post with the given slug.
func (c Corpus) BySlug(slug string) (Post, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return Post{}, false
	}
	return c.Posts[i], true
}

// LoadOptions control parsing and rendering of post documents.
type LoadOptions struct {
	// DefaultAuthor fills the author field of records that omit it.
	DefaultAuthor string
	// ReadingWPM is the words-per-minute reading speed; 0 means
	// DefaultReadingWPM.
	ReadingWPM int
}

// LoadDir walks dir for Markdown documents and loads them into a Corpus.
// Hidden and underscore-prefixed files and directories are skipped. Files
// that fail to parse or validate are excluded and reported as Problems;
// slugs must be unique across the corpus, later files (in path order) lose.
// The returned error covers the walk itself, not individual files.
func LoadDir(dir string, opts LoadOptions) (Corpus, []Problem, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return Corpus{}, nil, fmt.Errorf("content: walk %s: %w", dir, err)
	}
	sort.Strings(paths)

	corpus := Corpus{bySlug: map[string]int{}}
	var problems []Problem
	slugSource := map[string]string{}

	for _, path := range paths {
		post, fileProblems, err := LoadFile(path, opts)
		if err != nil {
			problems = append(problems, Problem{Path: path, Message: err.Error()})
			continue
		}
		problems = append(problems, fileProblems...)

		if violations := post.Meta.Validate(); len(violations) > 0 {
			problems = append(problems, Problem{
				Path:    path,
				Message: "excluded: " + strings.Join(violations, "; "),
			})
			continue
		}
		if first, dup := slugSource[post.Meta.Slug]; dup {
			problems = append(problems, Problem{
				Path:    path,
				Message: fmt.Sprintf("excluded: slug %q already used by %s", post.Meta.Slug, first),
			})
			continue
		}
		slugSource[post.Meta.Slug] = path
		corpus.bySlug[post.Meta.Slug] = len(corpus.Posts)
		corpus.Posts = append(corpus.Posts, post)
	}

	corpus.Tags = TagSet(corpus.Posts)
	return corpus, problems, nil
}

// LoadFile loads a single post document. The error covers unreadable or
// unparseable files; Problems carry non-fatal findings such as directives
// that could not be expanded.
func LoadFile(path string, opts LoadOptions) (Post, []Problem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Post{}, nil, fmt.Errorf("content: %w", err)
	}

	metaRaw, body, had, style, err := frontmatter.Split(raw)
	if err != nil {
		return Post{}, nil, err
	}
	if !had {
		return Post{}, nil, fmt.Errorf("content: %s has no front-matter record", path)
	}

	meta, err := frontmatter.ParseMeta(metaRaw)
	if err != nil {
		return Post{}, nil, err
	}
	meta.Normalize(opts.DefaultAuthor)

	var problems []Problem
	expanded, shortcodeErrs := markdown.ExpandShortcodes(body)
	for _, se := range shortcodeErrs {
		problems = append(problems, Problem{Path: path, Message: se.Error()})
	}

	html, err := markdown.Render(expanded)
	if err != nil {
		return Post{}, nil, err
	}

	words := len(strings.Fields(string(body)))
	post := Post{
		Meta:        meta,
		Body:        string(body),
		HTML:        html,
		SourcePath:  path,
		Style:       style,
		WordCount:   words,
		ReadingTime: readingTime(words, opts.ReadingWPM),
	}
	return post, problems, nil
}

func readingTime(words, wpm int) time.Duration {
	if wpm <= 0 {
		wpm = DefaultReadingWPM
	}
	minutes := math.Ceil(float64(words) / float64(wpm))
	if minutes < 1 {
		minutes = 1
	}
	return time.Duration(minutes) * time.Minute
}
