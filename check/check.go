// Package check lints a content directory before it is served or exported.
// Each Markdown document is parsed once, per-document rules run over the
// parsed record, and corpus rules catch cross-file problems such as
// duplicate slugs. It is the CI face of the same schema the engine enforces
// at load time.
package check

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eringen/geopress/frontmatter"
)

// Severity ranks an issue. Errors fail the check run.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding of one rule in one file.
type Issue struct {
	Path     string   `json:"path"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Fix      string   `json:"fix,omitempty"`
}

// Result is the outcome of a full check run.
type Result struct {
	Issues     []Issue `json:"issues"`
	FilesTotal int     `json:"files_total"`
}

// HasErrors reports whether any issue is error severity.
func (r Result) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Counts returns the number of errors and warnings.
func (r Result) Counts() (errors, warnings int) {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return
}

// Document is one parsed Markdown file as the rules see it.
type Document struct {
	Path           string
	Meta           frontmatter.Meta
	MetaErr        error
	Body           string
	HadFrontmatter bool
}

// Rule checks one document.
type Rule interface {
	Name() string
	Check(doc Document) []Issue
}

// CorpusRule checks the corpus as a whole.
type CorpusRule interface {
	Name() string
	CheckCorpus(docs []Document) []Issue
}

// Options configures a check run.
type Options struct {
	// DefaultAuthor is applied during normalization, matching the engine.
	DefaultAuthor string
	// StaticDir, when set, lets the link rule verify /public/ references.
	StaticDir string
}

// Run lints every Markdown file under dir.
func Run(dir string, opts Options) (Result, error) {
	docs, err := loadDocuments(dir, opts)
	if err != nil {
		return Result{}, err
	}

	var issues []Issue
	for _, doc := range docs {
		for _, rule := range documentRules() {
			issues = append(issues, rule.Check(doc)...)
		}
	}
	for _, rule := range corpusRules(opts) {
		issues = append(issues, rule.CheckCorpus(docs)...)
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		return issues[i].Rule < issues[j].Rule
	})
	return Result{Issues: issues, FilesTotal: len(docs)}, nil
}

func loadDocuments(dir string, opts Options) ([]Document, error) {
	var docs []Document
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
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || !strings.HasSuffix(name, ".md") {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, parseDocument(rel, raw, opts))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("check: %w", err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

func parseDocument(path string, raw []byte, opts Options) Document {
	doc := Document{Path: path}
	meta, body, had, _, err := frontmatter.Split(raw)
	doc.HadFrontmatter = had
	doc.Body = string(body)
	if err != nil {
		doc.MetaErr = err
		return doc
	}
	if !had {
		return doc
	}
	m, err := frontmatter.ParseMeta(meta)
	if err != nil {
		doc.MetaErr = err
		return doc
	}
	m.Normalize(opts.DefaultAuthor)
	doc.Meta = m
	return doc
}
