package check

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/eringen/geopress/frontmatter"
	"github.com/eringen/geopress/markdown"
)

func documentRules() []Rule {
	return []Rule{
		frontmatterRule{},
		requiredFieldsRule{},
		slugFormatRule{},
		dateSanityRule{},
		metaURLRule{},
		shortcodeRule{},
	}
}

func corpusRules(opts Options) []CorpusRule {
	return []CorpusRule{
		duplicateSlugRule{},
		internalLinkRule{staticDir: opts.StaticDir},
	}
}

// frontmatterRule demands a parseable front-matter block.
type frontmatterRule struct{}

func (frontmatterRule) Name() string { return "frontmatter" }

func (r frontmatterRule) Check(doc Document) []Issue {
	if doc.MetaErr != nil {
		return []Issue{{
			Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
			Message: doc.MetaErr.Error(),
		}}
	}
	if !doc.HadFrontmatter {
		return []Issue{{
			Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
			Message: "no front-matter block",
			Fix:     "start the file with a --- delimited YAML block",
		}}
	}
	return nil
}

// brokenMeta reports whether later metadata rules should stay quiet because
// the front-matter rule already fired.
func brokenMeta(doc Document) bool {
	return doc.MetaErr != nil || !doc.HadFrontmatter
}

type requiredFieldsRule struct{}

func (requiredFieldsRule) Name() string { return "required-fields" }

func (r requiredFieldsRule) Check(doc Document) []Issue {
	if brokenMeta(doc) {
		return nil
	}
	var issues []Issue
	add := func(field string) {
		issues = append(issues, Issue{
			Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
			Message: field + " is required",
		})
	}
	if doc.Meta.Title == "" {
		add("title")
	}
	if doc.Meta.Description == "" {
		add("description")
	}
	if doc.Meta.Author == "" {
		add("author")
	}
	if doc.Meta.PubDatetime.IsZero() {
		add("pubDatetime")
	}
	return issues
}

type slugFormatRule struct{}

func (slugFormatRule) Name() string { return "slug-format" }

func (r slugFormatRule) Check(doc Document) []Issue {
	if brokenMeta(doc) || doc.Meta.Slug == "" {
		return nil
	}
	if frontmatter.ValidSlug(doc.Meta.Slug) {
		return nil
	}
	return []Issue{{
		Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
		Message: fmt.Sprintf("slug %q is not lowercase-hyphenated", doc.Meta.Slug),
		Fix:     fmt.Sprintf("try %q", frontmatter.Slugify(doc.Meta.Slug)),
	}}
}

type dateSanityRule struct{}

func (dateSanityRule) Name() string { return "date-sanity" }

func (r dateSanityRule) Check(doc Document) []Issue {
	if brokenMeta(doc) {
		return nil
	}
	m := doc.Meta
	if m.ModDatetime != nil && !m.PubDatetime.IsZero() && m.ModDatetime.Before(m.PubDatetime) {
		return []Issue{{
			Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
			Message: "modDatetime precedes pubDatetime",
		}}
	}
	return nil
}

// metaURLRule validates ogImage and canonicalURL shapes.
type metaURLRule struct{}

func (metaURLRule) Name() string { return "meta-urls" }

func (r metaURLRule) Check(doc Document) []Issue {
	if brokenMeta(doc) {
		return nil
	}
	var issues []Issue
	if img := doc.Meta.OGImage; img != "" && !strings.HasPrefix(img, "http://") && !strings.HasPrefix(img, "https://") {
		for _, part := range strings.Split(strings.TrimPrefix(img, "/"), "/") {
			if part == ".." {
				issues = append(issues, Issue{
					Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
					Message: fmt.Sprintf("ogImage %q escapes the site root", img),
				})
				break
			}
		}
	}
	if cu := doc.Meta.CanonicalURL; cu != "" {
		u, err := url.Parse(cu)
		if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
			issues = append(issues, Issue{
				Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
				Message: fmt.Sprintf("canonicalURL %q is not an absolute http(s) URL", cu),
			})
		}
	}
	return issues
}

// shortcodeRule surfaces malformed geodesy directives.
type shortcodeRule struct{}

func (shortcodeRule) Name() string { return "shortcodes" }

func (r shortcodeRule) Check(doc Document) []Issue {
	_, errs := markdown.ExpandShortcodes([]byte(doc.Body))
	issues := make([]Issue, 0, len(errs))
	for _, e := range errs {
		issues = append(issues, Issue{
			Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
			Message: fmt.Sprintf("%s: %s", e.Directive, e.Reason),
		})
	}
	return issues
}

// duplicateSlugRule enforces slug uniqueness across the corpus.
type duplicateSlugRule struct{}

func (duplicateSlugRule) Name() string { return "duplicate-slug" }

func (r duplicateSlugRule) CheckCorpus(docs []Document) []Issue {
	first := make(map[string]string)
	var issues []Issue
	for _, doc := range docs {
		if brokenMeta(doc) || doc.Meta.Slug == "" {
			continue
		}
		if prev, ok := first[doc.Meta.Slug]; ok {
			issues = append(issues, Issue{
				Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
				Message: fmt.Sprintf("slug %q already used by %s", doc.Meta.Slug, prev),
				Fix:     "rename one of the slugs",
			})
			continue
		}
		first[doc.Meta.Slug] = doc.Path
	}
	return issues
}

// internalLinkRule checks that internal Markdown links resolve: post links
// to a known slug, /public/ links to a file under the static dir.
type internalLinkRule struct {
	staticDir string
}

func (internalLinkRule) Name() string { return "internal-links" }

func (r internalLinkRule) CheckCorpus(docs []Document) []Issue {
	slugs := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if !brokenMeta(doc) && doc.Meta.Slug != "" {
			slugs[doc.Meta.Slug] = true
		}
	}

	var issues []Issue
	for _, doc := range docs {
		for _, link := range markdown.ExtractLinks([]byte(doc.Body)) {
			dest := link.Destination
			if i := strings.IndexAny(dest, "?#"); i >= 0 {
				dest = dest[:i]
			}
			switch {
			case strings.HasPrefix(dest, "/posts/"):
				slug := strings.Trim(strings.TrimPrefix(dest, "/posts/"), "/")
				if slug != "" && !slugs[slug] {
					issues = append(issues, Issue{
						Path: doc.Path, Rule: r.Name(), Severity: SeverityError,
						Message: fmt.Sprintf("link %s points at an unknown post", link.Destination),
					})
				}
			case strings.HasPrefix(dest, "/public/"):
				if r.staticDir == "" {
					continue
				}
				rel := strings.TrimPrefix(dest, "/public/")
				if _, err := os.Stat(filepath.Join(r.staticDir, filepath.FromSlash(rel))); err != nil {
					issues = append(issues, Issue{
						Path: doc.Path, Rule: r.Name(), Severity: SeverityWarning,
						Message: fmt.Sprintf("link %s has no file under the static dir", link.Destination),
					})
				}
			}
		}
	}
	return issues
}
