package check

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

const goodPost = `---
title: Vincenty in practice
slug: vincenty-in-practice
description: Measuring long lines on the ellipsoid.
author: Erin
pubDatetime: 2025-03-01T12:00:00Z
tags:
  - geodesy
---

Read [the haversine notes](/posts/haversine-notes/) first.
`

const haversinePost = `---
title: Haversine notes
slug: haversine-notes
description: The quick spherical approximation.
author: Erin
pubDatetime: 2025-02-01T12:00:00Z
---

Body.
`

func TestRun_CleanCorpus(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "vincenty.md", goodPost)
	writeDoc(t, dir, "haversine.md", haversinePost)

	res, err := Run(dir, Options{})
	require.NoError(t, err)
	require.Empty(t, res.Issues)
	require.Equal(t, 2, res.FilesTotal)
	require.False(t, res.HasErrors())
}

func TestRun_MissingFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bare.md", "just text, no block\n")

	res, err := Run(dir, Options{})
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	require.Equal(t, "frontmatter", res.Issues[0].Rule)
}

func TestRun_RequiredFieldsAndSlugFormat(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "bad.md", `---
title: ""
slug: Bad_Slug
pubDatetime: 2025-03-01T12:00:00Z
---

Body.
`)

	res, err := Run(dir, Options{})
	require.NoError(t, err)
	require.True(t, res.HasErrors())

	rules := make(map[string]bool)
	for _, issue := range res.Issues {
		rules[issue.Rule] = true
	}
	require.True(t, rules["required-fields"])
	require.True(t, rules["slug-format"])
}

func TestRun_DuplicateSlug(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.md", goodPost)
	writeDoc(t, dir, "b.md", goodPost)

	res, err := Run(dir, Options{})
	require.NoError(t, err)
	require.True(t, res.HasErrors())

	var found bool
	for _, issue := range res.Issues {
		if issue.Rule == "duplicate-slug" {
			found = true
			require.Equal(t, "b.md", issue.Path)
		}
	}
	require.True(t, found)
}

func TestRun_BrokenInternalLink(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "vincenty.md", goodPost) // links to /posts/haversine-notes/

	res, err := Run(dir, Options{})
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	require.Equal(t, "internal-links", res.Issues[0].Rule)
}

func TestRun_StaticLinkVerifiedAgainstDir(t *testing.T) {
	dir := t.TempDir()
	static := t.TempDir()
	writeDoc(t, dir, "post.md", `---
title: With assets
slug: with-assets
description: d
author: Erin
pubDatetime: 2025-03-01T12:00:00Z
---

![map](/public/map.png)
`)

	res, err := Run(dir, Options{StaticDir: static})
	require.NoError(t, err)
	require.Len(t, res.Issues, 1)
	require.Equal(t, SeverityWarning, res.Issues[0].Severity)
	require.False(t, res.HasErrors())

	require.NoError(t, os.WriteFile(filepath.Join(static, "map.png"), []byte("png"), 0o644))
	res, err = Run(dir, Options{StaticDir: static})
	require.NoError(t, err)
	require.Empty(t, res.Issues)
}

func TestRun_ModBeforePub(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "post.md", `---
title: Backwards dates
slug: backwards-dates
description: d
author: Erin
pubDatetime: 2025-03-01T12:00:00Z
modDatetime: 2025-02-01T12:00:00Z
---

Body.
`)

	res, err := Run(dir, Options{})
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	require.Equal(t, "date-sanity", res.Issues[0].Rule)
}

func TestRun_MalformedShortcode(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "post.md", `---
title: Shortcodes
slug: shortcodes
description: d
author: Erin
pubDatetime: 2025-03-01T12:00:00Z
---

{{geodesic from="not-a-coordinate" to="0,0"}}
`)

	res, err := Run(dir, Options{})
	require.NoError(t, err)
	require.True(t, res.HasErrors())
	require.Equal(t, "shortcodes", res.Issues[0].Rule)
}

func TestRun_SkipsHiddenAndNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "_draft.md", "ignored")
	writeDoc(t, dir, ".hidden.md", "ignored")
	writeDoc(t, dir, "notes.txt", "ignored")

	res, err := Run(dir, Options{})
	require.NoError(t, err)
	require.Zero(t, res.FilesTotal)
}

func TestFormatters(t *testing.T) {
	res := Result{
		Issues: []Issue{
			{Path: "a.md", Rule: "slug-format", Severity: SeverityError, Message: "bad slug", Fix: "try \"a\""},
			{Path: "b.md", Rule: "internal-links", Severity: SeverityWarning, Message: "dangling"},
		},
		FilesTotal: 2,
	}

	var text bytes.Buffer
	require.NoError(t, WriteText(&text, res))
	require.Contains(t, text.String(), "error: [slug-format] a.md: bad slug")
	require.Contains(t, text.String(), "2 files checked, 1 errors, 1 warnings")

	var out bytes.Buffer
	require.NoError(t, WriteJSON(&out, res))
	var decoded Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded.Issues, 2)
}
