package staticgen

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eringen/geopress"
	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/frontmatter"
	"github.com/eringen/geopress/views"
)

func fixturePost(slug, title string, tags []string) content.Post {
	return content.Post{
		Meta: frontmatter.Meta{
			Title:       title,
			Slug:        slug,
			PubDatetime: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
			Tags:        tags,
			Description: "about " + title,
		},
		Body: "# " + title,
		HTML: "<h1>" + title + "</h1>",
	}
}

func testBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{
		Site:      geopress.Site{Name: "Geodesy Notes", URL: "https://example.com", Author: "Erin"},
		Views:     views.Default(),
		OutputDir: t.TempDir(),
		Log:       zerolog.Nop(),
	}
}

func TestBuild_WritesAllRoutes(t *testing.T) {
	b := testBuilder(t)
	posts := []content.Post{
		fixturePost("vincenty", "Vincenty", []string{"geodesy"}),
		fixturePost("haversine", "Haversine", []string{"geodesy", "maps"}),
	}

	rec, err := b.Build(context.Background(), posts)
	require.NoError(t, err)
	require.Equal(t, "success", rec.Outcome)
	require.Equal(t, 2, rec.Posts)
	require.NotEmpty(t, rec.ID)

	for _, rel := range []string{
		"index.html",
		"posts/index.html",
		"posts/vincenty/index.html",
		"posts/haversine/index.html",
		"tags/index.html",
		"tags/geodesy/index.html",
		"tags/maps/index.html",
		"404.html",
		"feed.xml",
		"sitemap.xml",
		"robots.txt",
	} {
		_, err := os.Stat(filepath.Join(b.OutputDir, rel))
		require.NoError(t, err, rel)
	}
}

func TestBuild_PaginatesPostIndex(t *testing.T) {
	b := testBuilder(t)
	b.PostsPerPage = 1
	posts := []content.Post{
		fixturePost("one", "One", nil),
		fixturePost("two", "Two", nil),
	}

	_, err := b.Build(context.Background(), posts)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(b.OutputDir, "posts", "page", "2", "index.html"))
	require.NoError(t, err)
}

func TestBuild_CopiesStaticAssetsAndMinifies(t *testing.T) {
	b := testBuilder(t)
	b.Minify = true
	b.StaticDir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(b.StaticDir, "styles.css"), []byte("body { color: red; }"), 0o644))

	_, err := b.Build(context.Background(), []content.Post{fixturePost("a", "A", nil)})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(b.OutputDir, "public", "styles.css"))
	require.NoError(t, err)

	home, err := os.ReadFile(filepath.Join(b.OutputDir, "index.html"))
	require.NoError(t, err)
	require.NotContains(t, string(home), "\n<")
}

func TestBuild_EmptyCorpus(t *testing.T) {
	b := testBuilder(t)
	rec, err := b.Build(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "success", rec.Outcome)
	require.Zero(t, rec.Posts)
}

func TestBuild_NotFoundRenderErrorFailsBuild(t *testing.T) {
	b := testBuilder(t)
	b.Views.NotFound = func(site geopress.Site) templ.Component {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return errors.New("template broken")
		})
	}

	rec, err := b.Build(context.Background(), nil)
	require.Error(t, err)
	require.Equal(t, "failed", rec.Outcome)

	// No empty 404.html must be left behind.
	_, statErr := os.Stat(filepath.Join(b.OutputDir, "404.html"))
	require.True(t, os.IsNotExist(statErr))
}

func TestVerifyLinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "posts", "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts", "a", "index.html"), []byte("<p>a</p>"), 0o644))
	page := `<html><body>
		<a href="/posts/a/">good</a>
		<a href="/posts/missing/">bad</a>
		<a href="https://example.com/posts/a/">good absolute</a>
		<a href="https://other.example.org/x">external, ignored</a>
		<a href="/posts/a/?ref=home#top">good with query</a>
	</body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644))

	broken, err := VerifyLinks(dir, "https://example.com")
	require.NoError(t, err)
	require.Len(t, broken, 1)
	require.Equal(t, "/posts/missing/", broken[0].Target)
}
