// Package staticgen exports the site to plain files: every public route is
// rendered to an index.html under its pretty URL, feeds and the sitemap are
// written alongside, and static assets are copied over. The output serves
// from any dumb file host.
package staticgen

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eringen/geopress"
	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/metrics"
)

// Builder renders the whole site into OutputDir.
type Builder struct {
	Site         geopress.Site
	Views        geopress.ViewFuncs
	OutputDir    string
	StaticDir    string
	PostsPerPage int
	Minify       bool
	Log          zerolog.Logger
	Metrics      metrics.Recorder
}

// Build writes the full static site for the given posts. The caller decides
// which posts are in scope (visibility cutoff, drafts for previews).
func (b *Builder) Build(ctx context.Context, posts []content.Post) (geopress.BuildRecord, error) {
	start := time.Now()
	rec := geopress.BuildRecord{
		ID:        uuid.NewString(),
		StartedAt: start.UTC().Format(time.RFC3339),
		Posts:     len(posts),
	}
	if b.Metrics == nil {
		b.Metrics = metrics.NoopRecorder{}
	}
	perPage := b.PostsPerPage
	if perPage <= 0 {
		perPage = geopress.DefaultPostsPerPage
	}

	fail := func(err error) (geopress.BuildRecord, error) {
		rec.Outcome = "failed"
		rec.DurationMS = time.Since(start).Milliseconds()
		b.Metrics.IncBuildOutcome(metrics.ResultFailed)
		return rec, err
	}

	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return fail(fmt.Errorf("staticgen: output dir: %w", err))
	}

	content.Sort(posts)
	featured := content.Featured(posts)
	tags := content.TagSet(posts)
	pages := 0

	render := func(route string, comp templ.Component) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.writePage(ctx, route, comp); err != nil {
			return err
		}
		pages++
		return nil
	}

	recent := posts
	if len(recent) > perPage {
		recent = recent[:perPage]
	}
	if err := render("/", b.Views.Home(featured, recent, tags, b.Site)); err != nil {
		return fail(err)
	}

	// The post index, page by page.
	totalPages := (len(posts) + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}
	for page := 1; page <= totalPages; page++ {
		slice, pg := geopress.Paginate(posts, page, perPage, "/posts/")
		route := "/posts/"
		if page > 1 {
			route = fmt.Sprintf("/posts/page/%d/", page)
		}
		if err := render(route, b.Views.Posts(slice, pg, b.Site)); err != nil {
			return fail(err)
		}
	}

	for _, post := range posts {
		comp := b.Views.Post(post, content.Related(post, posts), b.Site)
		if err := render(post.Link(), comp); err != nil {
			return fail(err)
		}
	}

	if err := render("/tags/", b.Views.Tags(tags, b.Site)); err != nil {
		return fail(err)
	}
	for _, tag := range tags {
		tagged := content.WithTag(posts, tag)
		_, pg := geopress.Paginate(tagged, 1, len(tagged), "/tags/"+tag+"/")
		if err := render("/tags/"+tag+"/", b.Views.TagPosts(tag, tagged, pg, b.Site)); err != nil {
			return fail(err)
		}
	}

	notFound, err := renderToBytes(ctx, b.Views.NotFound(b.Site))
	if err != nil {
		return fail(fmt.Errorf("staticgen: render 404 page: %w", err))
	}
	if err := b.writeFile(filepath.Join(b.OutputDir, "404.html"), notFound); err != nil {
		return fail(err)
	}
	pages++

	feed, err := geopress.RenderRSS(b.Site, posts)
	if err != nil {
		return fail(err)
	}
	if err := b.writeRaw("feed.xml", feed); err != nil {
		return fail(err)
	}
	sitemap, err := geopress.RenderSitemap(b.Site, posts)
	if err != nil {
		return fail(err)
	}
	if err := b.writeRaw("sitemap.xml", sitemap); err != nil {
		return fail(err)
	}
	if err := b.writeRaw("robots.txt", []byte(geopress.RobotsTxt(b.Site))); err != nil {
		return fail(err)
	}

	if b.StaticDir != "" {
		if err := copyTree(b.StaticDir, filepath.Join(b.OutputDir, "public")); err != nil {
			return fail(fmt.Errorf("staticgen: copy static: %w", err))
		}
	}

	rec.Pages = pages
	rec.Outcome = "success"
	rec.DurationMS = time.Since(start).Milliseconds()
	b.Metrics.ObserveBuildDuration(time.Since(start))
	b.Metrics.IncBuildOutcome(metrics.ResultSuccess)
	b.Log.Info().
		Str("build", rec.ID).
		Int("pages", rec.Pages).
		Int("posts", rec.Posts).
		Int64("took_ms", rec.DurationMS).
		Msg("static build complete")
	return rec, nil
}

func renderToBytes(ctx context.Context, comp templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := comp.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePage renders comp to <OutputDir>/<route>/index.html.
func (b *Builder) writePage(ctx context.Context, route string, comp templ.Component) error {
	var buf bytes.Buffer
	if err := comp.Render(ctx, &buf); err != nil {
		return fmt.Errorf("staticgen: render %s: %w", route, err)
	}
	dir := filepath.Join(b.OutputDir, filepath.FromSlash(route))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("staticgen: %w", err)
	}
	return b.writeFile(filepath.Join(dir, "index.html"), buf.Bytes())
}

func (b *Builder) writeRaw(name string, data []byte) error {
	return b.writeFile(filepath.Join(b.OutputDir, name), data)
}

func (b *Builder) writeFile(path string, data []byte) error {
	if b.Minify {
		out, err := minifyBytes(path, data)
		if err != nil {
			b.Log.Warn().Err(err).Str("file", path).Msg("minify failed, writing as-is")
		} else {
			data = out
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("staticgen: write %s: %w", path, err)
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.Create(target)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, in)
		return err
	})
}
