// Package views ships the default templ component set for geopress. Every
// page is a templ.ComponentFunc writing plain HTML, so users can replace
// any of them through geopress.ViewFuncs without touching the engine.
package views

import (
	"bytes"
	"context"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/eringen/geopress"
)

// Default returns the complete built-in view set.
func Default() geopress.ViewFuncs {
	return geopress.ViewFuncs{
		Home:           Home,
		Posts:          Posts,
		Post:           Post,
		Tags:           Tags,
		TagPosts:       TagPosts,
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		AdminEdit:      AdminEdit,
		AdminImages:    AdminImages,
		AdminAnalytics: AdminAnalytics,
		NotFound:       NotFound,
		ServerError:    ServerError,
	}
}

func component(render func(buf *bytes.Buffer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		render(&buf)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

func esc(s string) string { return html.EscapeString(s) }

// page wraps body in the shared layout: head with SEO and OpenGraph tags,
// header navigation, footer, and the analytics beacon.
func page(meta geopress.PageMeta, site geopress.Site, jsonLD string, body func(buf *bytes.Buffer)) templ.Component {
	return component(func(buf *bytes.Buffer) {
		buf.WriteString("<!DOCTYPE html><html lang=\"en\"><head>")
		buf.WriteString(`<meta charset="utf-8"/>`)
		buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		buf.WriteString("<title>" + esc(meta.Title) + "</title>")
		if meta.Description != "" {
			buf.WriteString(`<meta name="description" content="` + esc(meta.Description) + `"/>`)
		}
		if meta.URL != "" {
			buf.WriteString(`<link rel="canonical" href="` + esc(meta.URL) + `"/>`)
			buf.WriteString(`<meta property="og:url" content="` + esc(meta.URL) + `"/>`)
		}
		buf.WriteString(`<meta property="og:title" content="` + esc(meta.Title) + `"/>`)
		if meta.Description != "" {
			buf.WriteString(`<meta property="og:description" content="` + esc(meta.Description) + `"/>`)
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		buf.WriteString(`<meta property="og:type" content="` + esc(ogType) + `"/>`)
		buf.WriteString(`<meta property="og:site_name" content="` + esc(site.Name) + `"/>`)
		if meta.Image != "" {
			buf.WriteString(`<meta property="og:image" content="` + esc(meta.Image) + `"/>`)
		}
		buf.WriteString(`<link rel="icon" href="/favicon.svg" type="image/svg+xml"/>`)
		buf.WriteString(`<link rel="alternate" type="application/rss+xml" title="` + esc(site.Name) + `" href="/feed.xml"/>`)
		buf.WriteString(`<link rel="stylesheet" href="/public/styles.css"/>`)
		if jsonLD != "" {
			buf.WriteString(`<script type="application/ld+json">` + jsonLD + `</script>`)
		}
		buf.WriteString("</head><body class=\"min-h-screen bg-stone-50 text-ink dark:bg-neutral-900 dark:text-white\">")

		buf.WriteString(`<header class="mx-auto max-w-3xl px-4 py-6"><nav class="flex items-center justify-between">`)
		buf.WriteString(`<a href="/" class="text-xl font-bold">` + esc(site.Name) + `</a>`)
		buf.WriteString(`<div class="flex gap-4 text-sm">`)
		buf.WriteString(`<a href="/posts/" class="hover:underline">Posts</a>`)
		buf.WriteString(`<a href="/tags/" class="hover:underline">Tags</a>`)
		buf.WriteString(`<a href="/feed.xml" class="hover:underline">RSS</a>`)
		buf.WriteString(`</div></nav></header>`)

		buf.WriteString(`<main class="mx-auto max-w-3xl px-4 pb-16">`)
		body(buf)
		buf.WriteString(`</main>`)

		buf.WriteString(`<footer class="mx-auto max-w-3xl px-4 py-8 text-sm text-stone-500">`)
		buf.WriteString(`<p>&copy; ` + esc(site.Author) + `</p>`)
		buf.WriteString(`</footer>`)
		buf.WriteString(`<script src="/public/analytics.js" defer></script>`)
		buf.WriteString("</body></html>")
	})
}
