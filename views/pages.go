package views

import (
	"bytes"

	"github.com/a-h/templ"

	"github.com/eringen/geopress"
	"github.com/eringen/geopress/content"
)

func postCard(buf *bytes.Buffer, p content.Post) {
	buf.WriteString(`<article class="border-b border-stone-200 py-6">`)
	buf.WriteString(`<h2 class="text-lg font-semibold"><a href="` + esc(p.Link()) + `" class="hover:underline">` + esc(p.Meta.Title) + `</a></h2>`)
	buf.WriteString(`<p class="mt-1 text-sm text-stone-500">` + esc(formatDate(p.Meta.PubDatetime)) + ` &middot; ` + esc(readingLabel(p)) + `</p>`)
	if p.Meta.Description != "" {
		buf.WriteString(`<p class="mt-2 text-stone-700 dark:text-stone-300">` + esc(p.Meta.Description) + `</p>`)
	}
	if len(p.Meta.Tags) > 0 {
		buf.WriteString(`<div class="mt-3 flex flex-wrap gap-2">`)
		for _, tag := range p.Meta.Tags {
			buf.WriteString(`<a href="/tags/` + PathEscape(tag) + `/" class="` + TagClass(false) + `">` + esc(tag) + `</a>`)
		}
		buf.WriteString(`</div>`)
	}
	buf.WriteString(`</article>`)
}

func paginationNav(buf *bytes.Buffer, pg geopress.Pagination) {
	if !pg.HasPrev() && !pg.HasNext() {
		return
	}
	buf.WriteString(`<nav class="mt-8 flex justify-between text-sm">`)
	if pg.HasPrev() {
		buf.WriteString(`<a href="` + esc(pg.PrevPath()) + `" class="hover:underline">&larr; Newer</a>`)
	} else {
		buf.WriteString(`<span></span>`)
	}
	if pg.HasNext() {
		buf.WriteString(`<a href="` + esc(pg.NextPath()) + `" class="hover:underline">Older &rarr;</a>`)
	}
	buf.WriteString(`</nav>`)
}

// Home renders the landing page: featured posts, recent posts, and the tag
// cloud.
func Home(featured, recent []content.Post, tags []string, site geopress.Site) templ.Component {
	meta := geopress.PageMeta{
		Title:       site.Name,
		Description: site.Description,
		URL:         buildURL(site.URL),
		OGType:      "website",
		Image:       ogImage(site, ""),
	}
	return page(meta, site, WebsiteJsonLD(site), func(buf *bytes.Buffer) {
		if site.Description != "" {
			buf.WriteString(`<p class="text-lg text-stone-600 dark:text-stone-300">` + esc(site.Description) + `</p>`)
		}
		if len(featured) > 0 {
			buf.WriteString(`<h2 class="mt-10 text-sm font-semibold uppercase tracking-widest text-stone-500">Featured</h2>`)
			for _, p := range featured {
				postCard(buf, p)
			}
		}
		buf.WriteString(`<h2 class="mt-10 text-sm font-semibold uppercase tracking-widest text-stone-500">Recent Posts</h2>`)
		if len(recent) == 0 {
			buf.WriteString(`<p class="mt-4 text-stone-500">Nothing published yet.</p>`)
		}
		for _, p := range recent {
			postCard(buf, p)
		}
		buf.WriteString(`<p class="mt-6"><a href="/posts/" class="underline decoration-2 underline-offset-4">All posts &rarr;</a></p>`)
		if len(tags) > 0 {
			buf.WriteString(`<div class="mt-10 flex flex-wrap gap-2">`)
			for _, tag := range tags {
				buf.WriteString(`<a href="/tags/` + PathEscape(tag) + `/" class="` + TagClass(false) + `">` + esc(tag) + `</a>`)
			}
			buf.WriteString(`</div>`)
		}
	})
}

// Posts renders one page of the chronological post index.
func Posts(posts []content.Post, pg geopress.Pagination, site geopress.Site) templ.Component {
	meta := geopress.PageMeta{
		Title:       "Posts | " + site.Name,
		Description: site.Description,
		URL:         buildURL(site.URL, "posts"),
		OGType:      "website",
	}
	return page(meta, site, "", func(buf *bytes.Buffer) {
		buf.WriteString(`<h1 class="text-2xl font-bold">Posts</h1>`)
		for _, p := range posts {
			postCard(buf, p)
		}
		paginationNav(buf, pg)
	})
}

// Post renders a single article with its related posts.
func Post(post content.Post, related []content.Post, site geopress.Site) templ.Component {
	meta := geopress.PageMeta{
		Title:       post.Meta.Title + " | " + site.Name,
		Description: post.Meta.Description,
		URL:         buildURL(site.URL, "posts", post.Meta.Slug),
		OGType:      "article",
		Image:       ogImage(site, post.Meta.OGImage),
	}
	return page(meta, site, BlogPostingJsonLD(site, post), func(buf *bytes.Buffer) {
		buf.WriteString(`<article>`)
		buf.WriteString(`<h1 class="text-3xl font-bold">` + esc(post.Meta.Title) + `</h1>`)
		buf.WriteString(`<p class="mt-2 text-sm text-stone-500">` + esc(formatDate(post.Meta.PubDatetime)))
		if author := post.Meta.Author; author != "" {
			buf.WriteString(` &middot; ` + esc(author))
		}
		buf.WriteString(` &middot; ` + esc(readingLabel(post)) + `</p>`)
		if len(post.Meta.Tags) > 0 {
			buf.WriteString(`<div class="mt-3 flex flex-wrap gap-2">`)
			for _, tag := range post.Meta.Tags {
				buf.WriteString(`<a href="/tags/` + PathEscape(tag) + `/" class="` + TagClass(false) + `">` + esc(tag) + `</a>`)
			}
			buf.WriteString(`</div>`)
		}
		// Post.HTML comes from the site author's own Markdown files and is
		// written out raw, unescaped and unsanitized.
		buf.WriteString(`<div class="prose mt-8 dark:prose-invert">`)
		buf.WriteString(post.HTML)
		buf.WriteString(`</div>`)
		buf.WriteString(`</article>`)

		if len(related) > 0 {
			buf.WriteString(`<h2 class="mt-12 text-sm font-semibold uppercase tracking-widest text-stone-500">Related Posts</h2>`)
			buf.WriteString(`<ul class="mt-4 space-y-2">`)
			for _, p := range related {
				buf.WriteString(`<li><a href="` + esc(p.Link()) + `" class="hover:underline">` + esc(p.Meta.Title) + `</a></li>`)
			}
			buf.WriteString(`</ul>`)
		}
	})
}

// Tags renders the tag directory.
func Tags(tags []string, site geopress.Site) templ.Component {
	meta := geopress.PageMeta{
		Title:  "Tags | " + site.Name,
		URL:    buildURL(site.URL, "tags"),
		OGType: "website",
	}
	return page(meta, site, "", func(buf *bytes.Buffer) {
		buf.WriteString(`<h1 class="text-2xl font-bold">Tags</h1>`)
		if len(tags) == 0 {
			buf.WriteString(`<p class="mt-4 text-stone-500">No tags yet.</p>`)
			return
		}
		buf.WriteString(`<div class="mt-6 flex flex-wrap gap-2">`)
		for _, tag := range tags {
			buf.WriteString(`<a href="/tags/` + PathEscape(tag) + `/" class="` + TagClass(false) + `">` + esc(tag) + `</a>`)
		}
		buf.WriteString(`</div>`)
	})
}

// TagPosts renders the post index filtered to one tag.
func TagPosts(tag string, posts []content.Post, pg geopress.Pagination, site geopress.Site) templ.Component {
	meta := geopress.PageMeta{
		Title:  "Tag: " + tag + " | " + site.Name,
		URL:    buildURL(site.URL, "tags", tag),
		OGType: "website",
	}
	return page(meta, site, "", func(buf *bytes.Buffer) {
		buf.WriteString(`<h1 class="text-2xl font-bold">Tag: ` + esc(tag) + `</h1>`)
		for _, p := range posts {
			postCard(buf, p)
		}
		paginationNav(buf, pg)
	})
}

// NotFound is the 404 page.
func NotFound(site geopress.Site) templ.Component {
	meta := geopress.PageMeta{Title: "Not Found | " + site.Name, OGType: "website"}
	return page(meta, site, "", func(buf *bytes.Buffer) {
		buf.WriteString(`<h1 class="text-2xl font-bold">404</h1>`)
		buf.WriteString(`<p class="mt-4">That page does not exist. <a href="/" class="underline decoration-2 underline-offset-4">Back home</a>.</p>`)
	})
}

// ServerError is the 500 page.
func ServerError(site geopress.Site) templ.Component {
	meta := geopress.PageMeta{Title: "Error | " + site.Name, OGType: "website"}
	return page(meta, site, "", func(buf *bytes.Buffer) {
		buf.WriteString(`<h1 class="text-2xl font-bold">Something went wrong</h1>`)
		buf.WriteString(`<p class="mt-4">Try again in a moment, or head <a href="/" class="underline decoration-2 underline-offset-4">back home</a>.</p>`)
	})
}
