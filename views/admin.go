package views

import (
	"bytes"
	"fmt"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/geopress"
	"github.com/eringen/geopress/analytics"
	"github.com/eringen/geopress/content"
)

// adminPage is the minimal layout for the admin area. It never loads the
// analytics beacon.
func adminPage(title string, body func(buf *bytes.Buffer)) templ.Component {
	return component(func(buf *bytes.Buffer) {
		buf.WriteString("<!DOCTYPE html><html lang=\"en\"><head>")
		buf.WriteString(`<meta charset="utf-8"/>`)
		buf.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		buf.WriteString(`<meta name="robots" content="noindex"/>`)
		buf.WriteString("<title>" + esc(title) + "</title>")
		buf.WriteString(`<link rel="stylesheet" href="/public/styles.css"/>`)
		buf.WriteString("</head><body class=\"min-h-screen bg-stone-50 text-ink dark:bg-neutral-900 dark:text-white\">")
		buf.WriteString(`<main class="mx-auto max-w-4xl px-4 py-8">`)
		body(buf)
		buf.WriteString(`</main></body></html>`)
	})
}

func csrfField(buf *bytes.Buffer, token string) {
	buf.WriteString(`<input type="hidden" name="_csrf" value="` + esc(token) + `"/>`)
}

func adminNav(buf *bytes.Buffer, csrfToken string) {
	buf.WriteString(`<nav class="mb-8 flex items-center gap-4 text-sm">`)
	buf.WriteString(`<a href="/admin/" class="font-semibold hover:underline">Dashboard</a>`)
	buf.WriteString(`<a href="/admin/images/" class="hover:underline">Images</a>`)
	buf.WriteString(`<a href="/admin/analytics/" class="hover:underline">Analytics</a>`)
	buf.WriteString(`<a href="/" class="hover:underline">View Site</a>`)
	buf.WriteString(`<form method="POST" action="/admin/logout/" class="ml-auto">`)
	csrfField(buf, csrfToken)
	buf.WriteString(`<button type="submit" class="hover:underline">Log out</button></form>`)
	buf.WriteString(`</nav>`)
}

// AdminLogin renders the password prompt.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return adminPage("Admin Login", func(buf *bytes.Buffer) {
		buf.WriteString(`<h1 class="text-2xl font-bold">Admin</h1>`)
		if showError {
			buf.WriteString(`<p class="mt-4 rounded bg-red-100 px-3 py-2 text-red-800">Wrong password, or too many attempts.</p>`)
		}
		buf.WriteString(`<form method="POST" action="/admin/login/" class="mt-6 flex max-w-sm flex-col gap-3">`)
		csrfField(buf, csrfToken)
		buf.WriteString(`<input type="password" name="password" placeholder="Password" autofocus class="rounded border px-3 py-2"/>`)
		buf.WriteString(`<button type="submit" class="rounded bg-ink px-4 py-2 text-white">Log in</button>`)
		buf.WriteString(`</form>`)
	})
}

// AdminDashboard lists every post (drafts and scheduled included), the
// problems from the last sync, and the recent static builds.
func AdminDashboard(posts []content.Post, problems []content.Problem, builds []geopress.BuildRecord, message, csrfToken string) templ.Component {
	return adminPage("Dashboard", func(buf *bytes.Buffer) {
		adminNav(buf, csrfToken)
		if message != "" {
			buf.WriteString(`<p class="mb-6 rounded bg-amber-100 px-3 py-2 text-amber-900">` + esc(message) + `</p>`)
		}
		if len(problems) > 0 {
			buf.WriteString(`<div class="mb-6 rounded border border-red-300 bg-red-50 p-4">`)
			buf.WriteString(`<h2 class="font-semibold text-red-800">Content problems</h2><ul class="mt-2 text-sm text-red-700">`)
			for _, p := range problems {
				buf.WriteString(`<li><code>` + esc(p.Path) + `</code>: ` + esc(p.Message) + `</li>`)
			}
			buf.WriteString(`</ul></div>`)
		}

		buf.WriteString(`<div class="flex items-center justify-between">`)
		buf.WriteString(`<h1 class="text-2xl font-bold">Posts</h1>`)
		buf.WriteString(`<a href="/admin/post/new/" class="rounded bg-ink px-4 py-2 text-sm text-white">New Post</a>`)
		buf.WriteString(`</div>`)

		buf.WriteString(`<table class="mt-4 w-full text-left text-sm"><thead><tr class="border-b">`)
		buf.WriteString(`<th class="py-2">Title</th><th>Published</th><th>Status</th><th></th>`)
		buf.WriteString(`</tr></thead><tbody>`)
		now := time.Now()
		for _, p := range posts {
			buf.WriteString(`<tr class="border-b">`)
			buf.WriteString(`<td class="py-2"><a href="/admin/post/` + PathEscape(p.Meta.Slug) + `/" class="hover:underline">` + esc(p.Meta.Title) + `</a></td>`)
			buf.WriteString(`<td>` + esc(formatDate(p.Meta.PubDatetime)) + `</td>`)
			buf.WriteString(`<td>` + esc(postStatus(p, now)) + `</td>`)
			buf.WriteString(`<td><form method="POST" action="/admin/delete/` + PathEscape(p.Meta.Slug) + `/" onsubmit="return confirm('Delete this post?')">`)
			csrfField(buf, csrfToken)
			buf.WriteString(`<button type="submit" class="text-red-600 hover:underline">Delete</button></form></td>`)
			buf.WriteString(`</tr>`)
		}
		buf.WriteString(`</tbody></table>`)

		if len(builds) > 0 {
			buf.WriteString(`<h2 class="mt-10 text-lg font-semibold">Recent builds</h2>`)
			buf.WriteString(`<table class="mt-2 w-full text-left text-sm"><thead><tr class="border-b">`)
			buf.WriteString(`<th class="py-2">Started</th><th>Pages</th><th>Posts</th><th>Took</th><th>Outcome</th>`)
			buf.WriteString(`</tr></thead><tbody>`)
			for _, b := range builds {
				buf.WriteString(`<tr class="border-b">`)
				buf.WriteString(`<td class="py-2">` + esc(b.StartedAt) + `</td>`)
				buf.WriteString(`<td>` + fmt.Sprint(b.Pages) + `</td>`)
				buf.WriteString(`<td>` + fmt.Sprint(b.Posts) + `</td>`)
				buf.WriteString(`<td>` + fmt.Sprintf("%dms", b.DurationMS) + `</td>`)
				buf.WriteString(`<td>` + esc(b.Outcome) + `</td>`)
				buf.WriteString(`</tr>`)
			}
			buf.WriteString(`</tbody></table>`)
		}
	})
}

func postStatus(p content.Post, now time.Time) string {
	switch {
	case p.Meta.Draft:
		return "draft"
	case p.Meta.PubDatetime.After(now):
		return "scheduled"
	default:
		return "published"
	}
}

// AdminEdit renders the post editor. An empty slug means a new post.
func AdminEdit(post content.Post, csrfToken string) templ.Component {
	title := "Edit Post"
	if post.Meta.Slug == "" {
		title = "New Post"
	}
	return adminPage(title, func(buf *bytes.Buffer) {
		adminNav(buf, csrfToken)
		buf.WriteString(`<h1 class="text-2xl font-bold">` + esc(title) + `</h1>`)
		buf.WriteString(`<form method="POST" action="/admin/save/" class="mt-6 flex flex-col gap-4">`)
		csrfField(buf, csrfToken)

		field := func(label, name, value, typ string) {
			buf.WriteString(`<label class="flex flex-col gap-1 text-sm"><span class="font-semibold">` + label + `</span>`)
			buf.WriteString(`<input type="` + typ + `" name="` + name + `" value="` + esc(value) + `" class="rounded border px-3 py-2"/></label>`)
		}
		field("Title", "title", post.Meta.Title, "text")
		field("Slug", "slug", post.Meta.Slug, "text")
		date := ""
		if !post.Meta.PubDatetime.IsZero() {
			date = post.Meta.PubDatetime.Format("2006-01-02")
		}
		field("Publish date", "date", date, "date")
		field("Tags (comma separated)", "tags", JoinTags(post.Meta.Tags), "text")
		field("Description", "description", post.Meta.Description, "text")
		field("Social image", "ogImage", post.Meta.OGImage, "text")

		buf.WriteString(`<label class="flex flex-col gap-1 text-sm"><span class="font-semibold">Body</span>`)
		buf.WriteString(`<textarea name="body" rows="20" class="rounded border px-3 py-2 font-mono">` + esc(post.Body) + `</textarea></label>`)

		checkbox := func(label, name string, checked bool) {
			buf.WriteString(`<label class="flex items-center gap-2 text-sm"><input type="checkbox" name="` + name + `" value="1"`)
			if checked {
				buf.WriteString(` checked`)
			}
			buf.WriteString(`/> ` + label + `</label>`)
		}
		checkbox("Featured", "featured", post.Meta.Featured)
		checkbox("Draft", "draft", post.Meta.Draft)

		buf.WriteString(`<button type="submit" class="self-start rounded bg-ink px-4 py-2 text-white">Save</button>`)
		buf.WriteString(`</form>`)
	})
}

// AdminImages renders the upload form and the asset list.
func AdminImages(images []geopress.Image, csrfToken string) templ.Component {
	return adminPage("Images", func(buf *bytes.Buffer) {
		adminNav(buf, csrfToken)
		buf.WriteString(`<h1 class="text-2xl font-bold">Images</h1>`)

		buf.WriteString(`<form method="POST" action="/admin/images/upload/" enctype="multipart/form-data" class="mt-6 flex items-center gap-3">`)
		csrfField(buf, csrfToken)
		buf.WriteString(`<input type="file" name="image" accept="image/*"/>`)
		buf.WriteString(`<button type="submit" class="rounded bg-ink px-4 py-2 text-sm text-white">Upload</button>`)
		buf.WriteString(`</form>`)

		buf.WriteString(`<table class="mt-6 w-full text-left text-sm"><thead><tr class="border-b">`)
		buf.WriteString(`<th class="py-2">Preview</th><th>Filename</th><th>Dimensions</th><th>Size</th><th></th>`)
		buf.WriteString(`</tr></thead><tbody>`)
		for _, img := range images {
			buf.WriteString(`<tr class="border-b">`)
			buf.WriteString(`<td class="py-2"><img src="/public/uploads/` + esc(img.Filename) + `" alt="` + esc(img.OriginalName) + `" class="h-16 w-auto rounded"/></td>`)
			buf.WriteString(`<td><code>` + esc(img.Filename) + `</code></td>`)
			buf.WriteString(`<td>` + fmt.Sprintf("%dx%d", img.Width, img.Height) + `</td>`)
			buf.WriteString(`<td>` + fmt.Sprintf("%d KB", img.Size/1024) + `</td>`)
			buf.WriteString(`<td><form method="POST" action="/admin/images/delete/` + PathEscape(img.Filename) + `/" onsubmit="return confirm('Delete this image?')">`)
			csrfField(buf, csrfToken)
			buf.WriteString(`<button type="submit" class="text-red-600 hover:underline">Delete</button></form></td>`)
			buf.WriteString(`</tr>`)
		}
		buf.WriteString(`</tbody></table>`)
	})
}

// AdminAnalytics renders the traffic dashboard from pre-aggregated stats.
func AdminAnalytics(stats analytics.Stats, csrfToken string) templ.Component {
	return adminPage("Analytics", func(buf *bytes.Buffer) {
		adminNav(buf, csrfToken)
		buf.WriteString(`<h1 class="text-2xl font-bold">Analytics</h1>`)
		buf.WriteString(`<p class="mt-1 text-sm text-stone-500">` + esc(stats.Period) + `</p>`)

		stat := func(label string, value int) {
			buf.WriteString(`<div class="rounded border p-4"><p class="text-sm text-stone-500">` + label + `</p>`)
			buf.WriteString(`<p class="text-2xl font-bold">` + fmt.Sprint(value) + `</p></div>`)
		}
		buf.WriteString(`<div class="mt-6 grid grid-cols-2 gap-4 md:grid-cols-4">`)
		stat("Unique visitors", stats.UniqueVisitors)
		stat("Page views", stats.TotalViews)
		stat("Bot views", stats.BotViews)
		stat("Avg seconds on page", stats.AvgDurationSec)
		buf.WriteString(`</div>`)

		breakdown := func(title string, rows []analytics.DimensionStat) {
			buf.WriteString(`<div><h2 class="text-lg font-semibold">` + title + `</h2><table class="mt-2 w-full text-left text-sm"><tbody>`)
			for _, r := range rows {
				buf.WriteString(`<tr class="border-b"><td class="py-1">` + esc(r.Name) + `</td><td class="text-right">` + fmt.Sprint(r.Count) + `</td></tr>`)
			}
			buf.WriteString(`</tbody></table></div>`)
		}

		buf.WriteString(`<div class="mt-8 grid gap-8 md:grid-cols-2">`)
		buf.WriteString(`<div><h2 class="text-lg font-semibold">Top pages</h2><table class="mt-2 w-full text-left text-sm"><tbody>`)
		for _, p := range stats.TopPages {
			buf.WriteString(`<tr class="border-b"><td class="py-1"><code>` + esc(p.Path) + `</code></td><td class="text-right">` + fmt.Sprint(p.Views) + `</td></tr>`)
		}
		buf.WriteString(`</tbody></table></div>`)
		breakdown("Referrers", stats.TopReferrers)
		breakdown("Browsers", stats.Browsers)
		breakdown("Devices", stats.Devices)
		buf.WriteString(`</div>`)

		if len(stats.Daily) > 0 {
			buf.WriteString(`<h2 class="mt-8 text-lg font-semibold">Daily views</h2><table class="mt-2 w-full text-left text-sm"><tbody>`)
			for _, d := range stats.Daily {
				buf.WriteString(`<tr class="border-b"><td class="py-1">` + esc(d.Date) + `</td><td class="text-right">` + fmt.Sprint(d.Views) + `</td></tr>`)
			}
			buf.WriteString(`</tbody></table>`)
		}
	})
}
