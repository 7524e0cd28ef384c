package views

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"github.com/eringen/geopress"
	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/frontmatter"
)

func render(t *testing.T, comp templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, comp.Render(context.Background(), &buf))
	return buf.String()
}

func testSite() geopress.Site {
	return geopress.Site{
		Name:        "Geodesy Notes",
		URL:         "https://geodesy.example",
		Description: "Field notes on coordinates.",
		Author:      "Mira Holt",
	}
}

func testPost() content.Post {
	pub := time.Date(2025, 3, 18, 9, 30, 0, 0, time.UTC)
	return content.Post{
		Meta: frontmatter.Meta{
			Slug:        "lat-lon-precision",
			Title:       "How Precise Are <Latitude> and Longitude?",
			Description: "What coordinate decimals buy you.",
			Author:      "Mira Holt",
			PubDatetime: pub,
			Tags:        []string{"geodesy"},
		},
		HTML:        "<p>rendered body</p>",
		ReadingTime: 4 * time.Minute,
	}
}

func TestDefault_ProvidesEveryView(t *testing.T) {
	v := Default()
	require.NotNil(t, v.Home)
	require.NotNil(t, v.Posts)
	require.NotNil(t, v.Post)
	require.NotNil(t, v.Tags)
	require.NotNil(t, v.TagPosts)
	require.NotNil(t, v.AdminLogin)
	require.NotNil(t, v.AdminDashboard)
	require.NotNil(t, v.AdminEdit)
	require.NotNil(t, v.AdminImages)
	require.NotNil(t, v.AdminAnalytics)
	require.NotNil(t, v.NotFound)
	require.NotNil(t, v.ServerError)
}

func TestHome_LayoutAndJSONLD(t *testing.T) {
	html := render(t, Home(nil, []content.Post{testPost()}, []string{"geodesy"}, testSite()))

	require.Contains(t, html, "<title>Geodesy Notes</title>")
	require.Contains(t, html, `"@type":"WebSite"`)
	require.Contains(t, html, `href="/posts/lat-lon-precision/"`)
	require.Contains(t, html, `src="/public/analytics.js"`)
	require.Contains(t, html, `href="/feed.xml"`)
}

func TestPost_EscapesMetaAndKeepsRenderedHTML(t *testing.T) {
	html := render(t, Post(testPost(), nil, testSite()))

	// The title is escaped everywhere it appears as text.
	require.Contains(t, html, "How Precise Are &lt;Latitude&gt; and Longitude?")
	require.NotContains(t, html, "<Latitude>")
	// The pre-rendered body passes through untouched.
	require.Contains(t, html, "<p>rendered body</p>")
	require.Contains(t, html, `"@type":"BlogPosting"`)
	require.Contains(t, html, "4 min read")
	require.Contains(t, html, `<link rel="canonical" href="https://geodesy.example/posts/lat-lon-precision/"/>`)
}

func TestTagPosts_PaginationLinks(t *testing.T) {
	pg := geopress.Pagination{Page: 2, PerPage: 1, TotalPosts: 3, TotalPages: 3, BasePath: "/tags/geodesy/"}
	html := render(t, TagPosts("geodesy", []content.Post{testPost()}, pg, testSite()))

	require.Contains(t, html, `href="/tags/geodesy/"`)
	require.Contains(t, html, `href="/tags/geodesy/page/3/"`)
}

func TestAdminEdit_PrefillsForm(t *testing.T) {
	html := render(t, AdminEdit(testPost(), "tok-123"))

	require.Contains(t, html, `value="lat-lon-precision"`)
	require.Contains(t, html, `value="2025-03-18"`)
	require.Contains(t, html, `name="_csrf" value="tok-123"`)
	require.Contains(t, html, `name="tags" value="geodesy"`)
}

func TestNotFound(t *testing.T) {
	html := render(t, NotFound(testSite()))
	require.Contains(t, html, "404")
}
