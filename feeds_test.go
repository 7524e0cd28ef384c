package geopress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/frontmatter"
)

func feedSite() Site {
	return Site{
		Name:        "Geodesy Notes",
		URL:         "https://geodesy.example",
		Description: "Field notes on coordinates.",
		Author:      "Mira Holt",
	}
}

func feedPosts() []content.Post {
	pub := time.Date(2025, 3, 18, 9, 30, 0, 0, time.UTC)
	mod := pub.Add(48 * time.Hour)
	return []content.Post{
		{
			Meta: frontmatter.Meta{
				Slug:        "lat-lon-precision",
				Title:       "How Precise Are Latitude and Longitude?",
				Description: "What coordinate decimals buy you.",
				Author:      "Mira Holt",
				PubDatetime: pub,
				ModDatetime: &mod,
				Tags:        []string{"geodesy", "cesium"},
			},
		},
		{
			Meta: frontmatter.Meta{
				Slug:        "chords-vs-arcs",
				Title:       "Chords, Arcs, and the Distance Bug",
				Description: "Straight lines come up short.",
				Author:      "Mira Holt",
				PubDatetime: pub.Add(-time.Hour),
				Tags:        []string{"geodesy"},
			},
		},
	}
}

func TestRenderRSS(t *testing.T) {
	out, err := RenderRSS(feedSite(), feedPosts())
	require.NoError(t, err)
	feed := string(out)

	require.Contains(t, feed, "<title>Geodesy Notes</title>")
	require.Contains(t, feed, "<link>https://geodesy.example/posts/lat-lon-precision/</link>")
	require.Contains(t, feed, "<guid>https://geodesy.example/posts/lat-lon-precision/</guid>")
	require.Contains(t, feed, "<author>Mira Holt</author>")
	require.Contains(t, feed, "<category>geodesy</category>")
	require.Contains(t, feed, "<category>cesium</category>")
	require.Contains(t, feed, "Tue, 18 Mar 2025 09:30:00 +0000")
	// lastBuildDate comes from the newest post's modification time.
	require.Contains(t, feed, "<lastBuildDate>Thu, 20 Mar 2025 09:30:00 +0000</lastBuildDate>")
}

func TestRenderRSS_EmptyCorpus(t *testing.T) {
	out, err := RenderRSS(feedSite(), nil)
	require.NoError(t, err)
	require.Contains(t, string(out), "<channel>")
	require.NotContains(t, string(out), "<lastBuildDate>")
}

func TestRenderSitemap(t *testing.T) {
	out, err := RenderSitemap(feedSite(), feedPosts())
	require.NoError(t, err)
	doc := string(out)

	require.Contains(t, doc, "<loc>https://geodesy.example</loc>")
	require.Contains(t, doc, "<loc>https://geodesy.example/posts/</loc>")
	require.Contains(t, doc, "<loc>https://geodesy.example/tags/</loc>")
	require.Contains(t, doc, "<loc>https://geodesy.example/posts/lat-lon-precision/</loc>")
	// lastmod prefers modDatetime and falls back to pubDatetime.
	require.Contains(t, doc, "<lastmod>2025-03-20</lastmod>")
	require.Contains(t, doc, "<lastmod>2025-03-18</lastmod>")
}

func TestRobotsTxt(t *testing.T) {
	txt := RobotsTxt(feedSite())
	require.Contains(t, txt, "Disallow: /admin/")
	require.Contains(t, txt, "Sitemap: https://geodesy.example/sitemap.xml")
}
