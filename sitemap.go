package geopress

import (
	"bytes"
	"encoding/xml"
	"time"

	"github.com/eringen/geopress/content"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// RenderSitemap produces the sitemap document: the home page, the post and
// tag indexes, and every post with its last-modified date.
func RenderSitemap(site Site, posts []content.Post) ([]byte, error) {
	urls := []sitemapURL{
		{Loc: BuildURL(site.URL)},
		{Loc: BuildURL(site.URL, "posts")},
		{Loc: BuildURL(site.URL, "tags")},
	}
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(site.URL, "posts", p.Meta.Slug),
			LastMod: p.LastModified().UTC().Format(time.DateOnly),
		})
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RobotsTxt renders the robots file pointing crawlers at the sitemap.
func RobotsTxt(site Site) string {
	return "User-agent: *\nAllow: /\nDisallow: /admin/\n\nSitemap: " +
		site.URL + "/sitemap.xml\n"
}
