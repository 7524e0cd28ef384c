package geopress

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileEnvAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `name: Geodesy Notes
url: https://geodesy.example
description: Field notes on coordinates.
author: Mira Holt
content_dir: site-posts
posts_per_page: 4
scheduled_margin: 30m
analytics_enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	t.Setenv("SITE_AUTHOR", "Desk")
	t.Setenv("ADMIN_PASSWORD", "hunter2")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "Geodesy Notes", cfg.Name)
	require.Equal(t, "https://geodesy.example", cfg.URL)
	require.Equal(t, "Desk", cfg.Author, "environment overrides the file")
	require.Equal(t, "hunter2", cfg.AdminPassword)
	require.Equal(t, "site-posts", cfg.ContentDir)
	require.Equal(t, 4, cfg.PostsPerPage)
	require.Equal(t, 30*time.Minute, cfg.PublishMargin())

	// Untouched fields get defaults.
	require.Equal(t, ":3000", cfg.Addr)
	require.Equal(t, "dist", cfg.OutputDir)
	require.Equal(t, "data/index.db", cfg.DatabasePath)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL())
	require.Equal(t, 10*time.Minute, cfg.RescanEvery())
	require.Zero(t, cfg.GitPullEvery())
	require.Equal(t, "main", cfg.GitBranch)
	require.True(t, cfg.AnalyticsEnabled)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, "Blog", cfg.Name)
	require.Equal(t, "posts", cfg.ContentDir)
	require.Equal(t, 15*time.Minute, cfg.PublishMargin())
}

func TestLoadConfig_BadDuration_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("post_cache_ttl: whenever\n"), 0o644))

	_, err := LoadConfig(path)
	require.ErrorContains(t, err, "post_cache_ttl")
}

func TestSiteConfig_Site_ExposesTemplateSubsetOnly(t *testing.T) {
	cfg := SiteConfig{
		Name:          "Geodesy Notes",
		URL:           "https://geodesy.example",
		Author:        "Mira Holt",
		AdminPassword: "secret",
	}
	site := cfg.Site()
	require.Equal(t, "Geodesy Notes", site.Name)
	require.Equal(t, "Mira Holt", site.Author)
}

func TestPaginate_SlicesAndDescribes(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	page1, pg := Paginate(items, 1, 3, "/posts/")
	require.Equal(t, []int{1, 2, 3}, page1)
	require.Equal(t, 3, pg.TotalPages)
	require.False(t, pg.HasPrev())
	require.True(t, pg.HasNext())
	require.Equal(t, "/posts/page/2/", pg.NextPath())

	page3, pg := Paginate(items, 3, 3, "/posts/")
	require.Equal(t, []int{7}, page3)
	require.True(t, pg.HasPrev())
	require.False(t, pg.HasNext())
	require.Equal(t, "/posts/page/2/", pg.PrevPath())

	page2, pg := Paginate(items, 2, 3, "/posts/")
	require.Equal(t, []int{4, 5, 6}, page2)
	require.Equal(t, "/posts/", pg.PrevPath(), "page 2 points back at the bare index")

	empty, pg := Paginate(items, 9, 3, "/posts/")
	require.Empty(t, empty)
	require.Equal(t, 9, pg.Page)
}

func TestPaginate_EmptyCorpusStillOnePage(t *testing.T) {
	_, pg := Paginate([]int{}, 1, 10, "/posts/")
	require.Equal(t, 1, pg.TotalPages)
	require.False(t, pg.HasNext())
}
