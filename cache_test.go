package geopress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eringen/geopress/content"
)

func cachedStore(t *testing.T) *Store {
	t.Helper()
	s := testStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.ReplacePosts([]content.Post{
		indexedPost("live", now.Add(-time.Hour)),
		indexedPost("soon", now.Add(10*time.Minute), func(p *content.Post) { p.Meta.Tags = []string{"maps"} }),
		indexedPost("later", now.Add(48*time.Hour)),
	}))
	return s
}

func TestPostCache_MarginShowsImminentPosts(t *testing.T) {
	s := cachedStore(t)
	c := NewPostCache(s, time.Minute, 15*time.Minute, nil)

	posts, err := c.ListPosts("")
	require.NoError(t, err)
	require.Len(t, posts, 2, "post due within the margin is already visible")

	_, err = c.GetPost("later")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPostCache_ServesStaleUntilInvalidated(t *testing.T) {
	s := cachedStore(t)
	c := NewPostCache(s, time.Hour, 0, nil)

	posts, err := c.ListPosts("")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	// The index changes underneath; the cache keeps its snapshot.
	require.NoError(t, s.ReplacePosts(nil))
	posts, err = c.ListPosts("")
	require.NoError(t, err)
	require.Len(t, posts, 1)

	c.Invalidate()
	posts, err = c.ListPosts("")
	require.NoError(t, err)
	require.Empty(t, posts)
}

func TestPostCache_TagFilterAndTags(t *testing.T) {
	s := cachedStore(t)
	c := NewPostCache(s, time.Minute, 15*time.Minute, nil)

	posts, err := c.ListPosts("maps")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "soon", posts[0].Meta.Slug)

	tags, err := c.ListTags()
	require.NoError(t, err)
	require.Equal(t, []string{"geodesy", "maps"}, tags)
}

func TestPostCache_FeaturedFromSnapshot(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()
	require.NoError(t, s.ReplacePosts([]content.Post{
		indexedPost("plain", now.Add(-time.Hour)),
		indexedPost("star", now.Add(-time.Hour), func(p *content.Post) { p.Meta.Featured = true }),
	}))
	c := NewPostCache(s, time.Minute, 0, nil)

	featured, err := c.ListFeatured()
	require.NoError(t, err)
	require.Len(t, featured, 1)
	require.Equal(t, "star", featured[0].Meta.Slug)
}
