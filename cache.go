package geopress

import (
	"database/sql"
	"sync"
	"time"

	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/metrics"
)

// ErrNotFound is returned when a requested post does not exist.
var ErrNotFound = sql.ErrNoRows

// PostCache is an in-memory TTL cache of the visible posts and tags. The
// visibility cutoff is computed at load time; the scheduler invalidates the
// cache when a scheduled post comes due, so a stale cutoff never hides a
// post for longer than the TTL.
type PostCache struct {
	mu      sync.RWMutex
	posts   []content.Post
	tags    []string
	fetched time.Time

	ttl     time.Duration
	margin  time.Duration
	store   *Store
	metrics metrics.Recorder
}

// NewPostCache creates a PostCache backed by the given Store. margin is how
// far ahead of pubDatetime a scheduled post is considered visible.
func NewPostCache(s *Store, ttl, margin time.Duration, rec metrics.Recorder) *PostCache {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &PostCache{store: s, ttl: ttl, margin: margin, metrics: rec}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	cutoff := time.Now().Add(c.margin)
	posts, err := c.store.ListPosts("", cutoff)
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags(cutoff)
	if err != nil {
		return err
	}
	c.posts = posts
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached posts and tags after ensuring the cache is
// fresh. It tries a read lock first; only takes a write lock if a reload is
// needed.
func (c *PostCache) ensureLoaded() ([]content.Post, []string, error) {
	c.mu.RLock()
	if c.valid() {
		posts, tags := c.posts, c.tags
		c.mu.RUnlock()
		c.metrics.IncCacheEvent("posts", true)
		return posts, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics.IncCacheEvent("posts", false)
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.posts, c.tags, nil
}

// ListPosts returns the visible posts, optionally filtered by tag, newest
// first.
func (c *PostCache) ListPosts(tag string) ([]content.Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return posts, nil
	}
	return content.WithTag(posts, tag), nil
}

// ListFeatured returns the visible posts flagged featured.
func (c *PostCache) ListFeatured() ([]content.Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	return content.Featured(posts), nil
}

// ListTags returns the tags of the visible posts.
func (c *PostCache) ListTags() ([]string, error) {
	_, tags, err := c.ensureLoaded()
	return tags, err
}

// GetPost returns a single visible post by slug.
func (c *PostCache) GetPost(slug string) (content.Post, error) {
	posts, _, err := c.ensureLoaded()
	if err != nil {
		return content.Post{}, err
	}
	for _, p := range posts {
		if p.Meta.Slug == slug {
			return p, nil
		}
	}
	return content.Post{}, ErrNotFound
}
