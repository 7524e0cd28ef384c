package content

import (
	"sort"
	"strings"
	"time"
)

// DefaultScheduledMargin is how far ahead of its pubDatetime a scheduled
// post becomes visible, so posts timed to the hour do not miss a rebuild
// that runs a few minutes early.
const DefaultScheduledMargin = 15 * time.Minute

// Visible returns the posts a public visitor may see at now: drafts are
// excluded, as are posts whose pubDatetime lies further than margin in the
// future.
func Visible(posts []Post, now time.Time, margin time.Duration) []Post {
	var out []Post
	cutoff := now.Add(margin)
	for _, p := range posts {
		if p.Meta.Draft {
			continue
		}
		if p.Meta.PubDatetime.After(cutoff) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Sort orders posts newest first, slug as tiebreak, in place.
func Sort(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].Meta.PubDatetime, posts[j].Meta.PubDatetime
		if !a.Equal(b) {
			return a.After(b)
		}
		return posts[i].Meta.Slug < posts[j].Meta.Slug
	})
}

// Featured returns the posts flagged for display priority.
func Featured(posts []Post) []Post {
	var out []Post
	for _, p := range posts {
		if p.Meta.Featured {
			out = append(out, p)
		}
	}
	return out
}

// WithTag returns the posts carrying the given tag.
func WithTag(posts []Post, tag string) []Post {
	tag = strings.ToLower(strings.TrimSpace(tag))
	var out []Post
	for _, p := range posts {
		for _, t := range p.Meta.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// TagSet returns the sorted set of tags used across posts.
func TagSet(posts []Post) []string {
	seen := map[string]bool{}
	var tags []string
	for _, p := range posts {
		for _, t := range p.Meta.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags
}

// Related returns the posts sharing at least one tag with post, excluding
// the post itself.
func Related(post Post, posts []Post) []Post {
	tags := make(map[string]bool, len(post.Meta.Tags))
	for _, t := range post.Meta.Tags {
		tags[t] = true
	}
	var out []Post
	for _, p := range posts {
		if p.Meta.Slug == post.Meta.Slug {
			continue
		}
		for _, t := range p.Meta.Tags {
			if tags[t] {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// NextPublishTime returns the earliest pubDatetime after now among
// non-draft posts, for scheduling the rescan that makes it visible.
func NextPublishTime(posts []Post, now time.Time) (time.Time, bool) {
	var next time.Time
	for _, p := range posts {
		if p.Meta.Draft || !p.Meta.PubDatetime.After(now) {
			continue
		}
		if next.IsZero() || p.Meta.PubDatetime.Before(next) {
			next = p.Meta.PubDatetime
		}
	}
	return next, !next.IsZero()
}
