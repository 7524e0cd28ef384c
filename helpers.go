package geopress

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/eringen/geopress/frontmatter"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	return frontmatter.Slugify(s)
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// pagePath returns the pretty URL of page n under basePath, e.g.
// /posts/page/2/.
func pagePath(basePath string, n int) string {
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return fmt.Sprintf("%spage/%d/", basePath, n)
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits
// if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatal().Str("var", key).Msg("required environment variable is not set")
	}
	return v
}
