package geopress

// Site is the subset of configuration templates are allowed to see.
type Site struct {
	Name        string
	URL         string
	Description string
	Author      string
	OGImage     string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image, absolute
}

// Image is an uploaded asset: the file lives under the static dir, the row
// carries its metadata.
type Image struct {
	Filename     string
	OriginalName string
	Width        int
	Height       int
	Size         int
	UploadedAt   string
}

// BuildRecord is one static export run, kept in the builds table.
type BuildRecord struct {
	ID         string
	StartedAt  string
	DurationMS int64
	Pages      int
	Posts      int
	Outcome    string
}

// Pagination describes one page of the post index.
type Pagination struct {
	Page       int
	PerPage    int
	TotalPosts int
	TotalPages int
	BasePath   string
}

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// PrevPath returns the pretty URL of the previous page; page 1 is the bare
// base path.
func (p Pagination) PrevPath() string {
	if p.Page <= 2 {
		return p.BasePath
	}
	return pagePath(p.BasePath, p.Page-1)
}

// NextPath returns the pretty URL of the next page.
func (p Pagination) NextPath() string {
	return pagePath(p.BasePath, p.Page+1)
}

// Paginate slices items for the requested page and describes the result.
// Pages are 1-based; out-of-range pages return an empty slice.
func Paginate[T any](items []T, page, perPage int, basePath string) ([]T, Pagination) {
	if perPage <= 0 {
		perPage = DefaultPostsPerPage
	}
	if page < 1 {
		page = 1
	}
	total := len(items)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		totalPages = 1
	}

	pg := Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalPosts: total,
		TotalPages: totalPages,
		BasePath:   basePath,
	}

	start := (page - 1) * perPage
	if start >= total {
		return nil, pg
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return items[start:end], pg
}
