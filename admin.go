package geopress

import (
	"crypto/subtle"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/frontmatter"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if slug == "new" {
		return Render(c, a.Views.AdminEdit(content.Post{}, CsrfToken(c)))
	}
	post, err := a.Store.GetPostAny(slug)
	if err != nil {
		if err == ErrNotFound {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminEdit(post, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	if !a.loginLimiter.Check(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	// Only failures count against the window.
	a.loginLimiter.Record(c.RealIP())
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

// handleAdminSave writes the edited post back to its Markdown source file
// and re-syncs. The files stay the source of truth; the store is only ever
// rebuilt from them.
func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}

	title := strings.TrimSpace(c.FormValue("title"))
	slug := strings.TrimSpace(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return adminRedirect(c, "Slug is required. Add a title or slug.")
	}
	if !frontmatter.ValidSlug(slug) {
		return adminRedirect(c, "Slug must be lowercase-hyphenated.")
	}

	pub := time.Now().UTC()
	if date := strings.TrimSpace(c.FormValue("date")); date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return adminRedirect(c, "Invalid date format. Use YYYY-MM-DD.")
		}
		pub = t
	}

	tags := FilterEmpty(strings.Split(c.FormValue("tags"), ","))

	post := content.Post{
		Body:       c.FormValue("body"),
		SourcePath: filepath.Join(a.Config.ContentDir, slug+".md"),
	}
	post.Meta = frontmatter.Meta{
		Title:       title,
		Slug:        slug,
		PubDatetime: pub,
		Tags:        tags,
		Description: strings.TrimSpace(c.FormValue("description")),
		Featured:    c.FormValue("featured") != "",
		Draft:       c.FormValue("draft") != "",
		OGImage:     strings.TrimSpace(c.FormValue("ogImage")),
	}

	// Edits keep the file where it lives and stamp modDatetime; only the
	// publication instant survives from the existing record.
	if existing, err := a.Store.GetPostAny(slug); err == nil {
		post.SourcePath = existing.SourcePath
		post.Meta.PubDatetime = existing.Meta.PubDatetime
		post.Meta.Author = existing.Meta.Author
		now := time.Now().UTC()
		post.Meta.ModDatetime = &now
	}
	post.Meta.Normalize(a.Config.Author)

	if violations := post.Meta.Validate(); len(violations) > 0 {
		return adminRedirect(c, strings.Join(violations, "; "))
	}

	if err := content.WritePost(post); err != nil {
		return err
	}
	if _, err := a.Sync(); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "saved")
}

// handleAdminDelete removes the post's source file and re-syncs.
func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	post, err := a.Store.GetPostAny(slug)
	if err != nil {
		if err == ErrNotFound {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	if err := content.RemovePost(post); err != nil {
		return err
	}
	if _, err := a.Sync(); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) handleAdminAnalytics(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	stats, err := a.analyticsStore.Stats(time.Now().UTC(), 30)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminAnalytics(stats, CsrfToken(c)))
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts()
	if err != nil {
		return err
	}
	builds, err := a.Store.ListBuilds(10)
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, a.Problems(), builds, msg, CsrfToken(c)))
}

func adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}
