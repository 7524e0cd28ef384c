package geopress

import (
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/geopress/analytics"
	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/metrics"
)

func (a *App) setupRoutes() {
	e := a.Echo

	// The analytics beacon ships with the engine; everything else under
	// /public/ comes from the user's static dir.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/analytics.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/healthz", a.handleHealthz)
	if a.registry != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.HTTPHandler(a.registry)))
	}

	e.GET("/", a.handleHome)
	e.GET("/posts/", a.handlePosts)
	e.GET("/posts/page/:n/", a.handlePosts)
	e.GET("/posts/:slug/", a.handlePost)
	e.GET("/tags/", a.handleTags)
	e.GET("/tags/:tag/", a.handleTagPosts)

	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/:slug/", a.handleAdminPost)
	e.POST("/admin/save/", a.handleAdminSave)
	e.POST("/admin/delete/:slug/", a.handleAdminDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.POST("/admin/images/delete/:filename/", a.handleImageDelete)

	if a.Config.AnalyticsEnabled && a.analyticsStore != nil {
		handler := analytics.NewHandler(a.analyticsStore, NewRateLimiter(60, time.Minute), a.Log)
		adminOnly := func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				if !IsAdmin(c) {
					return c.Redirect(http.StatusSeeOther, "/admin/")
				}
				return next(c)
			}
		}
		handler.RegisterRoutes(e, adminOnly)
		e.GET("/admin/analytics/", a.handleAdminAnalytics)
	}
}

func (a *App) handleHome(c echo.Context) error {
	featured, err := a.Cache.ListFeatured()
	if err != nil {
		return err
	}
	recent, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	if len(recent) > a.Config.PostsPerPage {
		recent = recent[:a.Config.PostsPerPage]
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(featured, recent, tags, a.Config.Site()))
}

func (a *App) handlePosts(c echo.Context) error {
	page := 1
	if raw := c.Param("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		page = n
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	pagePosts, pg := Paginate(posts, page, a.Config.PostsPerPage, "/posts/")
	if page > 1 && len(pagePosts) == 0 {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return Render(c, a.Views.Posts(pagePosts, pg, a.Config.Site()))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	post, err := a.Cache.GetPost(slug)
	if err != nil {
		if err == ErrNotFound {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.Site()))
		}
		return err
	}
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	related := content.Related(post, posts)
	return Render(c, a.Views.Post(post, related, a.Config.Site()))
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tags(tags, a.Config.Site()))
}

func (a *App) handleTagPosts(c echo.Context) error {
	tag := c.Param("tag")
	posts, err := a.Cache.ListPosts(tag)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.Site()))
	}
	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 1 {
			page = n
		}
	}
	pagePosts, pg := Paginate(posts, page, a.Config.PostsPerPage, "/tags/"+tag+"/")
	return Render(c, a.Views.TagPosts(tag, pagePosts, pg, a.Config.Site()))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	body, err := RenderSitemap(a.Config.Site(), posts)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", body)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts("")
	if err != nil {
		return err
	}
	body, err := RenderRSS(a.Config.Site(), posts)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", body)
}

func (a *App) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, RobotsTxt(a.Config.Site()))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.Site()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError(a.Config.Site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
