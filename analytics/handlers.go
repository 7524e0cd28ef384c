package analytics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Limiter guards the collect endpoint; the engine passes its per-IP
// sliding-window limiter.
type Limiter interface {
	Allow(key string) bool
}

// Handler serves the collect beacon and the admin stats API.
type Handler struct {
	store   *Store
	limiter Limiter
	log     zerolog.Logger
}

// NewHandler creates an analytics handler.
func NewHandler(store *Store, limiter Limiter, log zerolog.Logger) *Handler {
	return &Handler{store: store, limiter: limiter, log: log}
}

// CollectRequest is the beacon payload.
type CollectRequest struct {
	Path        string `json:"path"`
	Referrer    string `json:"referrer"`
	ScreenSize  string `json:"screen_size"`
	UserAgent   string `json:"user_agent"`
	DurationSec int    `json:"duration_sec"`
}

// Input validation limits for the collect endpoint.
const (
	maxPathLen       = 2048
	maxReferrerLen   = 2048
	maxScreenSizeLen = 32
	maxUserAgentLen  = 512
	maxDurationSec   = 86400
)

func validateCollectRequest(req *CollectRequest) error {
	if len(req.Path) > maxPathLen {
		return fmt.Errorf("path exceeds maximum length of %d", maxPathLen)
	}
	if len(req.Referrer) > maxReferrerLen {
		return fmt.Errorf("referrer exceeds maximum length of %d", maxReferrerLen)
	}
	if len(req.ScreenSize) > maxScreenSizeLen {
		return fmt.Errorf("screen_size exceeds maximum length of %d", maxScreenSizeLen)
	}
	if len(req.UserAgent) > maxUserAgentLen {
		return fmt.Errorf("user_agent exceeds maximum length of %d", maxUserAgentLen)
	}
	if req.DurationSec < 0 || req.DurationSec > maxDurationSec {
		return fmt.Errorf("duration_sec out of range")
	}
	return nil
}

// Collect handles incoming beacons. Responses are deliberately
// uninformative: the endpoint is public.
func (h *Handler) Collect(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		return c.NoContent(http.StatusTooManyRequests)
	}
	if c.Request().Header.Get("DNT") == "1" {
		return c.NoContent(http.StatusNoContent)
	}

	var req CollectRequest
	if err := c.Bind(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}
	if err := validateCollectRequest(&req); err != nil {
		return c.String(http.StatusBadRequest, "Invalid request")
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.Request().UserAgent()
	}
	ip := c.RealIP()
	now := time.Now().UTC()

	if IsBot(userAgent) {
		err := h.store.SaveBotVisit(BotVisit{
			BotName:   BotName(userAgent),
			UserAgent: userAgent,
			Path:      req.Path,
			Timestamp: now,
		})
		if err != nil {
			h.log.Error().Err(err).Msg("save bot visit")
		}
		return c.NoContent(http.StatusNoContent)
	}

	visitorID := VisitorID(ip, userAgent)

	// A non-zero duration marks the unload beacon: update the visit the
	// page-load beacon created instead of inserting a duplicate.
	if req.DurationSec > 0 {
		if err := h.store.UpdateVisitDuration(visitorID, req.Path, req.DurationSec); err != nil {
			h.log.Error().Err(err).Msg("update visit duration")
		}
		return c.NoContent(http.StatusNoContent)
	}

	browser, os, device := ParseUserAgent(userAgent)
	err := h.store.SaveVisit(Visit{
		VisitorID:  visitorID,
		SessionID:  SessionID(visitorID, now),
		Browser:    browser,
		OS:         os,
		Device:     device,
		Path:       req.Path,
		Referrer:   CleanReferrer(req.Referrer),
		ScreenSize: req.ScreenSize,
		Timestamp:  now,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("save visit")
	}
	return c.NoContent(http.StatusNoContent)
}

// GetStats returns the aggregated statistics as JSON. The period query
// parameter selects the window: today, week (default), month, year.
func (h *Handler) GetStats(c echo.Context) error {
	days := periodDays(c.QueryParam("period"))
	stats, err := h.store.Stats(time.Now().UTC(), days)
	if err != nil {
		h.log.Error().Err(err).Msg("aggregate stats")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, stats)
}

func periodDays(period string) int {
	switch period {
	case "today":
		return 1
	case "month":
		return 30
	case "year":
		return 365
	default:
		return 7
	}
}

// RegisterRoutes registers the public collect endpoint and the admin-gated
// stats API.
func (h *Handler) RegisterRoutes(e *echo.Echo, authMiddleware echo.MiddlewareFunc) {
	e.POST("/api/analytics/collect", h.Collect)

	admin := e.Group("/admin/analytics")
	admin.Use(authMiddleware)
	admin.GET("/api/stats", h.GetStats)
}
