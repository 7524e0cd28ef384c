package analytics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubLimiter struct{ allow bool }

func (s stubLimiter) Allow(string) bool { return s.allow }

func collect(t *testing.T, h *Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/analytics/collect", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	require.NoError(t, h.Collect(e.NewContext(req, rec)))
	return rec
}

func TestCollect_SavesVisit(t *testing.T) {
	s := newTestStore(t)
	h := NewHandler(s, stubLimiter{allow: true}, zerolog.Nop())

	rec := collect(t, h, `{"path":"/posts/a/","referrer":"https://duckduckgo.com/","screen_size":"1920x1080","user_agent":"Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0"}`, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	stats, err := s.Stats(time.Now().UTC().Add(time.Minute), 1)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalViews)
	require.Equal(t, []DimensionStat{{Name: "DuckDuckGo", Count: 1}}, stats.TopReferrers)
}

func TestCollect_HonorsDoNotTrack(t *testing.T) {
	s := newTestStore(t)
	h := NewHandler(s, stubLimiter{allow: true}, zerolog.Nop())

	rec := collect(t, h, `{"path":"/posts/a/"}`, map[string]string{"DNT": "1"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	stats, err := s.Stats(time.Now().UTC().Add(time.Minute), 1)
	require.NoError(t, err)
	require.Zero(t, stats.TotalViews)
}

func TestCollect_CountsBotsSeparately(t *testing.T) {
	s := newTestStore(t)
	h := NewHandler(s, stubLimiter{allow: true}, zerolog.Nop())

	rec := collect(t, h, `{"path":"/posts/a/","user_agent":"Mozilla/5.0 (compatible; Googlebot/2.1)"}`, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	stats, err := s.Stats(time.Now().UTC().Add(time.Minute), 1)
	require.NoError(t, err)
	require.Zero(t, stats.TotalViews)
	require.Equal(t, 1, stats.BotViews)
}

func TestCollect_RateLimited(t *testing.T) {
	h := NewHandler(newTestStore(t), stubLimiter{allow: false}, zerolog.Nop())
	rec := collect(t, h, `{"path":"/posts/a/"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestCollect_RejectsOversizedFields(t *testing.T) {
	h := NewHandler(newTestStore(t), stubLimiter{allow: true}, zerolog.Nop())
	rec := collect(t, h, `{"path":"/`+strings.Repeat("x", maxPathLen)+`"}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
