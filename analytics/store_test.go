package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func visitAt(ts time.Time, visitor, path string) Visit {
	return Visit{
		VisitorID:  visitor,
		SessionID:  visitor + "-s",
		Browser:    "Firefox",
		OS:         "Linux",
		Device:     "Desktop",
		Path:       path,
		Referrer:   "Direct",
		ScreenSize: "1920x1080",
		Timestamp:  ts,
	}
}

func TestInitSalt_PersistsAcrossCalls(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, InitSalt(s))

	stored, err := s.GetSetting("hash_salt")
	require.NoError(t, err)
	require.NotEmpty(t, stored)
}

func TestStore_StatsAggregation(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveVisit(visitAt(now.Add(-time.Hour), "alice", "/posts/a/")))
	require.NoError(t, s.SaveVisit(visitAt(now.Add(-2*time.Hour), "alice", "/posts/b/")))
	require.NoError(t, s.SaveVisit(visitAt(now.Add(-3*time.Hour), "bob", "/posts/a/")))
	// Outside the 7 day window.
	require.NoError(t, s.SaveVisit(visitAt(now.AddDate(0, 0, -10), "carol", "/posts/a/")))
	require.NoError(t, s.SaveBotVisit(BotVisit{
		BotName: "Googlebot", UserAgent: "googlebot", Path: "/posts/a/", Timestamp: now.Add(-time.Hour),
	}))

	stats, err := s.Stats(now, 7)
	require.NoError(t, err)

	require.Equal(t, 3, stats.TotalViews)
	require.Equal(t, 2, stats.UniqueVisitors)
	require.Equal(t, 1, stats.BotViews)
	require.Len(t, stats.TopPages, 2)
	require.Equal(t, "/posts/a/", stats.TopPages[0].Path)
	require.Equal(t, 2, stats.TopPages[0].Views)
	require.Len(t, stats.Daily, 1)
	require.Equal(t, "2025-03-10", stats.Daily[0].Date)
	require.Equal(t, 3, stats.Daily[0].Views)
	require.Equal(t, []DimensionStat{{Name: "Firefox", Count: 3}}, stats.Browsers)
}

func TestStore_UpdateVisitDuration(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.SaveVisit(visitAt(now.Add(-time.Minute), "alice", "/posts/a/")))
	require.NoError(t, s.SaveVisit(visitAt(now, "alice", "/posts/a/")))
	require.NoError(t, s.UpdateVisitDuration("alice", "/posts/a/", 90))

	stats, err := s.Stats(now.Add(time.Minute), 1)
	require.NoError(t, err)
	// AVG ignores the zero-duration row, so the average is the beacon value.
	require.Equal(t, 90, stats.AvgDurationSec)
}

func TestStore_CleanupOldVisits(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.SaveVisit(visitAt(now.AddDate(0, 0, -100), "old", "/x/")))
	require.NoError(t, s.SaveVisit(visitAt(now, "new", "/x/")))
	require.NoError(t, s.CleanupOldVisits(30))

	stats, err := s.Stats(now.Add(time.Minute), 365)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalViews)
}

func TestStore_Settings(t *testing.T) {
	s := newTestStore(t)

	v, err := s.GetSetting("missing")
	require.NoError(t, err)
	require.Empty(t, v)

	require.NoError(t, s.SetSetting("k", "v1"))
	require.NoError(t, s.SetSetting("k", "v2"))
	v, err = s.GetSetting("k")
	require.NoError(t, err)
	require.Equal(t, "v2", v)
}
