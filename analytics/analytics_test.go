package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVisitorID_StableAndAnonymous(t *testing.T) {
	a := VisitorID("203.0.113.7", "Mozilla/5.0")
	b := VisitorID("203.0.113.7", "Mozilla/5.0")
	c := VisitorID("203.0.113.8", "Mozilla/5.0")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.Len(t, a, 16)
	require.NotContains(t, a, "203.0.113.7")
}

func TestSessionID_RotatesDaily(t *testing.T) {
	visitor := VisitorID("203.0.113.7", "Mozilla/5.0")
	day1 := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	day2 := day1.Add(2 * time.Minute)

	require.Equal(t, SessionID(visitor, day1), SessionID(visitor, day1.Add(-time.Hour)))
	require.NotEqual(t, SessionID(visitor, day1), SessionID(visitor, day2))
}

func TestParseUserAgent(t *testing.T) {
	cases := []struct {
		ua      string
		browser string
		os      string
		device  string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "Chrome", "Windows", "Desktop"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Gecko/20100101 Firefox/121.0", "Firefox", "macOS", "Desktop"},
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Version/17.0 Mobile/15E148 Safari/604.1", "Safari", "iOS", "Mobile"},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) Chrome/120.0 Mobile Safari/537.36", "Chrome", "Android", "Mobile"},
		{"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Version/17.0 Safari/604.1", "Safari", "iOS", "Tablet"},
		{"Mozilla/5.0 (Windows NT 10.0) Edg/120.0", "Edge", "Windows", "Desktop"},
		{"curl/8.4.0", "Other", "Other", "Desktop"},
	}
	for _, tc := range cases {
		browser, os, device := ParseUserAgent(tc.ua)
		require.Equal(t, tc.browser, browser, tc.ua)
		require.Equal(t, tc.os, os, tc.ua)
		require.Equal(t, tc.device, device, tc.ua)
	}
}

func TestIsBotAndBotName(t *testing.T) {
	require.True(t, IsBot("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))
	require.True(t, IsBot("Mozilla/5.0 (compatible; SemrushBot/7~bl)"))
	require.False(t, IsBot("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0"))

	require.Equal(t, "Googlebot", BotName("Mozilla/5.0 (compatible; Googlebot/2.1)"))
	require.Equal(t, "Other Bot", BotName("somebot/1.0"))
	require.Equal(t, "Unknown", BotName("strange-agent"))
}

func TestCleanReferrer(t *testing.T) {
	require.Equal(t, "Direct", CleanReferrer(""))
	require.Equal(t, "Google", CleanReferrer("https://www.google.com/search?q=geodesy"))
	require.Equal(t, "DuckDuckGo", CleanReferrer("https://duckduckgo.com/"))
	require.Equal(t, "GitHub", CleanReferrer("https://github.com/eringen/geopress"))
	require.Equal(t, "blog.example.org", CleanReferrer("https://www.blog.example.org/some/post"))
	require.Equal(t, "Other", CleanReferrer("not a url"))
}
