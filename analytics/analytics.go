// Package analytics provides privacy-first page view collection: visitors
// are salted hashes, IPs are never stored, Do Not Track is honored, and
// crawlers are counted separately from people.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// salt holds the per-installation random salt for hashing, protected by
// sync.Once. It lives in the settings table so visitor IDs stay stable
// across restarts.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates the persistent hashing salt. Must be called
// once at startup before any requests are served.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("analytics: read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("analytics: generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("analytics: store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

func getSalt() string {
	return salt.value
}

// Visit is a single human page view.
type Visit struct {
	ID          int64
	VisitorID   string
	SessionID   string
	Browser     string
	OS          string
	Device      string
	Path        string
	Referrer    string
	ScreenSize  string
	Timestamp   time.Time
	DurationSec int
}

// BotVisit is a single crawler page view.
type BotVisit struct {
	ID        int64
	BotName   string
	UserAgent string
	Path      string
	Timestamp time.Time
}

// Stats is the aggregation the dashboard and JSON API serve.
type Stats struct {
	Period         string          `json:"period"`
	UniqueVisitors int             `json:"unique_visitors"`
	TotalViews     int             `json:"total_views"`
	BotViews       int             `json:"bot_views"`
	AvgDurationSec int             `json:"avg_duration_sec"`
	TopPages       []PageStat      `json:"top_pages"`
	TopReferrers   []DimensionStat `json:"top_referrers"`
	Browsers       []DimensionStat `json:"browsers"`
	Devices        []DimensionStat `json:"devices"`
	Daily          []DailyCount    `json:"daily_views"`
}

// PageStat counts views of one path.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// DimensionStat is one slice of a breakdown (browser, device, referrer).
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyCount is the views of one day.
type DailyCount struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// VisitorID derives the anonymous visitor fingerprint from IP and
// User-Agent. Without the salt the inputs cannot be recovered.
func VisitorID(ip, userAgent string) string {
	h := sha256.New()
	h.Write([]byte(getSalt() + ip + "|" + userAgent))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// SessionID derives a per-day session identifier for a visitor.
func SessionID(visitorID string, day time.Time) string {
	h := sha256.New()
	h.Write([]byte(visitorID + "|" + day.UTC().Format("2006-01-02")))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ParseUserAgent extracts browser, OS, and device class from a User-Agent
// string. Order matters throughout: the generic tokens hide inside the
// specific ones.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}

	return
}

var botTokens = []string{
	"bot", "crawler", "spider", "crawl", "slurp", "scrape",
	"googlebot", "bingbot", "yandex", "baidu", "duckduckbot",
	"facebookexternalhit", "twitterbot", "linkedinbot",
	"ahrefsbot", "semrushbot", "mj12bot", "dotbot",
}

// IsBot reports whether the User-Agent is likely a crawler.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	for _, token := range botTokens {
		if strings.Contains(ua, token) {
			return true
		}
	}
	return false
}

var botNames = map[string]string{
	"googlebot":           "Googlebot",
	"bingbot":             "Bingbot",
	"yandex":              "Yandex",
	"baidu":               "Baidu",
	"duckduckbot":         "DuckDuckBot",
	"facebookexternalhit": "Facebook",
	"twitterbot":          "Twitterbot",
	"linkedinbot":         "LinkedIn",
	"ahrefsbot":           "Ahrefs",
	"semrushbot":          "SEMrush",
	"mj12bot":             "Majestic",
	"dotbot":              "Moz",
	"slurp":               "Yahoo Slurp",
	"crawler":             "Generic Crawler",
	"spider":              "Generic Spider",
}

// BotName extracts a crawler's display name from its User-Agent.
func BotName(ua string) string {
	ua = strings.ToLower(ua)
	for token, name := range botNames {
		if strings.Contains(ua, token) {
			return name
		}
	}
	if strings.Contains(ua, "bot") {
		return "Other Bot"
	}
	return "Unknown"
}

var referrerDomainRegex = regexp.MustCompile(`^https?://(?:www\.)?([^/]+)`)

// CleanReferrer reduces a referrer URL to a display name: the search engine
// when recognizable, the bare domain otherwise.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}

	refLower := strings.ToLower(ref)
	switch {
	case strings.Contains(refLower, "google."):
		return "Google"
	case strings.Contains(refLower, "bing."):
		return "Bing"
	case strings.Contains(refLower, "duckduckgo."):
		return "DuckDuckGo"
	case strings.Contains(refLower, "yahoo."):
		return "Yahoo"
	case strings.Contains(refLower, "github."):
		return "GitHub"
	}

	matches := referrerDomainRegex.FindStringSubmatch(ref)
	if len(matches) > 1 {
		return matches[1]
	}
	return "Other"
}
