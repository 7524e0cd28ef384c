package geopress

import "embed"

// EmbeddedAssets carries the analytics beacon script served at
// /public/analytics.js.
//
//go:embed embedded/analytics.js
var EmbeddedAssets embed.FS
