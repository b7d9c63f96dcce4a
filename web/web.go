// Package web holds the embedded static assets for the dashboard.
package web

import "embed"

// FS contains the dashboard page served at the root route.
//
//go:embed index.html
var FS embed.FS
