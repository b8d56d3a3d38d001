// Package root uses the embed package to include static files.
package root

import "embed"

// Assets contains the HTML pages of the payment flow embedded from the
// assets directory.
//
//go:embed all:assets
var Assets embed.FS
