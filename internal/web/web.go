// Package web embeds the HTML templates and stylesheet of the calculator
// page.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS

//go:embed assets/style.css
var Assets embed.FS
