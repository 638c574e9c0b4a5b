// Package widget embeds the static chat widget served at the API root.
package widget

import "embed"

//go:embed index.html
var FS embed.FS

// Index returns the widget page.
func Index() ([]byte, error) {
	return FS.ReadFile("index.html")
}
