// Package content embeds the kiosk's shipped maps and dialogue scripts.
// A content directory on disk can override either set at startup.
package content

import "embed"

//go:embed levels/*.yaml scripts/*.yaml
var contentFS embed.FS

// FS returns the embedded filesystem. Levels live under levels/, dialogue
// scripts under scripts/.
func FS() embed.FS {
	return contentFS
}
