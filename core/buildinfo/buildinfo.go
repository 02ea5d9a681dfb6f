// Package buildinfo carries version stamps injected at link time, e.g.
//
//	go build -ldflags "-X github.com/m3rciful/navmenu/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/navmenu/core/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import "strings"

var (
	// Version is the release tag.
	Version = "dev"
	// Commit is the short source revision.
	Commit = "local"
	// Date is the build time in RFC3339, empty for local builds.
	Date = ""
)

// Summary renders the stamps as "dev (local)" or "v0.3.0 (abc123, 2026-01-02T10:00:00Z)".
func Summary() string {
	parts := []string{Commit}
	if Date != "" {
		parts = append(parts, Date)
	}
	return Version + " (" + strings.Join(parts, ", ") + ")"
}
