package main

import (
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"

	"github.com/iafilius/MPEViewer/src/types"
)

const (
	prefRecentFiles = "recentFiles"
	prefDegree      = "degree"
	maxRecentFiles  = 10
)

// recentFiles returns the remembered workbooks that still exist, newest first.
func recentFiles(a fyne.App) []string {
	raw := a.Preferences().StringWithFallback(prefRecentFiles, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func addRecentFile(a fyne.App, path string) {
	filtered := []string{path}
	for _, f := range recentFiles(a) {
		if f != path && len(filtered) < maxRecentFiles {
			filtered = append(filtered, f)
		}
	}
	a.Preferences().SetString(prefRecentFiles, strings.Join(filtered, "\n"))
}

func clearRecentFiles(a fyne.App) {
	a.Preferences().SetString(prefRecentFiles, "")
}

// loadDegree returns the last selected degree, or fallback when none or no
// longer offered.
func loadDegree(a fyne.App, fallback string) string {
	d := a.Preferences().StringWithFallback(prefDegree, fallback)
	for _, known := range types.Degrees {
		if d == known {
			return d
		}
	}
	return fallback
}

func saveDegree(a fyne.App, d string) {
	a.Preferences().SetString(prefDegree, d)
}

// truncatePath shortens p to about n characters, keeping the file name.
func truncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if left <= 0 {
		return "..." + base
	}
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + ".../" + base
}
