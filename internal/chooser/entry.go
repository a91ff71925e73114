// Package chooser implements the directory-navigation side of the
// terminal browser. It is the Viewer's collaborator rather than its focus:
// the fine detail of tagging/sweep-select/delete/rename is deliberately
// kept thin here, serving just enough of a real directory listing for the
// Viewer to be launched against a chosen file.
package chooser

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one row of a directory listing.
type Entry struct {
	Name    string
	IsDir   bool
	Size    int64
	ModTime time.Time
	Tagged  bool
}

// SortKey selects the field Entries are ordered by (spec: directories
// always sort before files regardless of key, matching original_source's
// CmpFileInfo, which compares "is directory" before any requested key).
type SortKey int

const (
	SortByName SortKey = iota
	SortByExtension
	SortBySize
	SortByModTime
)

// List reads dir's entries (no hidden-file filtering beyond what the OS
// itself hides) into Entry rows, unsorted.
func List(dir string) ([]Entry, error) {
	des, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			IsDir:   de.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// Sort orders entries per key, directories always first (ties within a
// group broken by case-insensitive name), reverse optionally inverting the
// non-directory-precedence part of the comparison.
func Sort(entries []Entry, key SortKey, reverse bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		less := compareByKey(a, b, key)
		if less == 0 {
			less = compareFold(a.Name, b.Name)
		}
		if reverse {
			return less > 0
		}
		return less < 0
	})
}

func compareByKey(a, b Entry, key SortKey) int {
	switch key {
	case SortByExtension:
		return compareFold(filepath.Ext(a.Name), filepath.Ext(b.Name))
	case SortBySize:
		switch {
		case a.Size < b.Size:
			return -1
		case a.Size > b.Size:
			return 1
		default:
			return 0
		}
	case SortByModTime:
		switch {
		case a.ModTime.Before(b.ModTime):
			return -1
		case a.ModTime.After(b.ModTime):
			return 1
		default:
			return 0
		}
	default:
		return 0
	}
}

func compareFold(a, b string) int {
	af, bf := strings.ToLower(a), strings.ToLower(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// Toggle flips an entry's tag state (the sweep-select mechanism); the
// tagging/sweep/delete/rename command surface itself lives in the
// interactive layer, which is outside this package's scope.
func Toggle(entries []Entry, i int) {
	if i >= 0 && i < len(entries) {
		entries[i].Tagged = !entries[i].Tagged
	}
}

// Tagged returns the subset of entries with Tagged set, in their current
// order, for bulk operations (sweep delete, multi-view) a caller drives.
func Tagged(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if e.Tagged {
			out = append(out, e)
		}
	}
	return out
}
