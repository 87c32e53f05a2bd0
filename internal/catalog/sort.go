package catalog

import (
	"slices"
	"strings"
)

const (
	SortDateDesc = "date_desc"
	SortDateAsc  = "date_asc"
	SortNameAsc  = "name_asc"
	SortNameDesc = "name_desc"
)

// Sort returns a stably sorted copy of records. Unknown criteria fall back to
// date_desc, newest first. Records with a zero ModTime keep their relative
// order when sorting by date.
func Sort(records []Record, by string) []Record {
	sorted := slices.Clone(records)

	switch by {
	case SortDateAsc:
		slices.SortStableFunc(sorted, func(a, b Record) int { return compareModTime(a, b) })
	case SortNameAsc:
		slices.SortStableFunc(sorted, func(a, b Record) int { return compareTitle(a, b) })
	case SortNameDesc:
		slices.SortStableFunc(sorted, func(a, b Record) int { return compareTitle(b, a) })
	default:
		slices.SortStableFunc(sorted, func(a, b Record) int { return compareModTime(b, a) })
	}

	return sorted
}

func compareModTime(a, b Record) int {
	if a.ModTime.IsZero() || b.ModTime.IsZero() {
		return 0
	}
	return a.ModTime.Compare(b.ModTime)
}

func compareTitle(a, b Record) int {
	return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
}
