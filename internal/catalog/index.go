package catalog

import (
	"path/filepath"
	"slices"
	"strings"
)

// KindAll disables the type dimension of a query.
const KindAll = "all"

// Index is an immutable, ordered snapshot of one load.
type Index struct {
	records []Record
}

func NewIndex(records []Record) *Index {
	return &Index{records: slices.Clone(records)}
}

// Len is safe on a nil Index.
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.records)
}

// Records returns a copy of the catalog in load order.
func (x *Index) Records() []Record {
	if x == nil {
		return nil
	}
	return slices.Clone(x.records)
}

// Lookup finds a record by ID or by the name of its directory.
func (x *Index) Lookup(id string) (Record, bool) {
	if x == nil {
		return Record{}, false
	}
	for _, record := range x.records {
		if record.ID == id {
			return record, true
		}
	}
	for _, record := range x.records {
		if filepath.Base(record.SourcePath) == id {
			return record, true
		}
	}
	return Record{}, false
}

// Query filters the whole catalog; see Filter.
func (x *Index) Query(kind string, searchText string) []Record {
	if x == nil {
		return nil
	}
	return Filter(x.records, kind, searchText)
}

// Filter keeps the records matching both the kind and the search text.
//
// kind "all" (or empty) matches every record, anything else is normalized with
// ParseKind and compared. The search text is trimmed and case-folded; when
// non-empty it must be a substring of the title or the description. The input
// is never modified and the result keeps input order.
func Filter(all []Record, kind string, searchText string) []Record {
	matchAllKinds := kind == "" || strings.EqualFold(strings.TrimSpace(kind), KindAll)
	wantKind := ParseKind(kind)
	needle := strings.ToLower(strings.TrimSpace(searchText))

	filtered := make([]Record, 0, len(all))
	for _, record := range all {
		if !matchAllKinds && record.Kind != wantKind {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(record.Title), needle) &&
			!strings.Contains(strings.ToLower(record.Description), needle) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}
