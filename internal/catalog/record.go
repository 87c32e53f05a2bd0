// Package catalog builds the wallpaper index from a workshop content
// directory and answers type/text queries over it.
//
// A catalog is produced by one load and replaced wholesale by the next;
// nothing in this package mutates an Index after it has been built.
package catalog

import (
	"strings"
	"time"
)

// Kind is the normalized wallpaper type.
type Kind int

const (
	KindUnknown Kind = iota
	KindScene
	KindWeb
	KindVideo
	KindOther
)

var kindNames = map[Kind]string{
	KindUnknown: "unknown",
	KindScene:   "scene",
	KindWeb:     "web",
	KindVideo:   "video",
	KindOther:   "other",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// ParseKind normalizes a raw descriptor type. Matching is case-insensitive;
// anything unrecognized is KindUnknown.
func ParseKind(raw string) Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "scene":
		return KindScene
	case "web":
		return KindWeb
	case "video":
		return KindVideo
	case "other", "application":
		return KindOther
	default:
		return KindUnknown
	}
}

// Record is one parsed wallpaper item. Values are never modified after Parse
// returns them.
type Record struct {
	ID          string
	Title       string
	Description string
	Kind        Kind
	Tags        []string

	// SourcePath is the absolute item directory; it is also what the
	// renderer is given.
	SourcePath string
	// PreviewPath is empty when the directory holds no preview image.
	PreviewPath string

	ModTime time.Time
}

// HasPreview reports whether a preview image was found.
func (r Record) HasPreview() bool {
	return r.PreviewPath != ""
}
