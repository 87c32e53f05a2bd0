package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DescriptorExt is the extension of the per-item metadata file.
const DescriptorExt = ".json"

// PreviewExts lists preview image extensions in priority order.
var PreviewExts = []string{".jpg", ".jpeg", ".png", ".gif"}

// ErrNoDescriptor means the directory holds no descriptor and is therefore
// not a wallpaper item.
var ErrNoDescriptor = errors.New("no descriptor file")

// ItemParseError reports an item that has a descriptor which could not be read
// or decoded. The loader skips such items.
type ItemParseError struct {
	Dir string
	Err error
}

func (e *ItemParseError) Error() string {
	return fmt.Sprintf("failed to parse wallpaper %s: %v", filepath.Base(e.Dir), e.Err)
}

func (e *ItemParseError) Unwrap() error {
	return e.Err
}

// Parse reads the descriptor inside itemDir and returns the normalized record.
//
// It returns ErrNoDescriptor when itemDir has no *.json file, and an
// *ItemParseError when the directory or the descriptor cannot be read or the
// descriptor is not a JSON object. When several descriptors exist the
// lexicographically first one is used.
func Parse(itemDir string) (Record, error) {
	absDir, err := filepath.Abs(itemDir)
	if err != nil {
		return Record{}, &ItemParseError{Dir: itemDir, Err: err}
	}

	info, err := os.Stat(absDir)
	if err != nil {
		return Record{}, &ItemParseError{Dir: absDir, Err: err}
	}
	if !info.IsDir() {
		return Record{}, &ItemParseError{Dir: absDir, Err: errors.New("not a directory")}
	}

	// os.ReadDir sorts by filename, which makes both the descriptor tie-break
	// and the preview lookup deterministic.
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return Record{}, &ItemParseError{Dir: absDir, Err: err}
	}

	descriptor := findDescriptor(entries)
	if descriptor == "" {
		return Record{}, ErrNoDescriptor
	}

	data, err := os.ReadFile(filepath.Join(absDir, descriptor))
	if err != nil {
		return Record{}, &ItemParseError{Dir: absDir, Err: err}
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, &ItemParseError{Dir: absDir, Err: fmt.Errorf("%s: %w", descriptor, err)}
	}

	dirName := filepath.Base(absDir)
	record := Record{
		ID:          stringField(fields, "id", dirName),
		Title:       stringField(fields, "title", dirName),
		Description: stringField(fields, "description", ""),
		Kind:        ParseKind(stringField(fields, "type", "")),
		Tags:        stringsField(fields, "tags"),
		SourcePath:  absDir,
		PreviewPath: findPreview(absDir, entries),
		ModTime:     info.ModTime(),
	}

	return record, nil
}

func findDescriptor(entries []os.DirEntry) string {
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), DescriptorExt) {
			return entry.Name()
		}
	}
	return ""
}

// Extension order wins over filename order.
func findPreview(dir string, entries []os.DirEntry) string {
	for _, ext := range PreviewExts {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				return filepath.Join(dir, entry.Name())
			}
		}
	}
	return ""
}

// stringField returns fallback when the key is absent, not a string, or blank.
func stringField(fields map[string]json.RawMessage, key string, fallback string) string {
	raw, ok := fields[key]
	if !ok {
		return fallback
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback
	}
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func stringsField(fields map[string]json.RawMessage, key string) []string {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}
