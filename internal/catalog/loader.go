package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// ErrCatalogUnavailable means no usable wallpaper root could be read. It is
// distinct from a successful load that found zero wallpapers.
var ErrCatalogUnavailable = errors.New("wallpaper catalog unavailable")

// Loader scans a wallpaper root into an Index.
type Loader struct {
	// Workers bounds how many item directories are parsed at once.
	Workers int
	Logger  *log.Logger
}

// LoadResult is delivered once per Load call.
type LoadResult struct {
	Root    string
	Index   *Index
	Skipped int
	Err     error
}

func NewLoader(workers int, logger *log.Logger) *Loader {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{Workers: workers, Logger: logger}
}

// ResolveRoot returns the first candidate that exists and is a directory.
func ResolveRoot(candidates []string) (string, error) {
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		info, err := os.Stat(candidate)
		if err == nil && info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: none of %d candidate directories exist", ErrCatalogUnavailable, len(candidates))
}

// Load resolves the root from candidates and scans it on a separate
// goroutine. The returned channel yields exactly one result and is then closed.
func (l *Loader) Load(ctx context.Context, candidates []string) <-chan LoadResult {
	done := make(chan LoadResult, 1)

	go func() {
		defer close(done)

		root, err := ResolveRoot(candidates)
		if err != nil {
			l.Logger.Printf("No wallpaper directory found: %v", err)
			done <- LoadResult{Err: err}
			return
		}

		index, skipped, err := l.Scan(ctx, root)
		done <- LoadResult{Root: root, Index: index, Skipped: skipped, Err: err}
	}()

	return done
}

// Scan reads the immediate subdirectories of root and parses each of them.
//
// Items without a descriptor are ignored; items whose descriptor cannot be
// parsed are logged and counted in skipped. Records keep directory order.
func (l *Loader) Scan(ctx context.Context, root string) (*Index, int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s is not a directory", ErrCatalogUnavailable, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	type slot struct {
		record Record
		ok     bool
		failed bool
	}
	slots := make([]slot, len(entries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.Workers)

	for i, entry := range entries {
		i, entry := i, entry
		itemDir := filepath.Join(root, entry.Name())
		if !isDir(itemDir, entry) {
			l.Logger.Printf("Skipping non-directory entry: %s", entry.Name())
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			record, err := Parse(itemDir)
			switch {
			case err == nil:
				slots[i] = slot{record: record, ok: true}
			case errors.Is(err, ErrNoDescriptor):
				l.Logger.Printf("No descriptor found for %s, skipping", entry.Name())
			default:
				l.Logger.Printf("Skipping wallpaper: %v", err)
				slots[i] = slot{failed: true}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	records := make([]Record, 0, len(entries))
	skipped := 0
	for _, s := range slots {
		if s.ok {
			records = append(records, s.record)
		}
		if s.failed {
			skipped++
		}
	}

	l.Logger.Printf("Loaded %d wallpapers from %s (%d skipped)", len(records), root, skipped)
	return NewIndex(records), skipped, nil
}

// isDir follows symlinks, which Steam libraries on other disks often are.
func isDir(path string, entry os.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
