// Package thumbnail keeps small copies of wallpaper previews in the cache
// directory so that a presentation layer does not decode full-size images.
package thumbnail

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/6gh/wallpaper-select/internal/catalog"
)

// ErrNoPreview is returned for records without a preview image.
var ErrNoPreview = errors.New("wallpaper has no preview image")

type Cache struct {
	Dir    string
	Size   int
	Logger *log.Logger
}

func NewCache(dir string, size int, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{Dir: dir, Size: size, Logger: logger}
}

// PathFor is where the thumbnail of record lives:
// <cache>/<wallpaper dir name>/thumbnail.png
func (c *Cache) PathFor(record catalog.Record) string {
	return filepath.Join(c.Dir, filepath.Base(record.SourcePath), "thumbnail.png")
}

// Ensure returns the cached thumbnail for record, creating it when it is
// missing or older than the preview.
func (c *Cache) Ensure(record catalog.Record) (string, error) {
	if !record.HasPreview() {
		return "", ErrNoPreview
	}

	cachedThumbnailPath := c.PathFor(record)
	if fresh(cachedThumbnailPath, record.PreviewPath) {
		return cachedThumbnailPath, nil
	}

	img, err := imaging.Open(record.PreviewPath)
	if err != nil {
		return "", err
	}

	// fit into a Size x Size box for a uniform grid
	thumbnail := imaging.Fit(img, c.Size, c.Size, imaging.Lanczos)

	if err := os.MkdirAll(filepath.Dir(cachedThumbnailPath), 0755); err != nil {
		return "", err
	}
	if err := imaging.Save(thumbnail, cachedThumbnailPath); err != nil {
		return "", err
	}

	c.Logger.Printf("Thumbnail saved to: %s", cachedThumbnailPath)
	return cachedThumbnailPath, nil
}

// Warm ensures thumbnails for all records using up to workers goroutines.
// Records without previews are skipped; other failures are logged and counted.
func (c *Cache) Warm(ctx context.Context, records []catalog.Record, workers int) (ready int, failed int, err error) {
	if workers < 1 {
		workers = 1
	}

	results := make([]error, len(records))
	attempted := make([]bool, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, record := range records {
		i, record := i, record
		if !record.HasPreview() {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			attempted[i] = true
			if _, err := c.Ensure(record); err != nil {
				c.Logger.Printf("Error caching thumbnail for %s: %v", record.ID, err)
				results[i] = err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	for i := range records {
		if !attempted[i] {
			continue
		}
		if results[i] != nil {
			failed++
		} else {
			ready++
		}
	}
	return ready, failed, nil
}

func fresh(thumbnailPath, previewPath string) bool {
	thumbInfo, err := os.Stat(thumbnailPath)
	if err != nil {
		return false
	}
	previewInfo, err := os.Stat(previewPath)
	if err != nil {
		return true
	}
	return !thumbInfo.ModTime().Before(previewInfo.ModTime())
}
