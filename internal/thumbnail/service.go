package thumbnail

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"sort"
	"strconv"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"

	"github.com/biffcrash1/image-viewer/cache"
	"github.com/biffcrash1/image-viewer/storage/local"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// cacheTTL bounds how long rendered thumbnails stay in memory.
const cacheTTL = time.Hour

// Service renders and caches downscaled previews. Rendered files are
// kept on disk under hashed names; a memory cache fronts the disk
// store and singleflight collapses concurrent renders of the same
// thumbnail.
type Service struct {
	library *local.Storage
	store   *local.Storage
	cache   cache.Provider
	widths  []int
	quality int
	group   singleflight.Group
}

// NewService creates a thumbnail service. widths must be non-empty.
func NewService(library, store *local.Storage, cacheProvider cache.Provider, widths []int, quality int) (*Service, error) {
	if len(widths) == 0 {
		return nil, fmt.Errorf("no thumbnail widths configured")
	}
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	sorted := make([]int, len(widths))
	copy(sorted, widths)
	sort.Ints(sorted)

	return &Service{
		library: library,
		store:   store,
		cache:   cacheProvider,
		widths:  sorted,
		quality: quality,
	}, nil
}

// SnapWidth returns the configured width nearest to requested.
// requested <= 0 snaps to the smallest width.
func (s *Service) SnapWidth(requested int) int {
	if requested <= 0 {
		return s.widths[0]
	}

	best := s.widths[0]
	bestDiff := abs(requested - best)
	for _, w := range s.widths[1:] {
		if diff := abs(requested - w); diff < bestDiff {
			best = w
			bestDiff = diff
		}
	}
	return best
}

// Widths returns the configured width set in ascending order.
func (s *Service) Widths() []int {
	return s.widths
}

// Get returns the JPEG bytes of the thumbnail for relativePath at the
// snapped width, rendering it when neither the memory cache nor the
// disk store has it.
func (s *Service) Get(ctx context.Context, relativePath string, requestedWidth int) ([]byte, int, error) {
	width := s.SnapWidth(requestedWidth)
	identifier := StoreIdentifier(relativePath, width)
	key := cache.Thumbnail.Build(identifier)

	if s.cache != nil {
		var data []byte
		if err := s.cache.Get(ctx, key, &data); err == nil {
			return data, width, nil
		}
	}

	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.loadOrRender(ctx, relativePath, identifier, width)
	})
	if err != nil {
		return nil, 0, err
	}

	data := value.([]byte)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data, cacheTTL); err != nil {
			log.Printf("[Thumbnail] Failed to cache %s: %v", identifier, err)
		}
	}
	return data, width, nil
}

// Precompute renders the thumbnail for every configured width,
// skipping ones already on disk.
func (s *Service) Precompute(ctx context.Context, relativePath string) {
	for _, width := range s.widths {
		identifier := StoreIdentifier(relativePath, width)
		exists, err := s.store.Exists(ctx, identifier)
		if err != nil || exists {
			continue
		}
		if _, err := s.loadOrRender(ctx, relativePath, identifier, width); err != nil {
			log.Printf("[Thumbnail] Precompute failed for %s width=%d: %v", relativePath, width, err)
		}
	}
}

// Remove deletes the stored thumbnails for relativePath.
func (s *Service) Remove(ctx context.Context, relativePath string) {
	for _, width := range s.widths {
		identifier := StoreIdentifier(relativePath, width)
		if s.cache != nil {
			_ = s.cache.Delete(ctx, cache.Thumbnail.Build(identifier))
		}
		exists, err := s.store.Exists(ctx, identifier)
		if err != nil || !exists {
			continue
		}
		if err := s.store.DeleteWithContext(ctx, identifier); err != nil {
			log.Printf("[Thumbnail] Failed to delete %s: %v", identifier, err)
		}
	}
}

func (s *Service) loadOrRender(ctx context.Context, relativePath, identifier string, width int) ([]byte, error) {
	exists, err := s.store.Exists(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if exists {
		reader, err := s.store.GetWithContext(ctx, identifier)
		if err != nil {
			return nil, err
		}
		defer reader.Close()

		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(reader); err != nil {
			return nil, fmt.Errorf("failed to read stored thumbnail '%s': %w", identifier, err)
		}
		return buf.Bytes(), nil
	}

	data, err := s.render(ctx, relativePath, width)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveWithContext(ctx, identifier, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store thumbnail '%s': %w", identifier, err)
	}
	return data, nil
}

// render decodes the original and downscales it preserving aspect
// ratio. Originals narrower than width are re-encoded unscaled.
func (s *Service) render(ctx context.Context, relativePath string, width int) ([]byte, error) {
	reader, err := s.library.GetWithContext(ctx, relativePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open original '%s': %w", relativePath, err)
	}
	defer reader.Close()

	src, _, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode original '%s': %w", relativePath, err)
	}

	bounds := src.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()

	dst := src
	if srcW > width && srcW > 0 {
		height := srcH * width / srcW
		if height < 1 {
			height = 1
		}
		scaled := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)
		dst = scaled
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, dst, &jpeg.Options{Quality: s.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail for '%s': %w", relativePath, err)
	}
	return buf.Bytes(), nil
}

// StoreIdentifier returns the flat on-disk name for a thumbnail:
// sha256 of the relative path plus the width.
func StoreIdentifier(relativePath string, width int) string {
	sum := sha256.Sum256([]byte(relativePath))
	return hex.EncodeToString(sum[:]) + "_" + strconv.Itoa(width) + ".jpg"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
