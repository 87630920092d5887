package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/biffcrash1/image-viewer/cache"
	"github.com/biffcrash1/image-viewer/database/models"
	"github.com/biffcrash1/image-viewer/database/repo/images"
	"github.com/biffcrash1/image-viewer/database/repo/tags"
)

// ErrNotFound is returned when an image does not exist.
var ErrNotFound = errors.New("image not found")

// ListResult is a cached page of the filtered listing.
type ListResult struct {
	Images []*models.Image `json:"images"`
	Total  int64           `json:"total"`
}

// Stats summarizes the catalog.
type Stats struct {
	ImageCount int64 `json:"image_count"`
	TagCount   int64 `json:"tag_count"`
	TotalBytes int64 `json:"total_bytes"`
}

// Service is the catalog facade over the repositories and the cache.
// Listing pages are cached under a version counter: every mutation
// bumps the version, so stale pages are never served.
type Service struct {
	imagesRepo *images.Repository
	tagsRepo   *tags.Repository
	cache      cache.Provider
	listTTL    time.Duration
}

// NewService creates the catalog service. cacheProvider may be nil to
// disable caching.
func NewService(imagesRepo *images.Repository, tagsRepo *tags.Repository, cacheProvider cache.Provider, listTTL time.Duration) *Service {
	if listTTL <= 0 {
		listTTL = 10 * time.Minute
	}
	return &Service{
		imagesRepo: imagesRepo,
		tagsRepo:   tagsRepo,
		cache:      cacheProvider,
		listTTL:    listTTL,
	}
}

// ListImages returns a filtered page, served from cache when the
// current listing version has it.
func (s *Service) ListImages(ctx context.Context, filter images.ListFilter) (*ListResult, error) {
	key := s.listKey(ctx, filter)

	if s.cache != nil && key != "" {
		var cached ListResult
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	imageList, total, err := s.imagesRepo.WithContext(ctx).List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	result := &ListResult{Images: imageList, Total: total}
	if s.cache != nil && key != "" {
		if err := s.cache.Set(ctx, key, result, s.listTTL); err != nil {
			log.Printf("[Catalog] Failed to cache listing: %v", err)
		}
	}
	return result, nil
}

// GetImage fetches one image with its tags.
func (s *Service) GetImage(ctx context.Context, id uint) (*models.Image, error) {
	image, err := s.imagesRepo.WithContext(ctx).GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get image %d: %w", id, err)
	}
	return image, nil
}

// TagImages adds and removes tag names over a batch of image IDs.
// Added tags are created as needed; tags left unused afterwards are
// pruned.
func (s *Service) TagImages(ctx context.Context, ids []uint, add, remove []string) error {
	if len(ids) == 0 || (len(add) == 0 && len(remove) == 0) {
		return nil
	}

	if len(add) > 0 {
		tagList, err := s.tagsRepo.WithContext(ctx).GetOrCreateByNames(add)
		if err != nil {
			return fmt.Errorf("failed to resolve tags: %w", err)
		}
		if err := s.imagesRepo.WithContext(ctx).AddTags(ids, tagList); err != nil {
			return fmt.Errorf("failed to add tags: %w", err)
		}
	}

	if len(remove) > 0 {
		if err := s.imagesRepo.WithContext(ctx).RemoveTagsByName(ids, remove); err != nil {
			return fmt.Errorf("failed to remove tags: %w", err)
		}
		if _, err := s.tagsRepo.WithContext(ctx).PruneUnused(); err != nil {
			return fmt.Errorf("failed to prune unused tags: %w", err)
		}
	}

	s.InvalidateListings(ctx)
	return nil
}

// SetRating sets the rating for a batch of image IDs.
func (s *Service) SetRating(ctx context.Context, ids []uint, rating int) (int64, error) {
	updated, err := s.imagesRepo.WithContext(ctx).SetRating(ids, rating)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.InvalidateListings(ctx)
	}
	return updated, nil
}

// UsedTags returns tags attached to at least one image, with counts.
func (s *Service) UsedTags(ctx context.Context) ([]*tags.TagUsage, error) {
	key := cache.TagList.Build("used")

	if s.cache != nil {
		var cached []*tags.TagUsage
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	usages, err := s.tagsRepo.WithContext(ctx).ListUsed()
	if err != nil {
		return nil, fmt.Errorf("failed to list used tags: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, usages, s.listTTL); err != nil {
			log.Printf("[Catalog] Failed to cache tag list: %v", err)
		}
	}
	return usages, nil
}

// GetStats returns catalog statistics, cached until the next mutation.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	key := cache.Stats.Build()

	if s.cache != nil {
		var cached Stats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	imageCount, err := s.imagesRepo.WithContext(ctx).Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count images: %w", err)
	}
	tagCount, err := s.tagsRepo.WithContext(ctx).Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count tags: %w", err)
	}
	totalBytes, err := s.imagesRepo.WithContext(ctx).TotalFileSize()
	if err != nil {
		return nil, fmt.Errorf("failed to sum file sizes: %w", err)
	}

	stats := &Stats{
		ImageCount: imageCount,
		TagCount:   tagCount,
		TotalBytes: totalBytes,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, s.listTTL); err != nil {
			log.Printf("[Catalog] Failed to cache stats: %v", err)
		}
	}
	return stats, nil
}

// InvalidateListings retires every cached listing page, the tag list,
// and the stats entry.
func (s *Service) InvalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.bumpVersion(ctx)
	if err := s.cache.Delete(ctx, cache.TagList.Build("used")); err != nil {
		log.Printf("[Catalog] Failed to invalidate tag list: %v", err)
	}
	if err := s.cache.Delete(ctx, cache.Stats.Build()); err != nil {
		log.Printf("[Catalog] Failed to invalidate stats: %v", err)
	}
}

// listKey builds a version-scoped key for the filter. An empty key
// disables caching for this call.
func (s *Service) listKey(ctx context.Context, filter images.ListFilter) string {
	if s.cache == nil {
		return ""
	}

	data, err := json.Marshal(filter)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)

	return cache.ImageList.Build(strconv.FormatUint(s.version(ctx), 10), hex.EncodeToString(sum[:16]))
}

// version reads the listing version, initializing it on first use.
func (s *Service) version(ctx context.Context) uint64 {
	key := cache.ImageListVersion.Build()

	var v uint64
	if err := s.cache.Get(ctx, key, &v); err == nil {
		return v
	}

	if err := s.cache.Set(ctx, key, uint64(1), 0); err != nil {
		log.Printf("[Catalog] Failed to initialize listing version: %v", err)
	}
	return 1
}

// bumpVersion advances the listing version, retiring all cached pages.
func (s *Service) bumpVersion(ctx context.Context) {
	key := cache.ImageListVersion.Build()
	next := s.version(ctx) + 1
	if err := s.cache.Set(ctx, key, next, 0); err != nil {
		log.Printf("[Catalog] Failed to bump listing version: %v", err)
	}
}
