package scanner

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/biffcrash1/image-viewer/database/models"
	"github.com/biffcrash1/image-viewer/database/repo/images"
	"github.com/biffcrash1/image-viewer/internal/thumbnail"
	"github.com/biffcrash1/image-viewer/internal/worker"
	"github.com/biffcrash1/image-viewer/utils/mime"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Summary reports the outcome of one scan run.
type Summary struct {
	JobID    string        `json:"job_id"`
	Added    int           `json:"added"`
	Removed  int           `json:"removed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration"`
}

// Scanner walks the library root and reconciles the catalog with the
// files on disk.
type Scanner struct {
	root       string
	imagesRepo *images.Repository
	thumbs     *thumbnail.Service
	probeLimit int

	mu      sync.Mutex
	running bool
}

// New creates a scanner over the library root. thumbs may be nil to
// skip thumbnail precompute.
func New(root string, imagesRepo *images.Repository, thumbs *thumbnail.Service, probeLimit int) *Scanner {
	if probeLimit <= 0 {
		probeLimit = 4
	}
	return &Scanner{
		root:       root,
		imagesRepo: imagesRepo,
		thumbs:     thumbs,
		probeLimit: probeLimit,
	}
}

// ErrScanInProgress is returned when a scan is already running.
var ErrScanInProgress = fmt.Errorf("scan already in progress")

// Run scans the library under a fresh job id.
func (s *Scanner) Run(ctx context.Context, prune bool) (*Summary, error) {
	return s.RunJob(ctx, uuid.NewString(), prune)
}

// RunJob scans the library. New files are cataloged; with prune set,
// records whose files are gone are removed together with their tag
// links. jobID tags the summary and the log lines so callers can
// correlate them. Only one run executes at a time.
func (s *Scanner) RunJob(ctx context.Context, jobID string, prune bool) (*Summary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	summary := &Summary{JobID: jobID}

	onDisk, err := s.walk()
	if err != nil {
		return nil, fmt.Errorf("failed to walk library root: %w", err)
	}

	knownPaths, err := s.imagesRepo.WithContext(ctx).ListRelativePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to list known paths: %w", err)
	}
	known := make(map[string]struct{}, len(knownPaths))
	for _, p := range knownPaths {
		known[p] = struct{}{}
	}

	var newPaths []string
	for p := range onDisk {
		if _, ok := known[p]; !ok {
			newPaths = append(newPaths, p)
		}
	}

	added, skipped, err := s.addNew(ctx, newPaths)
	if err != nil {
		return nil, err
	}
	summary.Added = added
	summary.Skipped = skipped

	if prune {
		var missing []string
		for _, p := range knownPaths {
			if _, ok := onDisk[p]; !ok {
				missing = append(missing, p)
			}
		}
		if len(missing) > 0 {
			removed, err := s.imagesRepo.WithContext(ctx).DeleteByRelativePaths(missing)
			if err != nil {
				return nil, fmt.Errorf("failed to remove stale records: %w", err)
			}
			summary.Removed = int(removed)

			if s.thumbs != nil {
				for _, p := range missing {
					worker.Submit(&thumbnail.RemoveTask{Service: s.thumbs, RelativePath: p})
				}
			}
		}
	}

	summary.Duration = time.Since(start)
	log.Printf("[Scanner] Job %s finished: added=%d removed=%d skipped=%d duration=%s",
		summary.JobID, summary.Added, summary.Removed, summary.Skipped, summary.Duration)
	return summary, nil
}

// walk collects the slash-form relative paths of all supported image
// files. Hidden files and directories are skipped.
func (s *Scanner) walk() (map[string]struct{}, error) {
	found := make(map[string]struct{})

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !mime.IsSupportedImage(name) {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		found[filepath.ToSlash(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// addNew probes and catalogs the given paths with bounded concurrency.
// Files that fail to stat or decode are counted as skipped.
func (s *Scanner) addNew(ctx context.Context, paths []string) (added, skipped int, err error) {
	if len(paths) == 0 {
		return 0, 0, nil
	}

	var mu sync.Mutex
	records := make([]*models.Image, 0, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.probeLimit)

	for _, relPath := range paths {
		relPath := relPath
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			record, probeErr := s.probe(relPath)
			mu.Lock()
			defer mu.Unlock()
			if probeErr != nil {
				log.Printf("[Scanner] Skipping %s: %v", relPath, probeErr)
				skipped++
				return nil
			}
			records = append(records, record)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}

	if err := s.imagesRepo.WithContext(ctx).CreateBatch(records); err != nil {
		return 0, 0, fmt.Errorf("failed to insert new records: %w", err)
	}

	if s.thumbs != nil {
		for _, record := range records {
			worker.Submit(&thumbnail.PrecomputeTask{Service: s.thumbs, RelativePath: record.RelativePath})
		}
	}

	return len(records), skipped, nil
}

// probe stats the file and reads its pixel dimensions.
func (s *Scanner) probe(relPath string) (*models.Image, error) {
	fullPath := filepath.Join(s.root, filepath.FromSlash(relPath))

	info, err := os.Stat(fullPath)
	if err != nil {
		return nil, fmt.Errorf("stat failed: %w", err)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open failed: %w", err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("decode config failed: %w", err)
	}

	return &models.Image{
		FileName:     filepath.Base(relPath),
		RelativePath: relPath,
		FileSize:     info.Size(),
		ModTime:      info.ModTime(),
		Width:        cfg.Width,
		Height:       cfg.Height,
	}, nil
}
