package cmd

import (
	"fmt"
	"log"

	"github.com/biffcrash1/image-viewer/cache"
	"github.com/biffcrash1/image-viewer/config"
	"github.com/biffcrash1/image-viewer/database"
	imagesRepo "github.com/biffcrash1/image-viewer/database/repo/images"
	tagsRepo "github.com/biffcrash1/image-viewer/database/repo/tags"
	"github.com/biffcrash1/image-viewer/internal/catalog"
	"github.com/biffcrash1/image-viewer/internal/scanner"
	"github.com/biffcrash1/image-viewer/internal/thumbnail"
	"github.com/biffcrash1/image-viewer/storage/local"
)

// App wires the application components together.
type App struct {
	DBFactory    *database.Factory
	CacheFactory *cache.Factory
	Library      *local.Storage
	ThumbStore   *local.Storage
	ImagesRepo   *imagesRepo.Repository
	TagsRepo     *tagsRepo.Repository
	Thumbnails   *thumbnail.Service
	Catalog      *catalog.Service
	Scanner      *scanner.Scanner
}

// bootstrap builds and migrates everything the commands share.
func bootstrap(cfg *config.Config) (*App, error) {
	dbFactory, err := database.NewFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := dbFactory.AutoMigrate(); err != nil {
		dbFactory.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	cacheFactory, err := cache.NewFactory(cfg)
	if err != nil {
		dbFactory.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	library, err := local.NewStorage(cfg.LibraryRoot)
	if err != nil {
		cacheFactory.Close()
		dbFactory.Close()
		return nil, fmt.Errorf("failed to open library root: %w", err)
	}
	thumbStore, err := local.NewStorage(cfg.ThumbnailPath())
	if err != nil {
		cacheFactory.Close()
		dbFactory.Close()
		return nil, fmt.Errorf("failed to open thumbnail store: %w", err)
	}

	db := dbFactory.GetProvider().DB()
	imgRepo := imagesRepo.NewRepository(db)
	tgRepo := tagsRepo.NewRepository(db)

	thumbs, err := thumbnail.NewService(library, thumbStore, cacheFactory.GetProvider(), cfg.ThumbnailWidths, cfg.ThumbnailJPEGQuality)
	if err != nil {
		cacheFactory.Close()
		dbFactory.Close()
		return nil, fmt.Errorf("failed to initialize thumbnail service: %w", err)
	}

	catalogService := catalog.NewService(imgRepo, tgRepo, cacheFactory.GetProvider(), cfg.QueryCacheTTL)
	sc := scanner.New(cfg.LibraryRoot, imgRepo, thumbs, cfg.GetWorkerCount())

	return &App{
		DBFactory:    dbFactory,
		CacheFactory: cacheFactory,
		Library:      library,
		ThumbStore:   thumbStore,
		ImagesRepo:   imgRepo,
		TagsRepo:     tgRepo,
		Thumbnails:   thumbs,
		Catalog:      catalogService,
		Scanner:      sc,
	}, nil
}

// Close shuts the shared components down in order.
func (a *App) Close() error {
	var lastErr error
	if a.CacheFactory != nil {
		if err := a.CacheFactory.Close(); err != nil {
			log.Printf("Error closing cache: %v", err)
			lastErr = err
		}
	}
	if a.DBFactory != nil {
		if err := a.DBFactory.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
			lastErr = err
		}
	}
	return lastErr
}
