package core

import (
	"context"

	"github.com/biffcrash1/image-viewer/cache"
	"github.com/biffcrash1/image-viewer/database"
	"github.com/biffcrash1/image-viewer/storage/local"
)

func checkDatabaseHealth(factory *database.Factory) string {
	if factory == nil {
		return "not initialized"
	}
	if err := factory.Ping(); err != nil {
		return "unavailable: " + err.Error()
	}
	return "ok"
}

func checkCacheHealth(cacheFactory *cache.Factory) string {
	if cacheFactory == nil {
		return "not initialized"
	}
	if cacheFactory.GetProvider() != nil {
		return "ok"
	}
	return "not initialized"
}

func checkLibraryHealth(library *local.Storage) string {
	if library == nil {
		return "not initialized"
	}
	if err := library.Health(context.Background()); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
