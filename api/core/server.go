package core

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/biffcrash1/image-viewer/api/common"
	"github.com/biffcrash1/image-viewer/api/handler/images"
	"github.com/biffcrash1/image-viewer/api/handler/maintenance"
	"github.com/biffcrash1/image-viewer/api/handler/tags"
	"github.com/biffcrash1/image-viewer/api/middleware"
	"github.com/biffcrash1/image-viewer/cache"
	"github.com/biffcrash1/image-viewer/config"
	"github.com/biffcrash1/image-viewer/database"
	"github.com/biffcrash1/image-viewer/internal/catalog"
	"github.com/biffcrash1/image-viewer/internal/scanner"
	"github.com/biffcrash1/image-viewer/internal/thumbnail"
	"github.com/biffcrash1/image-viewer/storage/local"
)

var startTime = time.Now()

// ServerDependencies holds everything the router needs.
type ServerDependencies struct {
	DBFactory    *database.Factory
	CacheFactory *cache.Factory
	Catalog      *catalog.Service
	Thumbnails   *thumbnail.Service
	Scanner      *scanner.Scanner
	Library      *local.Storage
}

func setupRouter(deps *ServerDependencies) (*gin.Engine, func()) {
	cfg := config.Get()
	router := gin.New()

	if config.IsDevelopment() {
		router.Use(gin.Logger())
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://" + cfg.Addr()},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.SetTrustedProxies(nil)

	imageRateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitImageRPS, cfg.RateLimitImageBurst, cfg.RateLimitExpireTime)
	cleanup := func() {
		imageRateLimiter.StopCleanup()
	}

	router.GET("/health", func(context *gin.Context) {
		health := gin.H{
			"status":  "ok",
			"uptime":  time.Since(startTime).Round(time.Second).String(),
			"version": config.Version,
			"checks": gin.H{
				"database": checkDatabaseHealth(deps.DBFactory),
				"cache":    checkCacheHealth(deps.CacheFactory),
				"library":  checkLibraryHealth(deps.Library),
			},
		}
		httpStatus := http.StatusOK
		for _, checkResult := range health["checks"].(gin.H) {
			if result, ok := checkResult.(string); ok && result != "ok" {
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}
		context.JSON(httpStatus, health)
	})
	router.GET("/version", func(context *gin.Context) {
		common.RespondSuccess(context, gin.H{
			"version": config.Version,
			"commit":  config.CommitHash,
		})
	})

	imageHandler := images.NewHandler(deps.Catalog, deps.Thumbnails, deps.Library, cfg.PageSizeDefault, cfg.PageSizeMax)
	tagHandler := tags.NewHandler(deps.Catalog)
	maintenanceHandler := maintenance.NewHandler(deps.Catalog, deps.Scanner)

	// Image bytes, rate limited per client.
	publicGroup := router.Group("/images")
	publicGroup.Use(imageRateLimiter.Middleware())
	{
		publicGroup.GET("/:id/file", imageHandler.GetFile)           // GET /images/{id}/file
		publicGroup.GET("/:id/thumbnail", imageHandler.GetThumbnail) // GET /images/{id}/thumbnail?width=N
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(func(context *gin.Context) {
		context.Header("Cache-Control", "no-store")
		context.Next()
	})
	{
		v1 := apiGroup.Group("/v1")
		{
			imagesGroup := v1.Group("/images")
			{
				imagesGroup.POST("", imageHandler.ListImages)         // POST /api/v1/images
				imagesGroup.GET("/:id", imageHandler.GetImage)        // GET /api/v1/images/{id}
				imagesGroup.POST("/tags", imageHandler.TagImages)     // POST /api/v1/images/tags
				imagesGroup.POST("/rating", imageHandler.SetRating)   // POST /api/v1/images/rating
			}

			v1.GET("/tags", tagHandler.ListUsed)              // GET /api/v1/tags
			v1.POST("/scan", maintenanceHandler.TriggerScan)  // POST /api/v1/scan
			v1.GET("/stats", maintenanceHandler.GetStats)     // GET /api/v1/stats
		}
	}

	return router, cleanup
}

// StartServer builds the http.Server and the middleware cleanup.
func StartServer(deps *ServerDependencies) (*http.Server, func()) {
	cfg := config.Get()
	router, clean := setupRouter(deps)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return srv, clean
}
