package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/biffcrash1/image-viewer/api/core"
	"github.com/biffcrash1/image-viewer/config"
	"github.com/biffcrash1/image-viewer/internal/scanner"
	"github.com/biffcrash1/image-viewer/internal/worker"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog API server",
	Run: func(cmd *cobra.Command, args []string) {
		RunServer()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	app, err := bootstrap(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	worker.InitGlobalPool(cfg.GetWorkerCount(), 1000)

	// Optional polling watcher keeping the catalog in sync with disk.
	watcher := scanner.NewWatcher(app.Scanner, cfg.ScanPollInterval, func(summary *scanner.Summary) {
		app.Catalog.InvalidateListings(context.Background())
	})
	watcher.Start()

	deps := &core.ServerDependencies{
		DBFactory:    app.DBFactory,
		CacheFactory: app.CacheFactory,
		Catalog:      app.Catalog,
		Thumbnails:   app.Thumbnails,
		Scanner:      app.Scanner,
		Library:      app.Library,
	}

	server, cleanup := core.StartServer(deps)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	watcher.Stop()
	worker.StopGlobalPool()

	if err := app.Close(); err != nil {
		log.Printf("Error closing application: %v", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited successfully")
}
