package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/biffcrash1/image-viewer/config"
	"github.com/biffcrash1/image-viewer/internal/worker"
	"github.com/biffcrash1/image-viewer/utils/format"
)

var scanPrune bool

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan the library into the catalog",
	Long: `Scan walks the library root and catalogs new image files.
With --prune, records whose files are gone are removed as well.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 1 {
			viper.Set("library_root", args[0])
		}
		runScan()
	},
}

func init() {
	scanCmd.Flags().BoolVar(&scanPrune, "prune", true, "remove records for missing files")
	rootCmd.AddCommand(scanCmd)
}

func runScan() {
	config.InitConfig()
	cfg := config.Get()

	app, err := bootstrap(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	worker.InitGlobalPool(cfg.GetWorkerCount(), 1000)
	defer worker.StopGlobalPool()

	summary, err := app.Scanner.Run(context.Background(), scanPrune)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}
	if summary.Added > 0 || summary.Removed > 0 {
		app.Catalog.InvalidateListings(context.Background())
	}

	stats, err := app.Catalog.GetStats(context.Background())
	if err != nil {
		log.Fatalf("Failed to read catalog stats: %v", err)
	}

	fmt.Printf("Scan %s finished in %s\n", summary.JobID, summary.Duration.Round(time.Millisecond))
	fmt.Printf("  added:   %d\n", summary.Added)
	fmt.Printf("  removed: %d\n", summary.Removed)
	fmt.Printf("  skipped: %d\n", summary.Skipped)
	fmt.Printf("Catalog now holds %d images (%s)\n", stats.ImageCount, format.HumanReadableSize(stats.TotalBytes))
}
