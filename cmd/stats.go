package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/biffcrash1/image-viewer/config"
	"github.com/biffcrash1/image-viewer/utils/format"
)

// statsCmd represents the stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Run: func(cmd *cobra.Command, args []string) {
		runStats()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats() {
	config.InitConfig()
	cfg := config.Get()

	app, err := bootstrap(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	stats, err := app.Catalog.GetStats(context.Background())
	if err != nil {
		log.Fatalf("Failed to read catalog stats: %v", err)
	}

	fmt.Printf("images: %d\n", stats.ImageCount)
	fmt.Printf("tags:   %d\n", stats.TagCount)
	fmt.Printf("bytes:  %s\n", format.HumanReadableSize(stats.TotalBytes))
}
