package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/biffcrash1/image-viewer/config"
)

// tagsCmd represents the tags command
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List used tags with image counts",
	Run: func(cmd *cobra.Command, args []string) {
		runTags()
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
}

func runTags() {
	config.InitConfig()
	cfg := config.Get()

	app, err := bootstrap(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Close()

	usages, err := app.Catalog.UsedTags(context.Background())
	if err != nil {
		log.Fatalf("Failed to list tags: %v", err)
	}

	if len(usages) == 0 {
		fmt.Println("No tags in use")
		return
	}
	for _, usage := range usages {
		fmt.Printf("%-30s %d\n", usage.Name, usage.Count)
	}
}
