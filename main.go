package main

import (
	"log"

	"github.com/biffcrash1/image-viewer/cmd"
	"github.com/biffcrash1/image-viewer/config"
)

func main() {
	log.Printf("image-viewer %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
