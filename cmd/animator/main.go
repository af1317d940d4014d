package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title Shot Animator API
// @version 1.0
// @description Submits image-to-video generation jobs and tracks them until they finish.
// @BasePath /

var rootCmd = &cobra.Command{
	Use:   "animator",
	Short: "Shot animator generation service",
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(repairCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
