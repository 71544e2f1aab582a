package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facegate",
	Short: "Face identity enrollment and recognition service",
	Long: `Facegate identifies people from camera frames by comparing face
embeddings against an enrolled identity database, and enrolls new
identities by averaging embeddings collected over a short capture window.

Face detection and embedding extraction run in a separate embedding
service; facegate talks to it over HTTP and owns the identity database,
the matching decision and the enrollment protocol.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
