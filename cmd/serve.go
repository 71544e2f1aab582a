package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quocbao/facegate/internal/config"
	"github.com/quocbao/facegate/internal/embedding"
	"github.com/quocbao/facegate/internal/identity"
	"github.com/quocbao/facegate/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recognition server",
	Long: `Start the facegate server.

The server accepts camera frames and enrollment requests over HTTP and
publishes enrollment progress and recognition results on an SSE event
stream. Frames are processed strictly one at a time; a frame arriving
while another is being processed replaces any frame still waiting.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("delegate-matching", false,
		"Emit raw embeddings instead of matching; a downstream consumer owns the identity decision")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	detector := embedding.NewClient(cfg.Embedding.URL, cfg.Embedding.MaxImageSize)

	var matcher *identity.Matcher
	if !mustGetBool(cmd, "delegate-matching") {
		matcher = identity.NewMatcher(store, cfg.Identity.Threshold)
		fmt.Printf("Matching enabled (threshold %.2f)\n", matcher.Threshold())
	} else {
		fmt.Println("Matching delegated, recognition events carry raw embeddings")
	}

	port, host := resolveServeHostPort(cmd)
	server := web.NewServer(cfg, port, host, detector, store, matcher)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting facegate server on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
