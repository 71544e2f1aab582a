package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/quocbao/facegate/internal/camera"
	"github.com/quocbao/facegate/internal/config"
	"github.com/quocbao/facegate/internal/embedding"
	"github.com/quocbao/facegate/internal/identity"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Recognize faces from a frame stream",
	Long: `Run the recognition loop: each frame is matched against the enrolled
identity database and the best match is printed with its similarity
score. Frames without a visible face print "no face".

Examples:
  # Recognize from a network camera
  facegate recognize --camera-url http://192.168.1.50/capture

  # Replay saved frames with a stricter threshold
  facegate recognize --frames-dir ./captures --threshold 0.7`,
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	addFrameSourceFlags(recognizeCmd)
	recognizeCmd.Flags().Float64("threshold", 0, "Minimum similarity for a known match (default from MATCH_THRESHOLD)")
}

// recognizeReporter prints one line per frame.
type recognizeReporter struct{}

func (recognizeReporter) EnrollmentProgress(identity.Progress) {}
func (recognizeReporter) EnrollmentResult(identity.Enrolled)   {}

func (recognizeReporter) RecognitionResult(r identity.Recognition) {
	if r.Embedding == nil {
		fmt.Println("no face")
		return
	}
	if r.Match == nil {
		fmt.Printf("face detected (%d-dim embedding)\n", len(r.Embedding))
		return
	}
	fmt.Printf("%s (%.2f)\n", r.Match.Name, r.Match.Score)
}

func runRecognize(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	threshold := mustGetFloat64(cmd, "threshold")
	if threshold <= 0 {
		threshold = cfg.Identity.Threshold
	}

	source, err := newFrameSource(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	detector := embedding.NewClient(cfg.Embedding.URL, cfg.Embedding.MaxImageSize)
	matcher := identity.NewMatcher(store, threshold)
	session := identity.NewSession(cfg.Identity.EnrollTarget)
	dispatcher := identity.NewDispatcher(detector, store, matcher, session, recognizeReporter{})

	fmt.Printf("Recognizing (threshold %.2f), press Ctrl+C to stop\n", matcher.Threshold())

	for {
		frame, err := source.NextFrame(ctx)
		if errors.Is(err, camera.ErrNoMoreFrames) {
			return nil
		}
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nStopped")
			return nil
		}
		if err != nil {
			log.Printf("frame capture: %v", err)
			continue
		}

		if err := dispatcher.HandleFrame(ctx, identity.Frame{Image: frame}); err != nil {
			log.Printf("frame processing: %v", err)
		}
	}
}
