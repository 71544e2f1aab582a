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
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <name>",
	Short: "Enroll a new identity from a frame stream",
	Long: `Enroll a new identity by collecting face embeddings from successive
frames and committing their average as the reference embedding.

Frames without a detected face do not count towards the target, so keep
the face visible until the bar completes. Enrolling an existing name
replaces its reference embedding.

Examples:
  # Enroll from a network camera
  facegate enroll "Bao" --camera-url http://192.168.1.50/capture

  # Enroll from saved frames
  facegate enroll "Bao" --frames-dir ./captures --target 10`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	addFrameSourceFlags(enrollCmd)
	enrollCmd.Flags().Int("target", 0, "Embeddings to collect (default from ENROLL_TARGET)")
}

// enrollReporter renders enrollment events as a terminal progress bar.
type enrollReporter struct {
	bar  *progressbar.ProgressBar
	done bool
}

func (r *enrollReporter) EnrollmentProgress(p identity.Progress) {
	if p.NoFace {
		r.bar.Describe(fmt.Sprintf("Waiting for a face (%d/%d)", p.Current, p.Total))
		return
	}
	r.bar.Describe("Collecting embeddings")
	_ = r.bar.Set(p.Current)
}

func (r *enrollReporter) EnrollmentResult(e identity.Enrolled) {
	_ = r.bar.Finish()
	fmt.Printf("\nEnrolled %q (%d-dim reference embedding)\n", e.Name, len(e.Embedding))
	r.done = true
}

func (r *enrollReporter) RecognitionResult(identity.Recognition) {}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg := config.Load()

	target := mustGetInt(cmd, "target")
	if target <= 0 {
		target = cfg.Identity.EnrollTarget
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

	if _, err := store.Get(ctx, name); err == nil {
		fmt.Printf("Warning: %q is already enrolled, completing will overwrite it\n", name)
	}

	reporter := &enrollReporter{
		bar: progressbar.NewOptions(target,
			progressbar.OptionSetDescription("Collecting embeddings"),
			progressbar.OptionShowCount(),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionFullWidth(),
		),
	}

	detector := embedding.NewClient(cfg.Embedding.URL, cfg.Embedding.MaxImageSize)
	session := identity.NewSession(target)
	dispatcher := identity.NewDispatcher(detector, store, nil, session, reporter)

	if err := dispatcher.StartEnrollment(name); err != nil {
		return err
	}

	for !reporter.done {
		frame, err := source.NextFrame(ctx)
		if errors.Is(err, camera.ErrNoMoreFrames) {
			return fmt.Errorf("frame stream ended after %d/%d embeddings", session.Collected(), target)
		}
		if errors.Is(err, context.Canceled) {
			return errors.New("enrollment interrupted")
		}
		if err != nil {
			log.Printf("frame capture: %v", err)
			continue
		}

		if err := dispatcher.HandleFrame(ctx, identity.Frame{Image: frame}); err != nil {
			return err
		}
	}

	return nil
}
