package cmd

import (
	"errors"
	"time"

	"github.com/quocbao/facegate/internal/camera"
	"github.com/spf13/cobra"
)

// addFrameSourceFlags registers the flags shared by the local demo
// commands that pull frames themselves.
func addFrameSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("camera-url", "", "Snapshot URL of a network camera (e.g. http://192.168.1.50/capture)")
	cmd.Flags().String("frames-dir", "", "Directory of image files to replay as frames")
	cmd.Flags().Duration("interval", 200*time.Millisecond, "Polling interval for --camera-url")
}

// newFrameSource builds the frame source from flags. Exactly one of
// --camera-url and --frames-dir must be given.
func newFrameSource(cmd *cobra.Command) (camera.Source, error) {
	cameraURL := mustGetString(cmd, "camera-url")
	framesDir := mustGetString(cmd, "frames-dir")

	switch {
	case cameraURL != "" && framesDir != "":
		return nil, errors.New("--camera-url and --frames-dir are mutually exclusive")
	case cameraURL != "":
		return camera.NewSnapshotSource(cameraURL, mustGetDuration(cmd, "interval")), nil
	case framesDir != "":
		return camera.NewDirSource(framesDir)
	default:
		return nil, errors.New("one of --camera-url or --frames-dir is required")
	}
}
