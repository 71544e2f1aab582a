// Package camera provides frame sources for the local demo commands: a
// snapshot-polling HTTP source for network cameras (ESP32-CAM style
// devices expose a still endpoint) and a directory source for replaying
// saved frames. Capture hardware itself is out of scope; a source only
// hands over encoded image bytes.
package camera

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoMoreFrames is returned by finite sources when the stream is
// exhausted.
var ErrNoMoreFrames = errors.New("no more frames")

// Source yields one encoded frame per call, in capture order.
type Source interface {
	NextFrame(ctx context.Context) ([]byte, error)
}

// SnapshotSource polls a camera's still-image URL at a fixed interval.
type SnapshotSource struct {
	url      string
	interval time.Duration
	client   *http.Client
	last     time.Time
}

// NewSnapshotSource creates a source that fetches url once per interval.
// An interval <= 0 polls as fast as the camera responds.
func NewSnapshotSource(url string, interval time.Duration) *SnapshotSource {
	return &SnapshotSource{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NextFrame waits out the polling interval, then fetches one snapshot.
func (s *SnapshotSource) NextFrame(ctx context.Context) ([]byte, error) {
	if s.interval > 0 && !s.last.IsZero() {
		wait := s.interval - time.Since(s.last)
		if wait > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	s.last = time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating snapshot request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera returned status %d", resp.StatusCode)
	}

	frame, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return frame, nil
}

// DirSource replays image files from a directory in name order.
type DirSource struct {
	files []string
	next  int
}

// NewDirSource lists the image files in dir. Returns an error when the
// directory contains no usable frames.
func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no image files found in %s", dir)
	}
	sort.Strings(files)

	return &DirSource{files: files}, nil
}

// Remaining returns how many frames have not been read yet.
func (s *DirSource) Remaining() int {
	return len(s.files) - s.next
}

// NextFrame reads the next file, or ErrNoMoreFrames once exhausted.
func (s *DirSource) NextFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.next >= len(s.files) {
		return nil, ErrNoMoreFrames
	}

	path := s.files[s.next]
	s.next++

	frame, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading frame %s: %w", path, err)
	}
	return frame, nil
}
