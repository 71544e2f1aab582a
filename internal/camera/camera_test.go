package camera

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDirSourceReplaysInNameOrder(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []struct{ name, content string }{
		{"frame_002.jpg", "second"},
		{"frame_001.jpg", "first"},
		{"notes.txt", "not a frame"},
		{"frame_003.png", "third"},
	} {
		if err := os.WriteFile(filepath.Join(dir, f.name), []byte(f.content), 0o644); err != nil {
			t.Fatalf("WriteFile() error: %v", err)
		}
	}

	source, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource() error: %v", err)
	}
	if source.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3 (non-image files skipped)", source.Remaining())
	}

	ctx := context.Background()
	for _, want := range []string{"first", "second", "third"} {
		frame, err := source.NextFrame(ctx)
		if err != nil {
			t.Fatalf("NextFrame() error: %v", err)
		}
		if string(frame) != want {
			t.Errorf("NextFrame() = %q, want %q", frame, want)
		}
	}

	if _, err := source.NextFrame(ctx); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("NextFrame() after exhaustion error = %v, want ErrNoMoreFrames", err)
	}
}

func TestDirSourceEmptyDirectory(t *testing.T) {
	if _, err := NewDirSource(t.TempDir()); err == nil {
		t.Error("NewDirSource() accepted a directory with no frames")
	}
}

func TestSnapshotSourceFetches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg bytes"))
	}))
	defer server.Close()

	source := NewSnapshotSource(server.URL, 0)
	frame, err := source.NextFrame(context.Background())
	if err != nil {
		t.Fatalf("NextFrame() error: %v", err)
	}
	if string(frame) != "jpeg bytes" {
		t.Errorf("NextFrame() = %q, want %q", frame, "jpeg bytes")
	}
}

func TestSnapshotSourceErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "camera busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewSnapshotSource(server.URL, 0)
	if _, err := source.NextFrame(context.Background()); err == nil {
		t.Error("NextFrame() expected error for non-200 status")
	}
}

func TestSnapshotSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := NewSnapshotSource("http://127.0.0.1:0/capture", 0)
	if _, err := source.NextFrame(ctx); err == nil {
		t.Error("NextFrame() expected error for cancelled context")
	}
}
