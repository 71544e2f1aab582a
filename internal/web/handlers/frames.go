package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/quocbao/facegate/internal/identity"
)

// maxFrameBytes caps the accepted size of a single uploaded frame.
const maxFrameBytes = 10 << 20

// FramesHandler accepts frame uploads and feeds them to the dispatcher
// strictly one at a time. Between-frame buffering is a single slot: a
// frame arriving while another is being processed replaces any frame
// still waiting, and the replaced frame is dropped. The transport can
// therefore never build an unbounded backlog behind a slow detector.
type FramesHandler struct {
	dispatcher *identity.Dispatcher

	mu      sync.Mutex
	pending *identity.Frame
	wake    chan struct{}

	processed atomic.Uint64
	dropped   atomic.Uint64
}

// NewFramesHandler creates the handler. Run must be started for frames to
// be processed.
func NewFramesHandler(dispatcher *identity.Dispatcher) *FramesHandler {
	return &FramesHandler{
		dispatcher: dispatcher,
		wake:       make(chan struct{}, 1),
	}
}

// Run processes submitted frames until the context is cancelled. It is the
// only goroutine that calls the dispatcher, preserving the one-frame-at-a-
// time processing order.
func (h *FramesHandler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.wake:
		}

		h.mu.Lock()
		frame := h.pending
		h.pending = nil
		h.mu.Unlock()

		if frame == nil {
			continue
		}

		if err := h.dispatcher.HandleFrame(ctx, *frame); err != nil {
			log.Printf("frame processing: %v", err)
		}
		h.processed.Add(1)
	}
}

// submit places a frame in the single waiting slot, displacing any frame
// already there.
func (h *FramesHandler) submit(frame identity.Frame) {
	h.mu.Lock()
	if h.pending != nil {
		h.dropped.Add(1)
	}
	h.pending = &frame
	h.mu.Unlock()

	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Processed returns how many frames have been handed to the dispatcher.
func (h *FramesHandler) Processed() uint64 {
	return h.processed.Load()
}

// Dropped returns how many frames were displaced before processing.
func (h *FramesHandler) Dropped() uint64 {
	return h.dropped.Load()
}

// Post accepts one frame. The body is either raw image bytes or a
// multipart form with a "frame" file field; camera_id identifies the
// capturing device. Responds 202: acceptance only means the frame entered
// the slot, results arrive on the event stream.
func (h *FramesHandler) Post(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFrameBytes)

	image, cameraID, err := readFrame(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(image) == 0 {
		respondError(w, http.StatusBadRequest, "missing frame image")
		return
	}

	h.submit(identity.Frame{Image: image, CameraID: cameraID})
	respondJSON(w, http.StatusAccepted, map[string]any{
		"accepted": true,
	})
}

// readFrame extracts the image bytes and camera id from the request,
// accepting both multipart uploads and raw bodies.
func readFrame(r *http.Request) ([]byte, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxFrameBytes); err != nil {
			return nil, "", err
		}
		file, _, err := r.FormFile("frame")
		if err != nil {
			return nil, "", err
		}
		defer file.Close()

		image, err := io.ReadAll(file)
		if err != nil {
			return nil, "", err
		}
		return image, r.FormValue("camera_id"), nil
	}

	image, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	return image, r.URL.Query().Get("camera_id"), nil
}
