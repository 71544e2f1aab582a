package identity

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Frame is one unit of video to process: opaque image bytes plus the
// optional identifier of the camera that captured it.
type Frame struct {
	Image    []byte
	CameraID string
}

// Progress is emitted once per frame while an enrollment is collecting.
// NoFace marks frames that did not contribute an embedding.
type Progress struct {
	Name    string `json:"name"`
	Current int    `json:"current"`
	Total   int    `json:"total"`
	NoFace  bool   `json:"no_face"`
}

// Enrolled is emitted exactly once when an enrollment completes, carrying
// the mean embedding that was committed.
type Enrolled struct {
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
}

// Recognition is emitted once per frame when no enrollment is collecting.
// Embedding is null when no face was visible. Match is present only when
// the dispatcher performs matching itself rather than delegating it to a
// downstream consumer.
type Recognition struct {
	CameraID  string       `json:"camera_id,omitempty"`
	Embedding []float32    `json:"embedding"`
	Match     *MatchResult `json:"match,omitempty"`
}

// Emitter receives the outward events produced by the dispatcher. Exactly
// one event is emitted per processed frame.
type Emitter interface {
	EnrollmentProgress(Progress)
	EnrollmentResult(Enrolled)
	RecognitionResult(Recognition)
}

// Dispatcher is the per-frame control loop: it obtains face embeddings
// from the detector and routes them to either the active enrollment
// session or the matcher. Frames are processed strictly one at a time; the
// mutex serializes concurrent frame streams through the single session.
type Dispatcher struct {
	mu       sync.Mutex
	detector Detector
	store    Store
	matcher  *Matcher // nil delegates matching to the event consumer
	session  *Session
	emitter  Emitter
}

// NewDispatcher wires a dispatcher. A nil matcher makes recognition events
// carry the raw embedding only, for deployments where a downstream service
// owns the identity database.
func NewDispatcher(detector Detector, store Store, matcher *Matcher, session *Session, emitter Emitter) *Dispatcher {
	return &Dispatcher{
		detector: detector,
		store:    store,
		matcher:  matcher,
		session:  session,
		emitter:  emitter,
	}
}

// StartEnrollment begins a new enrollment for name, discarding any session
// already collecting. Rejects an empty name without touching state.
func (d *Dispatcher) StartEnrollment(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session.Active() {
		log.Printf("enrollment for %q discarded after %d/%d frames, replaced by %q",
			d.session.Name(), d.session.Collected(), d.session.Target(), name)
	}
	return d.session.Start(name)
}

// Enrolling returns the name currently being enrolled, or "" when idle.
func (d *Dispatcher) Enrolling() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session.Name()
}

// HandleFrame processes one frame and emits exactly one outward event.
// Detector failures and undecodable frames degrade to no-face semantics
// for this frame only; they never stop the loop. The returned error
// reports persistence or matching faults after the event was emitted.
func (d *Dispatcher) HandleFrame(ctx context.Context, frame Frame) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	detections, err := d.detector.DetectFaces(ctx, frame.Image)
	if err != nil {
		log.Printf("face detection failed, treating frame as no face: %v", err)
		detections = nil
	}

	if len(detections) == 0 {
		d.emitNoFace(frame)
		return nil
	}

	// Multiple faces in one frame are possible; only the first detection
	// is ever used, for enrollment and recognition alike.
	face := detections[0]

	if d.session.Active() {
		return d.collect(ctx, face.Embedding)
	}
	return d.recognize(ctx, frame, face.Embedding)
}

// emitNoFace reports a frame without a usable face: enrollment progress
// with no_face set while collecting, otherwise a recognition event with an
// absent embedding.
func (d *Dispatcher) emitNoFace(frame Frame) {
	if d.session.Active() {
		d.emitter.EnrollmentProgress(Progress{
			Name:    d.session.Name(),
			Current: d.session.Collected(),
			Total:   d.session.Target(),
			NoFace:  true,
		})
		return
	}
	d.emitter.RecognitionResult(Recognition{CameraID: frame.CameraID, Embedding: nil})
}

// collect feeds one embedding into the active session and emits either a
// progress event or, on the final frame, the completion event.
func (d *Dispatcher) collect(ctx context.Context, embedding []float32) error {
	done, err := d.session.Add(embedding)
	if err != nil {
		// Mismatched embedding: the frame contributed nothing, report it
		// like a no-face frame so the caller's UI keeps updating.
		log.Printf("discarding embedding for %q: %v", d.session.Name(), err)
		d.emitter.EnrollmentProgress(Progress{
			Name:    d.session.Name(),
			Current: d.session.Collected(),
			Total:   d.session.Target(),
			NoFace:  true,
		})
		return nil
	}

	if done {
		return d.commitEnrollment(ctx)
	}

	d.emitter.EnrollmentProgress(Progress{
		Name:    d.session.Name(),
		Current: d.session.Collected(),
		Total:   d.session.Target(),
	})
	return nil
}

// commitEnrollment averages the collected embeddings, stores the result
// and emits the completion event. A persistence failure is surfaced to the
// caller, but the completion event is still emitted: the identity exists
// in memory and recognition against it keeps working.
func (d *Dispatcher) commitEnrollment(ctx context.Context) error {
	name, mean := d.session.Finish()

	saveErr := upsertNormalized(ctx, d.store, name, mean)

	log.Printf("enrollment complete for %q (%d dims)", name, len(mean))
	d.emitter.EnrollmentResult(Enrolled{Name: name, Embedding: mean})

	if saveErr != nil {
		return fmt.Errorf("persisting enrollment for %q: %w", name, saveErr)
	}
	return nil
}

// recognize emits the recognition event for one embedding, matching it
// against the store unless matching is delegated.
func (d *Dispatcher) recognize(ctx context.Context, frame Frame, embedding []float32) error {
	event := Recognition{CameraID: frame.CameraID, Embedding: embedding}

	var matchErr error
	if d.matcher != nil {
		result, err := d.matcher.Match(ctx, embedding)
		if err != nil {
			matchErr = err
			log.Printf("matching failed for frame: %v", err)
		} else {
			event.Match = &result
		}
	}

	d.emitter.RecognitionResult(event)
	return matchErr
}

// upsertNormalized stores the record for name, first removing any record
// whose normalized name collides with it under a different spelling, so
// "Bảo" and "bao" cannot coexist as separate identities.
func upsertNormalized(ctx context.Context, store Store, name string, embedding []float32) error {
	normalized := NormalizeName(name)

	records, err := store.All(ctx)
	if err == nil {
		for _, rec := range records {
			if rec.Name != name && NormalizeName(rec.Name) == normalized {
				if delErr := store.Delete(ctx, rec.Name); delErr != nil {
					log.Printf("removing superseded identity %q: %v", rec.Name, delErr)
				}
			}
		}
	}

	return store.Upsert(ctx, name, embedding)
}
