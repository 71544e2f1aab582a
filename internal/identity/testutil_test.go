package identity

import (
	"context"
	"sort"
)

// memStore is an in-memory Store for tests. saveErr, when set, is returned
// by Upsert after the in-memory mutation, mimicking a persistence failure
// that leaves the mapping updated.
type memStore struct {
	refs    map[string][]float32
	saveErr error
	allErr  error
}

func newMemStore() *memStore {
	return &memStore{refs: make(map[string][]float32)}
}

func (s *memStore) All(ctx context.Context) ([]Record, error) {
	if s.allErr != nil {
		return nil, s.allErr
	}

	names := make([]string, 0, len(s.refs))
	for name := range s.refs {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]Record, 0, len(names))
	for _, name := range names {
		records = append(records, Record{Name: name, Embedding: s.refs[name]})
	}
	return records, nil
}

func (s *memStore) Get(ctx context.Context, name string) (Record, error) {
	emb, ok := s.refs[name]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{Name: name, Embedding: emb}, nil
}

func (s *memStore) Upsert(ctx context.Context, name string, embedding []float32) error {
	s.refs[name] = embedding
	return s.saveErr
}

func (s *memStore) Delete(ctx context.Context, name string) error {
	if _, ok := s.refs[name]; !ok {
		return ErrNotFound
	}
	delete(s.refs, name)
	return nil
}

// stubDetector returns a scripted sequence of detection results, one per
// frame. A nil entry means "no face"; err applies to every call.
type stubDetector struct {
	frames [][]Detection
	next   int
	err    error
}

func (d *stubDetector) DetectFaces(ctx context.Context, image []byte) ([]Detection, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.next >= len(d.frames) {
		return nil, nil
	}
	dets := d.frames[d.next]
	d.next++
	return dets, nil
}

// recordingEmitter captures every emitted event in order.
type recordingEmitter struct {
	progress     []Progress
	enrolled     []Enrolled
	recognitions []Recognition
}

func (e *recordingEmitter) EnrollmentProgress(p Progress) { e.progress = append(e.progress, p) }
func (e *recordingEmitter) EnrollmentResult(r Enrolled)   { e.enrolled = append(e.enrolled, r) }
func (e *recordingEmitter) RecognitionResult(r Recognition) {
	e.recognitions = append(e.recognitions, r)
}

// total returns the number of events of any kind emitted so far.
func (e *recordingEmitter) total() int {
	return len(e.progress) + len(e.enrolled) + len(e.recognitions)
}

// face wraps an embedding as a single-face detection result.
func face(embedding ...float32) []Detection {
	return []Detection{{Embedding: embedding}}
}
