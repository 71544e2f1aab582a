package identity

// Session is the enrollment state machine. It is either idle or collecting
// embeddings for one named person; at most one session exists per
// dispatcher and at most one may be collecting at a time.
//
// A collecting session has no timeout: if frames stop arriving it stays
// open until a new Start replaces it. See DESIGN.md for the rationale.
type Session struct {
	name      string
	collected [][]float32
	target    int
	active    bool
}

// NewSession creates an idle session. A target <= 0 falls back to
// DefaultEnrollTarget.
func NewSession(target int) *Session {
	if target <= 0 {
		target = DefaultEnrollTarget
	}
	return &Session{target: target}
}

// Start begins collecting for name. If a session is already collecting it
// is discarded, partial data included; the last start request wins.
func (s *Session) Start(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	s.name = name
	s.collected = s.collected[:0]
	s.active = true
	return nil
}

// Active reports whether the session is collecting.
func (s *Session) Active() bool {
	return s.active
}

// Name returns the name being enrolled, or "" when idle.
func (s *Session) Name() string {
	if !s.active {
		return ""
	}
	return s.name
}

// Collected returns how many embeddings have been gathered so far.
func (s *Session) Collected() int {
	return len(s.collected)
}

// Target returns the number of embeddings required to complete.
func (s *Session) Target() int {
	return s.target
}

// Add appends one embedding from a frame with a detected face. Returns
// true when the target count has been reached and the session is ready to
// be finished. Embeddings must agree in length with the first one
// collected; a mismatched embedding is rejected and not counted.
func (s *Session) Add(embedding []float32) (bool, error) {
	if !s.active {
		return false, nil
	}
	if len(s.collected) > 0 && len(embedding) != len(s.collected[0]) {
		return false, ErrDimensionMismatch
	}

	s.collected = append(s.collected, embedding)
	return len(s.collected) >= s.target, nil
}

// Finish computes the element-wise mean of the collected embeddings and
// resets the session to idle. Call only after Add reported completion.
func (s *Session) Finish() (string, []float32) {
	name := s.name
	mean := Mean(s.collected)

	s.name = ""
	s.collected = nil
	s.active = false

	return name, mean
}
