package svdmax

// Scratch holds the transient buffers of the single-vector forward path:
// the rotated hidden vector, the preview output, and the candidate-selection
// workspace.  Ownership is explicit — a Scratch belongs to exactly one
// calling context and must not be shared across concurrent forward calls.
// Buffers are sized on first use and reused across sequential calls.
//
// Passing nil to Forward allocates a call-scoped scratch instead.
type Scratch struct {
	rot []float32
	out []float32
	idx []int
	val []float32
}

func (s *Scratch) rotFor(n int) []float32 {
	if cap(s.rot) < n {
		s.rot = make([]float32, n)
	}
	s.rot = s.rot[:n]
	return s.rot
}

func (s *Scratch) outFor(n int) []float32 {
	if cap(s.out) < n {
		s.out = make([]float32, n)
	}
	s.out = s.out[:n]
	return s.out
}

func (s *Scratch) selectionFor(n int) ([]int, []float32) {
	// One extra slot: the insertion scan appends before truncating.
	if cap(s.idx) < n+1 {
		s.idx = make([]int, 0, n+1)
		s.val = make([]float32, 0, n+1)
	}
	return s.idx[:0], s.val[:0]
}
