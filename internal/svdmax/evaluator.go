package svdmax

import (
	"github.com/samcharles93/svdmax/internal/tensor"
)

// Mode selects the projection variant at the call site.
type Mode int

const (
	// ModeApprox runs the preview-then-correct pipeline.
	ModeApprox Mode = iota
	// ModeExact runs the full dense projection against the weight snapshot.
	ModeExact
)

// Options configures an Evaluator.
type Options struct {
	// PreviewRank is the truncation width W; zero selects ceil(D/5).
	PreviewRank int
	// Budget is the number of corrected entries N; zero selects ceil(V/10).
	Budget int
	// Bias is an optional additive term of length V.
	Bias []float32
}

// Evaluator pairs the approximate projection with the exact dense variant so
// callers can pick per call.  It snapshots the weights at configuration time;
// mutating the source matrix afterwards does not propagate — reconfigure
// instead.
type Evaluator struct {
	w    tensor.Mat
	bias []float32
	proj *Projection
}

// Configure decomposes the weight matrix and validates the hyperparameters.
// It is the single entry point for building a ready evaluator; a returned
// error means no usable state was created.
func Configure(w *tensor.Mat, opts Options) (*Evaluator, error) {
	proj, err := Decompose(w, opts.Bias)
	if err != nil {
		return nil, err
	}
	if err := proj.SetParams(opts.PreviewRank, opts.Budget); err != nil {
		return nil, err
	}

	snap := tensor.NewMat(w.R, w.C)
	for i := 0; i < w.R; i++ {
		copy(snap.Row(i), w.Row(i))
	}
	e := &Evaluator{
		w:    snap,
		proj: proj,
	}
	if opts.Bias != nil {
		e.bias = make([]float32, len(opts.Bias))
		copy(e.bias, opts.Bias)
	}
	return e, nil
}

// Projection exposes the underlying decomposition.
func (e *Evaluator) Projection() *Projection { return e.proj }

// SetParams re-parameterizes the approximate path.  A failed call leaves the
// previous parameters active.  Must not run concurrently with Evaluate.
func (e *Evaluator) SetParams(previewRank, budget int) error {
	return e.proj.SetParams(previewRank, budget)
}

// Evaluate projects a single hidden vector of length D.  The result aliases
// the scratch buffer when one is provided.
func (e *Evaluator) Evaluate(mode Mode, h []float32, sc *Scratch) ([]float32, error) {
	if mode == ModeExact {
		return e.exact(h, sc)
	}
	return e.proj.Forward(h, sc)
}

// EvaluateBatch projects a batch of hidden vectors, one per row.
func (e *Evaluator) EvaluateBatch(mode Mode, hb *tensor.Mat, sc *Scratch) (tensor.Mat, error) {
	if mode == ModeExact {
		return e.exactBatch(hb)
	}
	return e.proj.ForwardBatch(hb, sc)
}

func (e *Evaluator) exact(h []float32, sc *Scratch) ([]float32, error) {
	if len(h) != e.w.C {
		return nil, shapeErrorf("hidden state length %d does not match dimension %d", len(h), e.w.C)
	}
	if sc == nil {
		sc = &Scratch{}
	}
	z := sc.outFor(e.w.R)
	tensor.MatVec(z, &e.w, h)
	if e.bias != nil {
		tensor.Add(z, e.bias)
	}
	return z, nil
}

func (e *Evaluator) exactBatch(hb *tensor.Mat) (tensor.Mat, error) {
	if hb == nil {
		return tensor.Mat{}, shapeErrorf("batch must be a 2D matrix")
	}
	if hb.C != e.w.C {
		return tensor.Mat{}, shapeErrorf("batch width %d does not match dimension %d", hb.C, e.w.C)
	}
	out := tensor.NewMat(hb.R, e.w.R)
	for b := 0; b < hb.R; b++ {
		zrow := out.Row(b)
		tensor.MatVec(zrow, &e.w, hb.Row(b))
		if e.bias != nil {
			tensor.Add(zrow, e.bias)
		}
	}
	return out, nil
}
