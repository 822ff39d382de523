// Package svdmax approximates a large output projection (V×D weights, V ≫ D)
// with a truncated singular value decomposition.  Each forward pass evaluates
// a cheap low-rank preview over the whole vocabulary, selects the top
// candidates, and recomputes only those entries exactly against the full-rank
// correction basis.
package svdmax

import (
	"sync"

	"github.com/samcharles93/svdmax/internal/tensor"
)

// Projection holds the decomposition of a weight matrix and the derived
// caches used on every forward call.  All fields are read-only once
// parameters are set; concurrent forward calls may share one Projection
// freely.  SetParams must not run concurrently with forward calls — the
// configuration phase is expected to precede serving.
type Projection struct {
	V, D int

	// W = U·diag(S)·Vtᵗ... storing Vt directly (row i is the i-th right
	// singular vector) makes the rotation a plain row-major matvec.
	U  tensor.Mat // left singular vectors, V×D
	S  []float32  // singular values, non-negative, descending
	Vt tensor.Mat // transposed right singular vectors, D×D

	// B = U·diag(S).  Row v is the full projection basis for vocabulary
	// item v; built eagerly because every correction reads it.
	B tensor.Mat

	bias []float32 // optional, length V

	previewRank int        // W, 0 until SetParams runs
	budget      int        // N
	bw          tensor.Mat // first previewRank columns of B, contiguous V×W

	lazyInit sync.Once
}

// PreviewRank returns the configured preview rank W, or 0 if parameters have
// not been set yet.
func (p *Projection) PreviewRank() int { return p.previewRank }

// Budget returns the configured correction budget N, or 0 if parameters have
// not been set yet.
func (p *Projection) Budget() int { return p.budget }

// HasBias reports whether an additive bias vector is attached.
func (p *Projection) HasBias() bool { return p.bias != nil }

// Info summarises a projection for logs and the info endpoint.
type Info struct {
	Vocab       int   `json:"vocab"`
	Dim         int   `json:"dim"`
	PreviewRank int   `json:"preview_rank"`
	Budget      int   `json:"budget"`
	HasBias     bool  `json:"has_bias"`
	Bytes       int64 `json:"bytes"`
}

// Info reports the projection's dimensions, active parameters and the
// approximate memory held by the decomposition caches.
func (p *Projection) Info() Info {
	bytes := int64(len(p.U.Data)+len(p.S)+len(p.Vt.Data)+len(p.B.Data)+len(p.bw.Data)+len(p.bias)) * 4
	return Info{
		Vocab:       p.V,
		Dim:         p.D,
		PreviewRank: p.previewRank,
		Budget:      p.budget,
		HasBias:     p.bias != nil,
		Bytes:       bytes,
	}
}

// ensureParams applies default parameters if SetParams was never called.
// Forward paths invoke it so a freshly decomposed projection is usable
// without explicit configuration.  The sync.Once makes first-call races
// between concurrent readers safe; defaults always validate because
// decomposition enforces 2 <= D < V.
func (p *Projection) ensureParams() {
	p.lazyInit.Do(func() {
		if p.previewRank == 0 {
			// Defaults cannot fail validation, see SetParams.
			_ = p.SetParams(0, 0)
		}
	})
}
