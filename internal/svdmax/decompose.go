package svdmax

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samcharles93/svdmax/internal/tensor"
)

// Decompose factorizes the dense weight matrix w (V×D, V > D) as
// U·diag(S)·Vtᵗ and eagerly builds the correction basis B = U·diag(S).
// The weights are read once and never retained; later mutation of w does not
// propagate.  bias is optional and must have length V when present.
//
// This is a one-time O(V·D²) cost amortized over every forward call.
func Decompose(w *tensor.Mat, bias []float32) (*Projection, error) {
	if w == nil || w.R == 0 || w.C == 0 {
		return nil, shapeErrorf("weight matrix must be a non-empty 2D matrix")
	}
	v, d := w.R, w.C
	if d < 2 {
		return nil, shapeErrorf("hidden dimension must be at least 2, got %d", d)
	}
	if v <= d {
		return nil, shapeErrorf("vocabulary size must exceed hidden dimension, got %dx%d", v, d)
	}
	if bias != nil && len(bias) != v {
		return nil, shapeErrorf("bias length %d does not match vocabulary size %d", len(bias), v)
	}

	// gonum factorizes in float64; the thin SVD of a V×D matrix yields
	// exactly the shapes we cache: U V×D, S length D, V_rot D×D.
	a := mat.NewDense(v, d, nil)
	for i := 0; i < v; i++ {
		row := w.Row(i)
		for j := 0; j < d; j++ {
			a.Set(i, j, float64(row[j]))
		}
	}
	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDThin); !ok {
		return nil, fmt.Errorf("svd factorization failed for %dx%d matrix", v, d)
	}

	var gu, gv mat.Dense
	svd.UTo(&gu)
	svd.VTo(&gv)
	values := svd.Values(nil)

	p := &Projection{
		V:  v,
		D:  d,
		U:  tensor.NewMat(v, d),
		S:  make([]float32, d),
		Vt: tensor.NewMat(d, d),
		B:  tensor.NewMat(v, d),
	}
	for j := 0; j < d; j++ {
		p.S[j] = float32(values[j])
	}
	for i := 0; i < v; i++ {
		urow := p.U.Row(i)
		brow := p.B.Row(i)
		for j := 0; j < d; j++ {
			u := float32(gu.At(i, j))
			urow[j] = u
			brow[j] = u * p.S[j]
		}
	}
	// Store V_rot transposed so the rotation h̃ = V_rotᵗ·h is a row-major
	// matvec over contiguous rows.
	for i := 0; i < d; i++ {
		vtrow := p.Vt.Row(i)
		for j := 0; j < d; j++ {
			vtrow[j] = float32(gv.At(j, i))
		}
	}
	if bias != nil {
		p.bias = make([]float32, v)
		copy(p.bias, bias)
	}
	return p, nil
}

// NewFromFactors builds a projection from externally supplied factors.
// u must be V×D, s length D with non-negative values in descending order,
// and vt the transposed right singular vectors, D×D.  The descending-order
// property is what makes preview truncation meaningful, so it is validated
// rather than assumed.
func NewFromFactors(u tensor.Mat, s []float32, vt tensor.Mat, bias []float32) (*Projection, error) {
	v, d := u.R, u.C
	if d < 2 || v <= d {
		return nil, shapeErrorf("left factor must be V×D with V > D >= 2, got %dx%d", v, d)
	}
	if len(s) != d {
		return nil, shapeErrorf("singular value count %d does not match dimension %d", len(s), d)
	}
	if vt.R != d || vt.C != d {
		return nil, shapeErrorf("right factor must be %dx%d, got %dx%d", d, d, vt.R, vt.C)
	}
	if bias != nil && len(bias) != v {
		return nil, shapeErrorf("bias length %d does not match vocabulary size %d", len(bias), v)
	}
	for j, sv := range s {
		if sv < 0 {
			return nil, paramErrorf("singular value %d is negative: %g", j, sv)
		}
		if j > 0 && sv > s[j-1] {
			return nil, paramErrorf("singular values not in descending order at %d: %g > %g", j, sv, s[j-1])
		}
	}

	p := &Projection{
		V:  v,
		D:  d,
		U:  u,
		S:  make([]float32, d),
		Vt: vt,
		B:  tensor.NewMat(v, d),
	}
	copy(p.S, s)
	for i := 0; i < v; i++ {
		urow := u.Row(i)
		brow := p.B.Row(i)
		for j := 0; j < d; j++ {
			brow[j] = urow[j] * s[j]
		}
	}
	if bias != nil {
		p.bias = make([]float32, v)
		copy(p.bias, bias)
	}
	return p, nil
}
