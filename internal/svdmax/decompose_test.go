package svdmax

import (
	"errors"
	"math"
	"testing"

	"github.com/samcharles93/svdmax/internal/tensor"
)

func closeEnough(a, b, relTol float32) bool {
	diff := math.Abs(float64(a - b))
	scale := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	if scale < 1 {
		scale = 1
	}
	return diff <= float64(relTol)*scale
}

// reconstruct returns U·diag(S)·Vtᵗ at (i, j), i.e. B·Vt since B = U·diag(S)
// and Vt is stored transposed.
func reconstruct(p *Projection, i, j int) float32 {
	var sum float32
	brow := p.B.Row(i)
	for k := 0; k < p.D; k++ {
		sum += brow[k] * p.Vt.At(k, j)
	}
	return sum
}

func randomWeights(v, d int, seed int64) tensor.Mat {
	w := tensor.NewMat(v, d)
	tensor.FillRand(&w, seed)
	return w
}

func TestDecomposeReconstruction(t *testing.T) {
	w := randomWeights(48, 12, 3)
	p, err := Decompose(&w, nil)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}
	for i := 0; i < p.V; i++ {
		for j := 0; j < p.D; j++ {
			got := reconstruct(p, i, j)
			if !closeEnough(w.At(i, j), got, 1e-5) {
				t.Fatalf("reconstruction off at (%d,%d): want %g got %g", i, j, w.At(i, j), got)
			}
		}
	}
}

func TestDecomposeOrthonormality(t *testing.T) {
	w := randomWeights(40, 10, 9)
	p, err := Decompose(&w, nil)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	// Columns of U are orthonormal: UᵗU = I.
	for i := 0; i < p.D; i++ {
		for j := 0; j < p.D; j++ {
			var sum float32
			for r := 0; r < p.V; r++ {
				sum += p.U.At(r, i) * p.U.At(r, j)
			}
			want := float32(0)
			if i == j {
				want = 1
			}
			if math.Abs(float64(sum-want)) > 1e-5 {
				t.Fatalf("UᵗU(%d,%d) = %g, want %g", i, j, sum, want)
			}
		}
	}

	// Rows of Vt are orthonormal: Vt·Vtᵗ = I.
	for i := 0; i < p.D; i++ {
		for j := 0; j < p.D; j++ {
			sum := tensor.Dot(p.Vt.Row(i), p.Vt.Row(j))
			want := float32(0)
			if i == j {
				want = 1
			}
			if math.Abs(float64(sum-want)) > 1e-5 {
				t.Fatalf("VtVtᵗ(%d,%d) = %g, want %g", i, j, sum, want)
			}
		}
	}
}

func TestDecomposeSingularValuesDescending(t *testing.T) {
	w := randomWeights(64, 16, 5)
	p, err := Decompose(&w, nil)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}
	for j, s := range p.S {
		if s < 0 {
			t.Fatalf("singular value %d negative: %g", j, s)
		}
		if j > 0 && s > p.S[j-1] {
			t.Fatalf("singular values not descending at %d: %g > %g", j, s, p.S[j-1])
		}
	}
}

func TestDecomposeShapeErrors(t *testing.T) {
	var shapeErr *ShapeError

	if _, err := Decompose(nil, nil); !errors.As(err, &shapeErr) {
		t.Fatalf("nil weights: want ShapeError, got %v", err)
	}

	// V must exceed D.
	square := randomWeights(8, 8, 1)
	if _, err := Decompose(&square, nil); !errors.As(err, &shapeErr) {
		t.Fatalf("square weights: want ShapeError, got %v", err)
	}

	// Bias length must match V.
	w := randomWeights(10, 4, 1)
	if _, err := Decompose(&w, make([]float32, 9)); !errors.As(err, &shapeErr) {
		t.Fatalf("short bias: want ShapeError, got %v", err)
	}
}

func TestNewFromFactorsValidation(t *testing.T) {
	w := randomWeights(20, 6, 2)
	p, err := Decompose(&w, nil)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	if _, err := NewFromFactors(p.U, p.S, p.Vt, nil); err != nil {
		t.Fatalf("valid factors rejected: %v", err)
	}

	var paramErr *ParameterError

	neg := make([]float32, len(p.S))
	copy(neg, p.S)
	neg[len(neg)-1] = -1
	if _, err := NewFromFactors(p.U, neg, p.Vt, nil); !errors.As(err, &paramErr) {
		t.Fatalf("negative singular value: want ParameterError, got %v", err)
	}

	asc := make([]float32, len(p.S))
	copy(asc, p.S)
	asc[0], asc[1] = asc[1], asc[0]
	if asc[1] > asc[0] {
		if _, err := NewFromFactors(p.U, asc, p.Vt, nil); !errors.As(err, &paramErr) {
			t.Fatalf("ascending singular values: want ParameterError, got %v", err)
		}
	}

	var shapeErr *ShapeError
	if _, err := NewFromFactors(p.U, p.S[:3], p.Vt, nil); !errors.As(err, &shapeErr) {
		t.Fatalf("short S: want ShapeError, got %v", err)
	}
}

func TestNewFromFactorsMatchesDecompose(t *testing.T) {
	w := randomWeights(24, 8, 7)
	p1, err := Decompose(&w, nil)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}
	p2, err := NewFromFactors(p1.U, p1.S, p1.Vt, nil)
	if err != nil {
		t.Fatalf("from factors: %v", err)
	}
	for i := range p1.B.Data {
		if p1.B.Data[i] != p2.B.Data[i] {
			t.Fatalf("correction basis differs at %d: %g vs %g", i, p1.B.Data[i], p2.B.Data[i])
		}
	}
}
