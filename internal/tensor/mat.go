package tensor

import (
	"math/rand"
)

// Mat represents a dense row‑major matrix of float32 values.
//
// R and C represent the number of rows and columns respectively.  Stride is the
// number of elements between the starts of two consecutive rows (for row‑major
// matrices this is equal to C).  Data holds the flattened matrix values.
//
// Mat does not perform any memory safety beyond the checks performed by Go's
// slice types; out‑of‑range indices will panic.
type Mat struct {
	R, C   int
	Stride int
	Data   []float32
}

// NewMat allocates a new matrix with the given number of rows and columns.
// The underlying slice is zero initialised.  The stride is set to the
// number of columns.
func NewMat(r, c int) Mat {
	if r < 0 || c < 0 {
		panic("negative dimension for matrix")
	}
	return Mat{
		R:      r,
		C:      c,
		Stride: c,
		Data:   make([]float32, r*c),
	}
}

// NewMatFromData creates a matrix from existing data.
// It checks that the data length matches r*c.
func NewMatFromData(r, c int, data []float32) Mat {
	if r*c != len(data) {
		panic("data length mismatch")
	}
	return Mat{
		R:      r,
		C:      c,
		Stride: c,
		Data:   data,
	}
}

// Row returns a view of the i‑th row of the matrix as a slice.  The slice
// has length equal to the number of columns.  Modifications to the returned
// slice update the underlying matrix values.
func (m *Mat) Row(i int) []float32 {
	if i < 0 || i >= m.R {
		panic("row index out of range")
	}
	start := i * m.Stride
	return m.Data[start : start+m.C]
}

// At returns the element at row i, column j.
func (m *Mat) At(i, j int) float32 {
	if i < 0 || i >= m.R || j < 0 || j >= m.C {
		panic("index out of range")
	}
	return m.Data[i*m.Stride+j]
}

// SliceCols returns a new matrix holding columns [0, c) of m in contiguous
// row-major storage.  The data is copied, not aliased, so the result stays
// valid if m is later released.
func (m *Mat) SliceCols(c int) Mat {
	if c < 0 || c > m.C {
		panic("column count out of range")
	}
	out := NewMat(m.R, c)
	for i := 0; i < m.R; i++ {
		copy(out.Row(i), m.Row(i)[:c])
	}
	return out
}

// FillRand fills the matrix with reproducible pseudo‑random values.  A small
// range around zero is used to avoid overflow in accumulations.  The seed
// controls the random sequence; multiple calls with the same seed produce
// identical matrices.
func FillRand(m *Mat, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range m.Data {
		m.Data[i] = (rng.Float32() - 0.5) * 0.02 // roughly in (-0.01,0.01)
	}
}
