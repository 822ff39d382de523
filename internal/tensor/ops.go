package tensor

import (
	"math"

	"simd/archsimd"
)

// Add adds src to dst element-wise.
func Add(dst, src []float32) {
	for i := range dst {
		dst[i] += src[i]
	}
}

// Dot computes the dot product of a and b.  Both slices must have the same
// length.  This is the inner kernel of the full-view correction path, so it
// dispatches to AVX2 when available.
func Dot(a, b []float32) float32 {
	if cpu.HasAVX2 {
		return dotSIMD(a, b)
	}
	return dotScalar(a, b)
}

func dotScalar(a, b []float32) float32 {
	var sum float32
	j := 0
	for ; j+3 < len(a); j += 4 {
		sum += a[j]*b[j] + a[j+1]*b[j+1] + a[j+2]*b[j+2] + a[j+3]*b[j+3]
	}
	for ; j < len(a); j++ {
		sum += a[j] * b[j]
	}
	return sum
}

func dotSIMD(a, b []float32) float32 {
	n := len(a)

	var acc archsimd.Float32x8
	j := 0
	for ; j+8 <= n; j += 8 {
		va := archsimd.LoadFloat32x8Slice(a[j:])
		vb := archsimd.LoadFloat32x8Slice(b[j:])
		acc = acc.Add(va.Mul(vb))
	}

	var tmp [8]float32
	acc.Store(&tmp)
	var sum float32
	sum += tmp[0] + tmp[1] + tmp[2] + tmp[3] + tmp[4] + tmp[5] + tmp[6] + tmp[7]

	for ; j < n; j++ {
		sum += a[j] * b[j]
	}
	return sum
}

// Softmax applies the softmax function to x.
func Softmax(x []float32) {
	if len(x) == 0 {
		return
	}
	maxv := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > maxv {
			maxv = x[i]
		}
	}
	var sum float64
	for i := range x {
		v := math.Exp(float64(x[i] - maxv))
		x[i] = float32(v)
		sum += v
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / sum)
	for i := range x {
		x[i] *= inv
	}
}

// Argmax returns the index of the maximum value in the slice. If the slice is empty it panics.
func Argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}
