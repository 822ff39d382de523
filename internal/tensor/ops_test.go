package tensor

import (
	"math"
	"testing"
)

func TestDotMatchesScalar(t *testing.T) {
	// Lengths straddling the 8-wide SIMD boundary.
	for _, n := range []int{0, 1, 7, 8, 9, 31, 64, 100} {
		a := make([]float32, n)
		b := make([]float32, n)
		for i := range a {
			a[i] = float32(i)*0.25 - 3
			b[i] = 1 - float32(i)*0.125
		}
		want := dotScalar(a, b)
		got := Dot(a, b)
		if !closeEnough(want, got, 1e-5) {
			t.Fatalf("n=%d: scalar=%g dot=%g", n, want, got)
		}
	}
}

func TestAdd(t *testing.T) {
	dst := []float32{1, 2, 3}
	src := []float32{10, 20, 30}
	Add(dst, src)
	want := []float32{11, 22, 33}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("index %d: want %g got %g", i, want[i], dst[i])
		}
	}
}

func TestSoftmaxSumsToOne(t *testing.T) {
	x := []float32{-2, 0, 1, 5, 3}
	Softmax(x)
	var sum float64
	for _, v := range x {
		if v < 0 || v > 1 {
			t.Fatalf("probability out of range: %g", v)
		}
		sum += float64(v)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("probabilities sum to %g", sum)
	}
}

func TestArgmax(t *testing.T) {
	if got := Argmax([]float32{-1, 5, 3, 7, 2}); got != 3 {
		t.Fatalf("want 3 got %d", got)
	}
	// First occurrence wins on ties.
	if got := Argmax([]float32{1, 7, 7, 0}); got != 1 {
		t.Fatalf("want 1 got %d", got)
	}
}
