package tensor

import (
	"runtime"
	"sync"

	"simd/archsimd"
)

type matVecTask struct {
	dst    []float32
	w      *Mat
	x      []float32
	rs, re int
	done   chan struct{}
}

type matVecPool struct {
	size      int
	tasks     chan matVecTask
	doneSlots chan chan struct{}
}

var matVecWorkPool *matVecPool

var matVecPoolOnce sync.Once

func getMatVecPool() *matVecPool {
	matVecPoolOnce.Do(func() {
		matVecWorkPool = newMatVecPool()
	})
	return matVecWorkPool
}

func newMatVecPool() *matVecPool {
	size := runtime.GOMAXPROCS(0)
	if size < 1 {
		size = 1
	}
	p := &matVecPool{
		size:      size,
		tasks:     make(chan matVecTask, size*2),
		doneSlots: make(chan chan struct{}, size),
	}
	for i := 0; i < size; i++ {
		p.doneSlots <- make(chan struct{}, 1)
	}
	for i := 0; i < size; i++ {
		go func() {
			for task := range p.tasks {
				matVecRange(task.dst, task.w, task.x, task.rs, task.re)
				task.done <- struct{}{}
			}
		}()
	}
	return p
}

// MatVec computes dst = w * x where w is a matrix and x is a vector.
// It runs in parallel using a worker pool.
func MatVec(dst []float32, w *Mat, x []float32) {
	if w.R == 0 || w.C == 0 {
		return
	}
	if len(dst) < w.R || len(x) < w.C {
		panic("matvec shape mismatch")
	}

	pool := getMatVecPool()
	workers := pool.size
	if workers > w.R {
		workers = w.R
	}

	if workers <= 1 {
		matVecRange(dst, w, x, 0, w.R)
		return
	}

	chunk := (w.R + workers - 1) / workers
	done := <-pool.doneSlots

	activeWorkers := 0
	for i := 0; i < workers; i++ {
		rs := i * chunk
		re := rs + chunk
		if re > w.R {
			re = w.R
		}
		if rs >= re {
			break
		}
		activeWorkers++
		pool.tasks <- matVecTask{
			dst:  dst,
			w:    w,
			x:    x,
			rs:   rs,
			re:   re,
			done: done,
		}
	}

	for i := 0; i < activeWorkers; i++ {
		<-done
	}
	pool.doneSlots <- done
}

func matVecRange(dst []float32, w *Mat, x []float32, rs, re int) {
	if cpu.HasAVX2 {
		matVecRangeSIMD(dst, w, x, rs, re)
		return
	}
	matVecRangeScalar(dst, w, x, rs, re)
}

// matVecRangeScalar computes matvec using scalar operations.
func matVecRangeScalar(dst []float32, w *Mat, x []float32, rs, re int) {
	for i := rs; i < re; i++ {
		row := w.Data[i*w.Stride : i*w.Stride+w.C]
		dst[i] = dotScalar(row, x[:w.C])
	}
}

// matVecRangeSIMD computes matvec using AVX2 SIMD.
// Uses a single accumulator to minimize register pressure.
func matVecRangeSIMD(dst []float32, w *Mat, x []float32, rs, re int) {
	c := w.C
	for i := rs; i < re; i++ {
		row := w.Data[i*w.Stride : i*w.Stride+w.C]

		// Single accumulator - reduces register pressure
		var acc archsimd.Float32x8
		j := 0
		// Process 8 elements at a time
		for ; j+8 <= c; j += 8 {
			vrow := archsimd.LoadFloat32x8Slice(row[j:])
			vx := archsimd.LoadFloat32x8Slice(x[j:])
			acc = acc.Add(vrow.Mul(vx))
		}

		// Horizontal reduction: store to array and sum scalarly
		var tmp [8]float32
		acc.Store(&tmp)
		var sum float32
		sum += tmp[0] + tmp[1] + tmp[2] + tmp[3] + tmp[4] + tmp[5] + tmp[6] + tmp[7]

		// Handle remaining elements
		for ; j < c; j++ {
			sum += row[j] * x[j]
		}
		dst[i] = sum
	}
}
