package svdmax

import (
	"runtime"
	"sync"

	"github.com/samcharles93/svdmax/internal/tensor"
)

// Forward computes the approximate projection of a single hidden vector of
// length D and returns a vector of length V.  The returned slice aliases the
// scratch buffer and stays valid until the next call using the same scratch.
// Passing a nil scratch allocates per call.
//
// The pipeline: rotate the hidden state into the decomposition basis,
// preview-multiply against the truncated basis, select the top candidates,
// then overwrite exactly those entries with the full-rank correction.
func (p *Projection) Forward(h []float32, sc *Scratch) ([]float32, error) {
	p.ensureParams()
	if len(h) != p.D {
		return nil, shapeErrorf("hidden state length %d does not match dimension %d", len(h), p.D)
	}
	if sc == nil {
		sc = &Scratch{}
	}

	rot := sc.rotFor(p.D)
	tensor.MatVec(rot, &p.Vt, h)

	z := sc.outFor(p.V)
	tensor.MatVec(z, &p.bw, rot[:p.previewRank])
	if p.bias != nil {
		tensor.Add(z, p.bias)
	}

	idxBuf, valBuf := sc.selectionFor(p.budget)
	idx := topN(idxBuf, valBuf, z, p.budget)

	p.correctSingle(z, rot, idx)
	return z, nil
}

// ForwardBatch computes the approximate projection of a batch of hidden
// vectors, one per row (batch×D in, batch×V out).  Rows of the result are
// numerically identical to Forward on the corresponding input row.
func (p *Projection) ForwardBatch(hb *tensor.Mat, sc *Scratch) (tensor.Mat, error) {
	p.ensureParams()
	if hb == nil {
		return tensor.Mat{}, shapeErrorf("batch must be a 2D matrix")
	}
	if hb.C != p.D {
		return tensor.Mat{}, shapeErrorf("batch width %d does not match dimension %d", hb.C, p.D)
	}
	batch := hb.R
	if sc == nil {
		sc = &Scratch{}
	}

	rot := tensor.NewMat(batch, p.D)
	out := tensor.NewMat(batch, p.V)
	for b := 0; b < batch; b++ {
		rrow := rot.Row(b)
		zrow := out.Row(b)
		tensor.MatVec(rrow, &p.Vt, hb.Row(b))
		tensor.MatVec(zrow, &p.bw, rrow[:p.previewRank])
		if p.bias != nil {
			tensor.Add(zrow, p.bias)
		}
	}

	// Candidate indices, one block of N per sample.
	cand := make([]int, batch*p.budget)
	for b := 0; b < batch; b++ {
		idxBuf, valBuf := sc.selectionFor(p.budget)
		idx := topN(idxBuf, valBuf, out.Row(b), p.budget)
		copy(cand[b*p.budget:(b+1)*p.budget], idx)
	}

	p.correctBatch(&out, &rot, cand)
	return out, nil
}

// fullView is the inner correction formula shared by both index paths: the
// exact dot product of correction-basis row v against the fully rotated
// hidden vector, plus bias when present.
func (p *Projection) fullView(v int, rot []float32) float32 {
	s := tensor.Dot(p.B.Row(v), rot[:p.D])
	if p.bias != nil {
		s += p.bias[v]
	}
	return s
}

// correctSingle overwrites z at each selected index with its exact value.
// Every (index) pair writes a distinct element of z, so the corrections run
// unordered across the pool with a single join.
func (p *Projection) correctSingle(z, rot []float32, idx []int) {
	runCorrections(len(idx), func(ps, pe int) {
		for n := ps; n < pe; n++ {
			v := idx[n]
			z[v] = p.fullView(v, rot)
		}
	})
}

// correctBatch is the batched variant: pairs are flattened sample-major as
// nb = b*N + n, so each worker walks contiguous output rows.  Indices within
// one sample are distinct and samples occupy distinct rows, so no two pairs
// write the same element.
func (p *Projection) correctBatch(out, rot *tensor.Mat, cand []int) {
	n := p.budget
	runCorrections(len(cand), func(ps, pe int) {
		for nb := ps; nb < pe; nb++ {
			b := nb / n
			v := cand[nb]
			out.Row(b)[v] = p.fullView(v, rot.Row(b))
		}
	})
}

type correctTask struct {
	run    func(ps, pe int)
	ps, pe int
	done   chan struct{}
}

type correctPool struct {
	size      int
	tasks     chan correctTask
	doneSlots chan chan struct{}
}

var correctWorkPool *correctPool

var correctPoolOnce sync.Once

func getCorrectPool() *correctPool {
	correctPoolOnce.Do(func() {
		correctWorkPool = newCorrectPool()
	})
	return correctWorkPool
}

func newCorrectPool() *correctPool {
	size := runtime.GOMAXPROCS(0)
	if size < 1 {
		size = 1
	}
	p := &correctPool{
		size:      size,
		tasks:     make(chan correctTask, size*2),
		doneSlots: make(chan chan struct{}, size),
	}
	for i := 0; i < size; i++ {
		p.doneSlots <- make(chan struct{}, 1)
	}
	for i := 0; i < size; i++ {
		go func() {
			for task := range p.tasks {
				task.run(task.ps, task.pe)
				task.done <- struct{}{}
			}
		}()
	}
	return p
}

// runCorrections fans the range [0, total) out across the correction pool
// and joins before returning.  Small ranges run inline.
func runCorrections(total int, run func(ps, pe int)) {
	if total == 0 {
		return
	}
	pool := getCorrectPool()
	workers := pool.size
	if workers > total {
		workers = total
	}
	if workers <= 1 || total < 64 {
		run(0, total)
		return
	}

	chunk := (total + workers - 1) / workers
	done := <-pool.doneSlots

	active := 0
	for i := 0; i < workers; i++ {
		ps := i * chunk
		pe := ps + chunk
		if pe > total {
			pe = total
		}
		if ps >= pe {
			break
		}
		active++
		pool.tasks <- correctTask{
			run:  run,
			ps:   ps,
			pe:   pe,
			done: done,
		}
	}

	for i := 0; i < active; i++ {
		<-done
	}
	pool.doneSlots <- done
}
