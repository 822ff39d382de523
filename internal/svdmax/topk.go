package svdmax

// TopK returns the indices of the k largest values in z, ordered from
// largest to smallest, using the same deterministic first-occurrence
// tie-break as the forward path's candidate selection.
func TopK(z []float32, k int) []int {
	sel := topN(nil, nil, z, k)
	out := make([]int, len(sel))
	copy(out, sel)
	return out
}

// topN appends the indices of the n largest values in z to idx, ordered from
// largest to smallest by value.  Among equal values the earlier index wins
// and keeps its position: a candidate displaces kept entries only when
// strictly greater.  That tie-break is deterministic and load-order stable,
// which keeps selected-index sets reproducible across runs.
//
// idx and vals are reusable scratch slices; the returned slice aliases idx.
// This is an O(V*N) insertion scan, faster than heap selection for the small
// budgets used here.
func topN(idx []int, vals []float32, z []float32, n int) []int {
	if n > len(z) {
		n = len(z)
	}
	if n <= 0 {
		return idx[:0]
	}
	idx = idx[:0]
	vals = vals[:0]

	for i, v := range z {
		pos := len(vals)
		for pos > 0 && vals[pos-1] < v {
			pos--
		}
		if pos >= n {
			continue
		}

		idx = append(idx, 0)
		vals = append(vals, 0)

		copy(idx[pos+1:], idx[pos:])
		copy(vals[pos+1:], vals[pos:])
		idx[pos] = i
		vals[pos] = v

		if len(vals) > n {
			idx = idx[:n]
			vals = vals[:n]
		}
	}
	return idx
}
