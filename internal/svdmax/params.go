package svdmax

// DefaultPreviewRank is the preview rank used when none is configured:
// ceil(D/5).  Roughly balances the O(V·W) preview against the O(N·D)
// correction for typical vocabulary/hidden ratios.
func DefaultPreviewRank(d int) int {
	return (d + 4) / 5
}

// DefaultBudget is the correction budget used when none is configured:
// ceil(V/10).
func DefaultBudget(v int) int {
	return (v + 9) / 10
}

// SetParams configures the preview rank and correction budget.  A zero
// value selects the default for that parameter.  On success the preview
// basis is re-sliced from the cached correction basis; the decomposition
// itself is never recomputed.  On failure the previous configuration stays
// active.
//
// Constraints: 1 <= previewRank < D and 1 <= budget < V.
func (p *Projection) SetParams(previewRank, budget int) error {
	if previewRank == 0 {
		previewRank = DefaultPreviewRank(p.D)
	}
	if budget == 0 {
		budget = DefaultBudget(p.V)
	}
	// Validate both before mutating anything.
	if previewRank < 0 {
		return paramErrorf("preview rank must be positive, got %d", previewRank)
	}
	if previewRank >= p.D {
		return paramErrorf("preview rank %d must be smaller than hidden dimension %d", previewRank, p.D)
	}
	if budget < 0 {
		return paramErrorf("correction budget must be positive, got %d", budget)
	}
	if budget >= p.V {
		return paramErrorf("correction budget %d must be smaller than vocabulary size %d", budget, p.V)
	}

	p.previewRank = previewRank
	p.budget = budget
	p.bw = p.B.SliceCols(previewRank)
	return nil
}
