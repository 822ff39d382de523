package svdmax

import "fmt"

// ShapeError reports an input with the wrong rank or an incompatible
// dimension (hidden state length != D, weight matrix not V×D with V > D,
// bias length != V).  It is always surfaced to the caller, never recovered
// locally.
type ShapeError struct {
	Msg string
}

func (e *ShapeError) Error() string {
	return "shape: " + e.Msg
}

func shapeErrorf(format string, args ...any) error {
	return &ShapeError{Msg: fmt.Sprintf(format, args...)}
}

// ParameterError reports a preview rank or correction budget outside its
// valid range.  A failed re-parameterization leaves the previous
// configuration untouched.
type ParameterError struct {
	Msg string
}

func (e *ParameterError) Error() string {
	return "parameter: " + e.Msg
}

func paramErrorf(format string, args ...any) error {
	return &ParameterError{Msg: fmt.Sprintf(format, args...)}
}
