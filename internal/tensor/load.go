package tensor

import (
	"fmt"

	"github.com/samcharles93/svdmax/internal/safetensors"
)

// LoadSafetensorsMat loads a 2D matrix from a Safetensors file.
func LoadSafetensorsMat(st *safetensors.File, name string) (*Mat, error) {
	data, info, err := st.ReadTensorF32(name)
	if err != nil {
		return nil, err
	}
	if len(info.Shape) != 2 {
		return nil, fmt.Errorf("%s: expected 2D tensor", name)
	}
	r := info.Shape[0]
	c := info.Shape[1]
	if r*c != len(data) {
		return nil, fmt.Errorf("%s: size mismatch", name)
	}
	return &Mat{R: r, C: c, Stride: c, Data: data}, nil
}

// LoadSafetensorsVec loads a 1D vector from a Safetensors file.
func LoadSafetensorsVec(st *safetensors.File, name string) ([]float32, error) {
	data, info, err := st.ReadTensorF32(name)
	if err != nil {
		return nil, err
	}
	if len(info.Shape) != 1 {
		return nil, fmt.Errorf("%s: expected 1D tensor", name)
	}
	return data, nil
}
