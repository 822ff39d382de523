package main

import (
	"fmt"

	"github.com/samcharles93/svdmax/internal/logger"
	"github.com/samcharles93/svdmax/internal/safetensors"
	"github.com/samcharles93/svdmax/internal/svdmax"
	"github.com/samcharles93/svdmax/internal/tensor"
)

// buildEvaluator loads (or synthesizes) the projection weights and runs the
// one-time decomposition.
func buildEvaluator(log logger.Logger) (*svdmax.Evaluator, error) {
	var (
		w    *tensor.Mat
		bias []float32
	)
	if weightsPath != "" {
		st, err := safetensors.Open(weightsPath)
		if err != nil {
			return nil, fmt.Errorf("open weights %q: %w", weightsPath, err)
		}
		w, err = tensor.LoadSafetensorsMat(st, weightTensor)
		if err != nil {
			return nil, fmt.Errorf("load weight tensor: %w", err)
		}
		if biasTensor != "" {
			bias, err = tensor.LoadSafetensorsVec(st, biasTensor)
			if err != nil {
				return nil, fmt.Errorf("load bias tensor: %w", err)
			}
		}
		log.Info("loaded weights", "path", weightsPath, "tensor", weightTensor,
			"vocab", w.R, "dim", w.C, "bias", bias != nil)
	} else {
		m := tensor.NewMat(int(vocab), int(dim))
		tensor.FillRand(&m, seed)
		w = &m
		log.Info("generated random weights", "vocab", w.R, "dim", w.C, "seed", seed)
	}

	ev, err := svdmax.Configure(w, svdmax.Options{
		PreviewRank: int(previewRank),
		Budget:      int(budget),
		Bias:        bias,
	})
	if err != nil {
		return nil, err
	}
	info := ev.Projection().Info()
	log.Info("decomposition ready",
		"preview_rank", info.PreviewRank, "budget", info.Budget,
		"cache_mb", float64(info.Bytes)/(1024*1024))
	return ev, nil
}
