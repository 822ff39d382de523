// Package api exposes a configured projection as a small HTTP scoring
// service: callers post hidden states and get back the top candidate logits,
// either from the approximate pipeline or the exact dense path.
package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/svdmax/internal/logger"
	"github.com/samcharles93/svdmax/internal/svdmax"
	"github.com/samcharles93/svdmax/internal/tensor"
	"github.com/samcharles93/svdmax/internal/version"
)

type Server struct {
	ev    *svdmax.Evaluator
	log   logger.Logger
	clock func() time.Time
}

func NewServer(ev *svdmax.Evaluator, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{
		ev:    ev,
		log:   log,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/info", s.handleInfo)
	e.POST("/v1/project", s.handleProject)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(c *echo.Context) error {
	info := s.ev.Projection().Info()
	return writeJSON(c, http.StatusOK, InfoResponse{
		Vocab:       info.Vocab,
		Dim:         info.Dim,
		PreviewRank: info.PreviewRank,
		Budget:      info.Budget,
		HasBias:     info.HasBias,
		Bytes:       info.Bytes,
		Version:     version.String(),
	})
}

func (s *Server) handleProject(c *echo.Context) error {
	req, err := decodeJSON[ProjectRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	hb, single, err := parseHidden(req.Hidden)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	mode := svdmax.ModeApprox
	modeName := "approx"
	if req.Exact {
		mode = svdmax.ModeExact
		modeName = "exact"
	}
	top := req.Top
	if top <= 0 {
		top = s.ev.Projection().Budget()
	}

	start := s.clock()
	var out tensor.Mat
	if single != nil {
		z, err := s.ev.Evaluate(mode, single, nil)
		if err != nil {
			return projectError(c, err)
		}
		out = tensor.NewMatFromData(1, len(z), z)
	} else {
		out, err = s.ev.EvaluateBatch(mode, hb, nil)
		if err != nil {
			return projectError(c, err)
		}
	}
	took := s.clock().Sub(start)

	results := make([]SampleResult, out.R)
	for b := 0; b < out.R; b++ {
		row := out.Row(b)
		sel := svdmax.TopK(row, top)
		cands := make([]Candidate, len(sel))
		for i, v := range sel {
			cands[i] = Candidate{Index: v, Logit: row[v]}
		}
		results[b] = SampleResult{Candidates: cands}
		if req.Full {
			results[b].Logits = row
		}
	}

	id := "proj-" + uuid.NewString()
	s.log.Debug("projection served", "id", id, "mode", modeName, "batch", out.R, "took", took)
	return writeJSON(c, http.StatusOK, ProjectResponse{
		ID:      id,
		Mode:    modeName,
		Batch:   out.R,
		TookMS:  float64(took.Microseconds()) / 1000.0,
		Results: results,
	})
}

// parseHidden accepts either a flat vector or a rectangular batch.  Exactly
// one of the return values is non-nil on success.
func parseHidden(raw json.RawMessage) (*tensor.Mat, []float32, error) {
	if len(raw) == 0 {
		return nil, nil, errors.New("hidden is required")
	}
	var single []float32
	if err := json.Unmarshal(raw, &single); err == nil {
		if len(single) == 0 {
			return nil, nil, errors.New("hidden must not be empty")
		}
		return nil, single, nil
	}
	var rows [][]float32
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil, errors.New("hidden must be an array of numbers or an array of arrays")
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, errors.New("hidden must not be empty")
	}
	d := len(rows[0])
	hb := tensor.NewMat(len(rows), d)
	for b, row := range rows {
		if len(row) != d {
			return nil, nil, errors.New("hidden rows must all have the same length")
		}
		copy(hb.Row(b), row)
	}
	return &hb, nil, nil
}

// projectError maps the evaluator's typed errors to HTTP status codes.
func projectError(c *echo.Context, err error) error {
	var shapeErr *svdmax.ShapeError
	var paramErr *svdmax.ParameterError
	if errors.As(err, &shapeErr) || errors.As(err, &paramErr) {
		return writeBadRequest(c, err.Error())
	}
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
}
