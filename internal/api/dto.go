package api

import (
	json "github.com/goccy/go-json"
)

// ProjectRequest scores one hidden vector or a batch of them.  Hidden accepts
// either a flat array of D floats or an array of such arrays; the two forms
// mirror the evaluator's single and batched entry points.
type ProjectRequest struct {
	Hidden json.RawMessage `json:"hidden"`
	// Exact switches the call to the full dense projection.
	Exact bool `json:"exact,omitempty"`
	// Top bounds the number of returned candidates; zero means the
	// configured correction budget.
	Top int `json:"top,omitempty"`
	// Full includes the complete logit vector per sample in the response.
	Full bool `json:"full,omitempty"`
}

type Candidate struct {
	Index int     `json:"index"`
	Logit float32 `json:"logit"`
}

type SampleResult struct {
	Candidates []Candidate `json:"candidates"`
	Logits     []float32   `json:"logits,omitempty"`
}

type ProjectResponse struct {
	ID      string         `json:"id"`
	Mode    string         `json:"mode"`
	Batch   int            `json:"batch"`
	TookMS  float64        `json:"took_ms"`
	Results []SampleResult `json:"results"`
}

type InfoResponse struct {
	Vocab       int    `json:"vocab"`
	Dim         int    `json:"dim"`
	PreviewRank int    `json:"preview_rank"`
	Budget      int    `json:"budget"`
	HasBias     bool   `json:"has_bias"`
	Bytes       int64  `json:"bytes"`
	Version     string `json:"version"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
