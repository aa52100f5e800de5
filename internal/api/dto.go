package api

import "github.com/diligent-ai/diligent/internal/core"

// createAnalysisRequest is the POST /analyses body. Backends is
// optional; empty means the configured defaults.
type createAnalysisRequest struct {
	Text     string   `json:"text"`
	Backends []string `json:"backends,omitempty"`
}

// createDebateRequest is the POST /debates body. Role fields are
// optional; empty means the configured defaults.
type createDebateRequest struct {
	Topic   string `json:"topic"`
	Rounds  int    `json:"rounds,omitempty"`
	For     string `json:"for,omitempty"`
	Against string `json:"against,omitempty"`
	Judge   string `json:"judge,omitempty"`
}

// backendStatusDTO is one entry of GET /backends.
type backendStatusDTO struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

// debateResponse wraps a debate state; failed debates carry their
// partial transcript plus failure fields, so the same shape serves both.
type debateResponse struct {
	*core.DebateState
}
