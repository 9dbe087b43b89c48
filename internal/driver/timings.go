package driver

import (
	"chplfmt/internal/observ"
)

// TimingPayload is the timer report attached to JSON output under --timings.
type TimingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// NewTimingPayload wraps a timer report; an empty kind becomes "run".
func NewTimingPayload(kind, path string, report observ.Report) *TimingPayload {
	if kind == "" {
		kind = "run"
	}
	phases := report.Phases
	if phases == nil {
		phases = []observ.PhaseReport{}
	}
	return &TimingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: phases}
}
