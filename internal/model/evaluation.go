package model

import "time"

// Evaluation status constants.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// CrossResult is the output of one verification engine for an evaluation.
type CrossResult struct {
	Engine string `json:"engine"`
	Output string `json:"output"`
	Error  string `json:"error,omitempty"`
}

// Evaluation is a persisted record of one script evaluation.
type Evaluation struct {
	ID           string        `json:"id"`
	Engine       string        `json:"engine"`
	Status       string        `json:"status"`
	Script       string        `json:"script"`
	Output       string        `json:"output"`
	Error        string        `json:"error,omitempty"`
	Mismatch     bool          `json:"mismatch"`
	CrossResults []CrossResult `json:"cross_results,omitempty"`
	DurationMS   int64         `json:"duration_ms"`
	CreatedAt    time.Time     `json:"created_at"`
}

// StatusFor returns the status of an evaluation with the given error text.
func StatusFor(errText string) string {
	if errText != "" {
		return StatusError
	}
	return StatusOK
}

// EvaluationStats aggregates persisted evaluations.
type EvaluationStats struct {
	Total         int            `json:"total"`
	CountByEngine map[string]int `json:"count_by_engine"`
	CountByStatus map[string]int `json:"count_by_status"`
	Mismatches    int            `json:"mismatches"`
	AvgDurationMS float64        `json:"avg_duration_ms"`
}
