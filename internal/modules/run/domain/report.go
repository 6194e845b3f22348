package domain

import "time"

// Report summarizes one tick.
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Total      int       `json:"total"`
	Filtered   int       `json:"filtered"`
	Skipped    int       `json:"skipped"`
	Published  int       `json:"published"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

// Progress is the orchestrator state with the entry being processed.
type Progress struct {
	State State `json:"state"`
	Index int   `json:"index"`
	Total int   `json:"total"`
}
