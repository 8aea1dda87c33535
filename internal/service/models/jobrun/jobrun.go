package jobrun

import "time"

// TimeLayout is the timestamp layout every audit log line starts with.
const TimeLayout = "2006-01-02 15:04:05"

// Outcome is what a single job run reports after it finishes. It is
// ephemeral: the audit log line is the durable record, the Outcome only
// feeds the optional event stream.
type Outcome struct {
	Job        string    `json:"job"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Line       string    `json:"line"`
	Error      string    `json:"error,omitempty"`
}
