package worker

import (
	"encoding/json"

	"github.com/domino14/bgstats/game"
)

// Job is an analysis request.
type Job struct {
	// Unique identifier for this job, echoed in the result
	JobID string `json:"job-id"`

	// Match is the match file in matchio's JSON format.
	Match json.RawMessage `json:"match"`

	// Store asks the worker to save the analysed match in its database.
	Store bool `json:"store,omitempty"`
}

// Result is the reply to a Job.
type Result struct {
	JobID   string    `json:"job-id"`
	Error   string    `json:"error,omitempty"`
	Players [2]string `json:"players"`

	// Stats are the match statistics and Games the statistics of each
	// game.
	Stats game.StatContext   `json:"stats"`
	Games []game.StatContext `json:"games,omitempty"`

	// Report is the rendered statistics report.
	Report string `json:"report,omitempty"`

	// StoredMatchID is set if the match was saved.
	StoredMatchID int64 `json:"stored-match-id,omitempty"`
}
