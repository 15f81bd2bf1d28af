package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/jask/frontfrend/internal/prefs"
)

// Status is the job state reported by the status endpoint.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Terminal reports whether polling should stop.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

func (s Status) valid() bool {
	return s == StatusProcessing || s.Terminal()
}

// StartRequest is the body of POST /api/workflow/start.
type StartRequest struct {
	RepoURL         string            `json:"repo_url"`
	UserPreferences prefs.Preferences `json:"user_preferences"`
}

// StatusResponse is returned by GET /api/workflow/status.
type StatusResponse struct {
	Status   Status   `json:"status"`
	Messages []string `json:"messages"`
	Message  string   `json:"message,omitempty"`
}

// Latest returns the most recent progress message, if any.
func (s StatusResponse) Latest() string {
	if len(s.Messages) == 0 {
		return s.Message
	}
	return s.Messages[len(s.Messages)-1]
}

// Results is returned by GET /api/workflow/results once a job completed.
type Results struct {
	Improvements []Improvement `json:"improvements"`
	Files        []FileChange  `json:"files"`
}

// FileChange holds one file's content before and after the job ran.
type FileChange struct {
	Path   string `json:"path"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Improvement is one applied change. The backend sends either a bare
// sentence or an object with type, description and impact.
type Improvement struct {
	Type        string `json:"type,omitempty"`
	Description string `json:"description"`
	Impact      string `json:"impact,omitempty"`
}

func (i *Improvement) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*i = Improvement{Description: text}
		return nil
	}
	type plain Improvement
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("improvement: %w", err)
	}
	*i = Improvement(p)
	return nil
}

// String renders the improvement as a single line.
func (i Improvement) String() string {
	out := i.Description
	if i.Type != "" {
		out = i.Type + ": " + out
	}
	if i.Impact != "" {
		out += " (" + i.Impact + ")"
	}
	return out
}
