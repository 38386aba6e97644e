// internal/model/signal.go
package model

// ProjectSignal is the structured input to urgency classification. It is
// produced upstream (intake agents, request parsing) and never mutated here.
type ProjectSignal struct {
	ProjectType   string   `json:"project_type"`
	Requirements  string   `json:"requirements"`
	Concerns      []string `json:"concerns"`
	Urgency       string   `json:"urgency,omitempty"`
	TimelineStart string   `json:"timeline_start,omitempty"`
	TimelineEnd   string   `json:"timeline_end,omitempty"`
}
