package domain

// Epic is the high-level work item a pipeline run expands into stories.
type Epic struct {
	ID    int
	Title string
}

// PageMatch scores one wiki page against an epic title.
type PageMatch struct {
	Path       string  `json:"path"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// StoryDraft is a parsed, not-yet-published story candidate.
type StoryDraft struct {
	Title       string
	Description string
}

// PublishStatus enumerates terminal states of a single publish attempt.
type PublishStatus string

const (
	StatusCreated PublishStatus = "created"
	StatusFailed  PublishStatus = "failed"
	StatusSkipped PublishStatus = "skipped"
)

// PublishOutcome records the result of publishing one story draft.
type PublishOutcome struct {
	Title  string        `json:"title"`
	Status PublishStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
}

// CreatedItem describes a work item created in the tracking system.
type CreatedItem struct {
	ID  int
	URL string
}
