package models

// PriorityEvent is a time-urgent location to visit. Events are ordered by
// DueAt ascending; ties are broken by insertion order, which does not affect
// correctness.
type PriorityEvent struct {
	DueAt    float64  `json:"due_at"`
	Location Location `json:"location"`

	// Payload carries mode-specific opaque data (e.g. an encounter ID) that
	// must survive untouched through a mode that skips clustering.
	Payload any `json:"payload,omitempty"`
}
