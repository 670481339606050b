package models

import "time"

// RolloverPhase records how far a billing rollover progressed.
type RolloverPhase string

const (
	RolloverStarted     RolloverPhase = "STARTED"
	RolloverDuesApplied RolloverPhase = "DUES_APPLIED"
	RolloverCompleted   RolloverPhase = "COMPLETED"
)

// RolloverRun is the resumable marker for one owner's end-of-cycle rollover.
type RolloverRun struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	PeriodLabel PeriodLabel   `json:"period_label"`
	Phase       RolloverPhase `json:"phase"`
	StartedAt   time.Time     `json:"started_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
}

// RolloverResult summarises the rows touched by each phase.
type RolloverResult struct {
	Run         RolloverRun `json:"run"`
	DuesAdded   int64       `json:"dues_added"`
	StatusReset int64       `json:"status_reset"`
	Resumed     bool        `json:"resumed"`
}
