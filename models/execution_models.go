package models

import (
	// Go Internal Packages
	"time"
)

// Pipeline steps, executed strictly in order. The publish step runs on
// both the success and the failure path; Outcome tells which.
const (
	StepValidate = "validate"
	StepMutate   = "mutate"
	StepPublish  = "publish"
)

// Execution statuses. Completed and Failed are terminal.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Publish outcomes.
const (
	OutcomeSuccess = 1
	OutcomeFailure = 0
)

// FailureCause is one level of a wrapped failure chain, ordered
// outermost first. The innermost message is what clients see.
type FailureCause struct {
	Kind    string `json:"kind" bson:"kind"`
	Message string `json:"message" bson:"message"`
}

// ExecutionRecord is the durable checkpoint of one pipeline run, keyed
// by the transaction id. The runner advances Step and RunAt after each
// completed step; a restart resumes from the last incomplete step.
type ExecutionRecord struct {
	ID         string             `bson:"_id"`
	Input      TransactionRequest `bson:"input"`
	Step       string             `bson:"step"`
	Outcome    int                `bson:"outcome"`
	Status     string             `bson:"status"`
	Result     string             `bson:"result,omitempty"`
	Failure    []FailureCause     `bson:"failure,omitempty"`
	RunAt      time.Time          `bson:"run_at"`
	LeaseUntil time.Time          `bson:"lease_until"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
	ExpiresAt  *time.Time         `bson:"expires_at,omitempty"`
}

// Terminal reports whether the record reached a final status.
func (r *ExecutionRecord) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}

// RootCause returns the innermost message of the failure chain, or ""
// when the record carries no failure.
func (r *ExecutionRecord) RootCause() string {
	if len(r.Failure) == 0 {
		return ""
	}
	return r.Failure[len(r.Failure)-1].Message
}

// StatusResponse is the client-facing projection of an ExecutionRecord.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
