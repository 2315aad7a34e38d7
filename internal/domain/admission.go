package domain

import "time"

// AdmissionOutcome is the gate decision for a single scan.
type AdmissionOutcome string

const (
	AdmissionAllowed  AdmissionOutcome = "allowed"
	AdmissionReplay   AdmissionOutcome = "replay"
	AdmissionNotFound AdmissionOutcome = "not_found"
)

// Admission is the result of an admit attempt. EntryTime is the new timestamp
// on allow and the original one on replay.
type Admission struct {
	UserID    string
	Outcome   AdmissionOutcome
	EntryTime *time.Time
	User      *User
}

// Allowed reports whether the holder may pass the gate.
func (a Admission) Allowed() bool {
	return a.Outcome == AdmissionAllowed
}

// PlayBuzzer reports whether gate staff must be alerted.
func (a Admission) PlayBuzzer() bool {
	return a.Outcome != AdmissionAllowed
}

// EntrySnapshot is the read-only pre-check shown to a gate operator.
type EntrySnapshot struct {
	User       *User
	Validated  bool
	HasEntered bool
	EntryTime  *time.Time
	AllowEntry bool
}
