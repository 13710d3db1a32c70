package domain

import "time"

// InspectionType enumerates how a case can be inspected.
type InspectionType string

const (
	InspectionDocument InspectionType = "document"
	InspectionRTG      InspectionType = "RTG"
	InspectionPhysical InspectionType = "physical"
)

// InspectionTypes lists the valid inspection types.
var InspectionTypes = []InspectionType{InspectionDocument, InspectionRTG, InspectionPhysical}

// ValidInspectionType reports whether t is a member of the fixed type set.
func ValidInspectionType(t InspectionType) bool {
	for _, known := range InspectionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// InspectionStatus is pending until a decision is recorded.
type InspectionStatus string

const (
	InspectionPending   InspectionStatus = "pending"
	InspectionCompleted InspectionStatus = "completed"
)

// Decision enumerates the outcomes an inspector can record.
type Decision string

const (
	DecisionRelease Decision = "release"
	DecisionHold    Decision = "hold"
	DecisionReject  Decision = "reject"
)

// Decisions lists the valid inspection decisions.
var Decisions = []Decision{DecisionRelease, DecisionHold, DecisionReject}

// ValidDecision reports whether d is a member of the fixed decision set.
func ValidDecision(d Decision) bool {
	for _, known := range Decisions {
		if d == known {
			return true
		}
	}
	return false
}

// Inspection belongs to exactly one case. A completed inspection always has a
// decision and a performed-at timestamp, and is immutable afterwards.
type Inspection struct {
	ID             string
	CaseID         string
	Type           InspectionType
	Status         InspectionStatus
	Decision       Decision // empty until completed
	DecisionReason string
	Comment        string
	PerformedAt    *time.Time
	CreatedAt      time.Time
}
