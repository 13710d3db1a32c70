package domain

import "time"

// CaseStatus enumerates the customs case lifecycle states.
type CaseStatus string

const (
	StatusNew          CaseStatus = "new"
	StatusScreening    CaseStatus = "screening"
	StatusInInspection CaseStatus = "in_inspection"
	StatusOnHold       CaseStatus = "on_hold"
	StatusReleased     CaseStatus = "released"
	StatusRejected     CaseStatus = "rejected"
	StatusClosed       CaseStatus = "closed"
)

// Statuses lists every valid case status. Order follows the lifecycle.
var Statuses = []CaseStatus{
	StatusNew,
	StatusScreening,
	StatusInInspection,
	StatusOnHold,
	StatusReleased,
	StatusRejected,
	StatusClosed,
}

// ValidStatus reports whether s is a member of the fixed status set.
func ValidStatus(s CaseStatus) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// RiskLevel is derived from a case's risk score, never stored.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Case is a single customs clearance unit tracked end-to-end. It is a plain
// record: all mutations go through the case service, never through the struct.
type Case struct {
	ID                 string // externally assigned unique id
	VehicleID          string
	Status             CaseStatus
	RiskScore          int
	RiskReason         string // semicolon-joined reasons from the last analysis
	Route              string
	OriginCountry      string
	DestinationCountry string
	DeclaredValue      *float64
	ActualValue        *float64
	PreviousViolations int
	ArrivedAt          *time.Time
	StatusUpdatedAt    time.Time
	CreatedAt          time.Time
}

// RiskLevelFor maps a risk score to its level. The high threshold of 100 is
// only reachable when every scoring component maxes out simultaneously; the
// arithmetic is kept exact rather than adjusted.
func RiskLevelFor(score int) RiskLevel {
	switch {
	case score >= 100:
		return RiskHigh
	case score >= 30:
		return RiskMedium
	default:
		return RiskLow
	}
}
