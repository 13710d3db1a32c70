package cases

import "github.com/rodzerz/customs-crm/internal/domain"

// transitions is the legal-edge table for the case lifecycle. It is a plain
// adjacency structure so tests can enumerate every (from, to) pair.
//
//	new → screening
//	screening → in_inspection | released
//	in_inspection → on_hold | released | rejected
//	on_hold → in_inspection | released | rejected
//	released → closed
//	rejected → closed
//	closed is terminal
var transitions = map[domain.CaseStatus][]domain.CaseStatus{
	domain.StatusNew:          {domain.StatusScreening},
	domain.StatusScreening:    {domain.StatusInInspection, domain.StatusReleased},
	domain.StatusInInspection: {domain.StatusOnHold, domain.StatusReleased, domain.StatusRejected},
	domain.StatusOnHold:       {domain.StatusInInspection, domain.StatusReleased, domain.StatusRejected},
	domain.StatusReleased:     {domain.StatusClosed},
	domain.StatusRejected:     {domain.StatusClosed},
	domain.StatusClosed:       {},
}

// CanTransition reports whether target is a legal successor of from.
// Pure, no side effects.
func CanTransition(from, target domain.CaseStatus) bool {
	for _, next := range transitions[from] {
		if next == target {
			return true
		}
	}
	return false
}

// SuccessorsOf returns the legal successor set of a status.
func SuccessorsOf(from domain.CaseStatus) []domain.CaseStatus {
	return append([]domain.CaseStatus{}, transitions[from]...)
}
