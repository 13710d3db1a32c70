package cases

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rodzerz/customs-crm/internal/domain"
)

func TestCanTransition(t *testing.T) {
	allowed := map[domain.CaseStatus][]domain.CaseStatus{
		domain.StatusNew:          {domain.StatusScreening},
		domain.StatusScreening:    {domain.StatusInInspection, domain.StatusReleased},
		domain.StatusInInspection: {domain.StatusOnHold, domain.StatusReleased, domain.StatusRejected},
		domain.StatusOnHold:       {domain.StatusInInspection, domain.StatusReleased, domain.StatusRejected},
		domain.StatusReleased:     {domain.StatusClosed},
		domain.StatusRejected:     {domain.StatusClosed},
		domain.StatusClosed:       {},
	}

	// Every ordered pair is checked, so adding an edge by accident fails here.
	for _, from := range domain.Statuses {
		for _, to := range domain.Statuses {
			want := false
			for _, target := range allowed[from] {
				if to == target {
					want = true
				}
			}
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCanTransitionUnknownStatus(t *testing.T) {
	assert.False(t, CanTransition(domain.CaseStatus("bogus"), domain.StatusScreening))
	assert.False(t, CanTransition(domain.StatusNew, domain.CaseStatus("bogus")))
}

func TestSuccessorsOf(t *testing.T) {
	assert.ElementsMatch(t,
		[]domain.CaseStatus{domain.StatusOnHold, domain.StatusReleased, domain.StatusRejected},
		SuccessorsOf(domain.StatusInInspection))
	assert.Empty(t, SuccessorsOf(domain.StatusClosed))
}
