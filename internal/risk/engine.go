// Package risk scores customs cases for smuggling and compliance risk.
// The engine is pure domain logic: no I/O, no side effects. Persisting the
// result onto the case is the case service's job.
package risk

import (
	"regexp"
	"strings"

	"github.com/rodzerz/customs-crm/internal/domain"
	dErrors "github.com/rodzerz/customs-crm/pkg/domain-errors"
	pstrings "github.com/rodzerz/customs-crm/pkg/platform/strings"
)

// Assessment is the structured result of analyzing one case.
type Assessment struct {
	Score         int
	Level         domain.RiskLevel
	ShouldInspect bool
	Reasons       []string
}

// RiskReason joins the reasons the way they are persisted on the case.
// Identical cargo lines repeat their reason in Reasons; the persisted string
// carries each distinct reason once.
func (a Assessment) RiskReason() string {
	return strings.Join(pstrings.DedupeAndTrim(a.Reasons), "; ")
}

var hsCodePattern = regexp.MustCompile(`^\d{10}$`)

// Engine evaluates case and cargo attributes into a deterministic risk
// assessment. The goal is to keep the rules centralized and testable.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Analyze computes the five capped component scores and sums them. Malformed
// risk-relevant fields fail the analysis instead of silently scoring zero, so
// bad data can never masquerade as a low-risk case.
//
// A case with no cargo items scores zero across the board.
func (e *Engine) Analyze(c domain.Case, items []domain.CargoItem) (Assessment, error) {
	if err := validateInputs(c, items); err != nil {
		return Assessment{}, err
	}

	if len(items) == 0 {
		return Assessment{Level: domain.RiskLow}, nil
	}

	score := 0
	var reasons []string

	// Component order is fixed; reasons are reported in the same order.
	for _, component := range []func() (int, []string){
		func() (int, []string) { return scoreCommodity(items) },
		func() (int, []string) { return scoreRoute(c.Route) },
		func() (int, []string) { return scoreValue(c.DeclaredValue, c.ActualValue) },
		func() (int, []string) { return scoreOrigin(c.OriginCountry) },
		func() (int, []string) { return scoreViolations(c.PreviousViolations) },
	} {
		s, r := component()
		score += s
		reasons = append(reasons, r...)
	}

	return Assessment{
		Score:         score,
		Level:         domain.RiskLevelFor(score),
		ShouldInspect: score >= 30,
		Reasons:       reasons,
	}, nil
}

func validateInputs(c domain.Case, items []domain.CargoItem) error {
	if c.PreviousViolations < 0 {
		return dErrors.New(dErrors.CodeValidation, "previous violations must not be negative")
	}
	if c.DeclaredValue != nil && *c.DeclaredValue < 0 {
		return dErrors.New(dErrors.CodeValidation, "declared value must not be negative")
	}
	if c.ActualValue != nil && *c.ActualValue < 0 {
		return dErrors.New(dErrors.CodeValidation, "actual value must not be negative")
	}
	for _, item := range items {
		if !hsCodePattern.MatchString(item.HSCode) {
			return dErrors.Newf(dErrors.CodeValidation, "cargo item %s: hs code must be 10 digits", item.ID)
		}
		if item.Weight <= 0 {
			return dErrors.Newf(dErrors.CodeValidation, "cargo item %s: weight must be positive", item.ID)
		}
		if item.Value <= 0 {
			return dErrors.Newf(dErrors.CodeValidation, "cargo item %s: value must be positive", item.ID)
		}
	}
	return nil
}
