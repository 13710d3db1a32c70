package risk

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rodzerz/customs-crm/internal/domain"
)

// Per-component caps. The five caps sum to exactly 100, so a score of 100 is
// only possible when every rule fires at its maximum simultaneously.
const (
	commodityCap = 30
	routeCap     = 20
	valueCap     = 25
	originCap    = 15
	violationCap = 10
)

// highValueThreshold is currency-agnostic: declared values above it add risk
// regardless of the declared currency.
const highValueThreshold = 100_000

// valueDiscrepancyRatio is the relative declared/actual gap that flags a case.
const valueDiscrepancyRatio = 0.20

// highRiskHSCodes holds 4-digit HS chapters with elevated smuggling history.
var highRiskHSCodes = map[string]bool{
	"2710": true, // mineral oils
	"8703": true, // motor vehicles
	"2709": true, // crude oil
	"2401": true, // tobacco
	"6204": true, // women's clothing
	"6203": true, // men's clothing
}

// highRiskCountries holds origin country codes under heightened scrutiny.
var highRiskCountries = map[string]bool{
	"IR": true,
	"SY": true,
	"KP": true,
	"CU": true,
}

var reasonPrinter = message.NewPrinter(language.English)

// scoreCommodity sums per-item commodity risk, capped at commodityCap.
// Items outside the "2000".."9000" lexicographic band add a small flat score
// without a reason; known high-risk chapters add more and are called out.
func scoreCommodity(items []domain.CargoItem) (int, []string) {
	score := 0
	var reasons []string
	for _, item := range items {
		chapter := item.HSCode[:4]
		if highRiskHSCodes[chapter] {
			score += 15
			reasons = append(reasons, fmt.Sprintf("High-risk commodity (HS: %s)", item.HSCode))
		} else if item.HSCode < "2000" || item.HSCode > "9000" {
			score += 5
		}
	}
	if score > commodityCap {
		score = commodityCap
	}
	return score, reasons
}

// scoreRoute flags unusually long route descriptors. Flat score, no scaling.
func scoreRoute(route string) (int, []string) {
	if route != "" && len(route) > 20 {
		return 5, []string{"Complex or unusual route detected"}
	}
	return 0, nil
}

// scoreValue combines the high-value rule and the declared/actual discrepancy
// rule, capped at valueCap.
func scoreValue(declared, actual *float64) (int, []string) {
	score := 0
	var reasons []string

	if declared != nil && *declared > highValueThreshold {
		score += 10
		reasons = append(reasons, reasonPrinter.Sprintf("High-value shipment (€%.0f)", *declared))
	}
	if declared != nil && actual != nil && *declared > 0 && *actual > 0 {
		discrepancy := (*actual - *declared) / *declared
		if discrepancy < 0 {
			discrepancy = -discrepancy
		}
		if discrepancy > valueDiscrepancyRatio {
			score += 15
			reasons = append(reasons, "Significant value discrepancy detected")
		}
	}
	if score > valueCap {
		score = valueCap
	}
	return score, reasons
}

// scoreOrigin is effectively binary: the cap equals the single rule's score.
func scoreOrigin(origin string) (int, []string) {
	if origin != "" && highRiskCountries[strings.ToUpper(origin)] {
		return originCap, []string{fmt.Sprintf("Shipment from high-risk country (%s)", origin)}
	}
	return 0, nil
}

func scoreViolations(count int) (int, []string) {
	if count <= 0 {
		return 0, nil
	}
	score := count * 3
	if score > violationCap {
		score = violationCap
	}
	return score, []string{fmt.Sprintf("Previous violations found (%d)", count)}
}
