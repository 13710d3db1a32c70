package cases

import (
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	"github.com/gofrs/uuid"
)

// TestContext is the slice of the scenario context these steps need.
type TestContext interface {
	POST(path string, body any) error
	PATCH(path string, body any) error
	GET(path string) error
	ResponseField(field string) (any, error)
	CaseID() string
	SetCaseID(id string)
}

// RegisterSteps registers case lifecycle step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &caseSteps{tc: tc}

	ctx.Step(`^I register a case from "([^"]*)" with route "([^"]*)"$`, steps.registerCase)
	ctx.Step(`^I attach cargo with HS code "([^"]*)" worth (\d+)$`, steps.attachCargo)
	ctx.Step(`^I set the declared value to (\d+)$`, steps.setDeclaredValue)
	ctx.Step(`^I transition the case to "([^"]*)"$`, steps.transition)
	ctx.Step(`^I fetch the case$`, steps.fetchCase)
	ctx.Step(`^I fetch the case history$`, steps.fetchHistory)
	ctx.Step(`^the case status should be "([^"]*)"$`, steps.assertStatus)
	ctx.Step(`^the case risk level should be "([^"]*)"$`, steps.assertRiskLevel)
}

type caseSteps struct {
	tc TestContext
}

func (s *caseSteps) registerCase(origin, route string) error {
	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	caseID := "e2e-" + id.String()
	if err := s.tc.POST("/cases", map[string]any{
		"id":             caseID,
		"origin_country": origin,
		"route":          route,
	}); err != nil {
		return err
	}
	s.tc.SetCaseID(caseID)
	return nil
}

func (s *caseSteps) attachCargo(hsCode string, value int) error {
	return s.tc.POST("/cases/"+s.tc.CaseID()+"/cargo", map[string]any{
		"hs_code":  hsCode,
		"weight":   1000,
		"value":    value,
		"currency": "EUR",
	})
}

func (s *caseSteps) setDeclaredValue(value int) error {
	return s.tc.PATCH("/cases/"+s.tc.CaseID(), map[string]any{
		"declared_value": value,
	})
}

func (s *caseSteps) transition(status string) error {
	return s.tc.POST("/cases/"+s.tc.CaseID()+"/transition", map[string]any{
		"status": status,
	})
}

func (s *caseSteps) fetchCase() error {
	return s.tc.GET("/cases/" + s.tc.CaseID())
}

func (s *caseSteps) fetchHistory() error {
	return s.tc.GET("/cases/" + s.tc.CaseID() + "/history")
}

func (s *caseSteps) assertStatus(expected string) error {
	if err := s.fetchCase(); err != nil {
		return err
	}
	v, err := s.tc.ResponseField("status")
	if err != nil {
		return err
	}
	if v != expected {
		return fmt.Errorf("expected case status %q, got %q", expected, v)
	}
	return nil
}

func (s *caseSteps) assertRiskLevel(expected string) error {
	if err := s.fetchCase(); err != nil {
		return err
	}
	v, err := s.tc.ResponseField("risk_level")
	if err != nil {
		return err
	}
	if v != expected {
		score, _ := s.tc.ResponseField("risk_score")
		return fmt.Errorf("expected risk level %q, got %q (score %s)",
			expected, v, strconv.Quote(fmt.Sprintf("%v", score)))
	}
	return nil
}
