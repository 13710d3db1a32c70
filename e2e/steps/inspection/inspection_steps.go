package inspection

import (
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario context these steps need.
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	ResponseField(field string) (any, error)
	CaseID() string
	InspectionID() string
	SetInspectionID(id string)
}

// RegisterSteps registers inspection workflow step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &inspectionSteps{tc: tc}

	ctx.Step(`^I order a "([^"]*)" inspection$`, steps.orderInspection)
	ctx.Step(`^I record the decision "([^"]*)"$`, steps.recordDecision)
	ctx.Step(`^the inspection status should be "([^"]*)"$`, steps.assertStatus)
}

type inspectionSteps struct {
	tc TestContext
}

func (s *inspectionSteps) orderInspection(inspType string) error {
	if err := s.tc.POST("/cases/"+s.tc.CaseID()+"/inspections", map[string]any{
		"type": inspType,
	}); err != nil {
		return err
	}
	id, err := s.tc.ResponseField("id")
	if err != nil {
		return nil // leave the id unset; a later step will fail with context
	}
	s.tc.SetInspectionID(fmt.Sprintf("%v", id))
	return nil
}

func (s *inspectionSteps) recordDecision(decision string) error {
	return s.tc.POST("/inspections/"+s.tc.InspectionID()+"/decision", map[string]any{
		"decision": decision,
		"comment":  "recorded by e2e suite",
	})
}

func (s *inspectionSteps) assertStatus(expected string) error {
	if err := s.tc.GET("/inspections/" + s.tc.InspectionID()); err != nil {
		return err
	}
	v, err := s.tc.ResponseField("status")
	if err != nil {
		return err
	}
	if v != expected {
		return fmt.Errorf("expected inspection status %q, got %q", expected, v)
	}
	return nil
}
