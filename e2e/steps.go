package e2e

import (
	"github.com/cucumber/godog"

	"github.com/rodzerz/customs-crm/e2e/steps/cases"
	"github.com/rodzerz/customs-crm/e2e/steps/common"
	"github.com/rodzerz/customs-crm/e2e/steps/inspection"
)

// RegisterSteps wires all step definitions onto one scenario context.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	cases.RegisterSteps(ctx, tc)
	inspection.RegisterSteps(ctx, tc)
}
