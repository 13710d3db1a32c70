// Package inspection runs the inspection workflow: opening inspections on
// eligible cases and turning recorded decisions into case transitions.
package inspection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rodzerz/customs-crm/internal/cases"
	"github.com/rodzerz/customs-crm/internal/domain"
	inspmetrics "github.com/rodzerz/customs-crm/internal/inspection/metrics"
	"github.com/rodzerz/customs-crm/internal/storage"
	dErrors "github.com/rodzerz/customs-crm/pkg/domain-errors"
	"github.com/rodzerz/customs-crm/pkg/platform/sentinel"
	"github.com/rodzerz/customs-crm/pkg/requestcontext"
)

// decisionTarget maps each decision to the case status it forces.
var decisionTarget = map[domain.Decision]domain.CaseStatus{
	domain.DecisionRelease: domain.StatusReleased,
	domain.DecisionHold:    domain.StatusOnHold,
	domain.DecisionReject:  domain.StatusRejected,
}

// Service coordinates inspections with the case state machine. It never
// mutates cases directly; decisions become transitions through the case
// service so every lifecycle invariant keeps applying.
type Service struct {
	inspections storage.InspectionStore
	cases       *cases.Service
	logger      *slog.Logger
	metrics     *inspmetrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *inspmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(inspections storage.InspectionStore, caseSvc *cases.Service, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		inspections: inspections,
		cases:       caseSvc,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a pending inspection on an eligible case. A case in screening
// is moved to in_inspection as part of opening; a case already in
// in_inspection accepts further inspections without a transition.
func (s *Service) Create(ctx context.Context, actor domain.Actor, caseID string, inspectionType domain.InspectionType) (domain.Inspection, error) {
	if !domain.ValidInspectionType(inspectionType) {
		return domain.Inspection{}, dErrors.Newf(dErrors.CodeValidation, "unknown inspection type %q", inspectionType)
	}

	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return domain.Inspection{}, err
	}
	switch c.Status {
	case domain.StatusScreening, domain.StatusInInspection:
	default:
		return domain.Inspection{}, dErrors.Newf(dErrors.CodeIneligibleState, "case %s is %s; inspections require screening or in_inspection", caseID, c.Status)
	}

	if c.Status == domain.StatusScreening {
		if _, err := s.cases.Transition(ctx, actor, caseID, domain.StatusInInspection, "Inspection initiated"); err != nil {
			return domain.Inspection{}, err
		}
	}

	insp := domain.Inspection{
		ID:        uuid.New().String(),
		CaseID:    caseID,
		Type:      inspectionType,
		Status:    domain.InspectionPending,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.inspections.Save(ctx, insp); err != nil {
		return domain.Inspection{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save inspection")
	}

	s.metrics.ObserveInspection(string(inspectionType))
	s.logger.Info("inspection opened", "inspection_id", insp.ID, "case_id", caseID, "type", inspectionType)
	return insp, nil
}

// Get returns one inspection by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Inspection, error) {
	insp, err := s.inspections.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Inspection{}, dErrors.Newf(dErrors.CodeNotFound, "inspection %s not found", id)
		}
		return domain.Inspection{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load inspection")
	}
	return insp, nil
}

// ListByCase returns the inspections opened on a case.
func (s *Service) ListByCase(ctx context.Context, caseID string) ([]domain.Inspection, error) {
	if _, err := s.cases.Get(ctx, caseID); err != nil {
		return nil, err
	}
	return s.inspections.ListByCase(ctx, caseID)
}

// RecordDecision completes a pending inspection and forces the matching case
// transition. The inspection record persists even when the forced transition
// is rejected; the transition error is surfaced so the operator sees the
// conflict rather than a silently stuck case.
func (s *Service) RecordDecision(ctx context.Context, actor domain.Actor, inspectionID string, decision domain.Decision, reason, comment string) (domain.Inspection, error) {
	if !domain.ValidDecision(decision) {
		return domain.Inspection{}, dErrors.Newf(dErrors.CodeInvalidDecision, "unknown decision %q", decision)
	}

	insp, err := s.Get(ctx, inspectionID)
	if err != nil {
		return domain.Inspection{}, err
	}
	if insp.Status != domain.InspectionPending {
		return domain.Inspection{}, dErrors.Newf(dErrors.CodeIneligibleState, "inspection %s already completed", inspectionID)
	}

	now := requestcontext.Now(ctx)
	insp.Status = domain.InspectionCompleted
	insp.Decision = decision
	insp.DecisionReason = reason
	insp.Comment = comment
	insp.PerformedAt = &now
	if err := s.inspections.Save(ctx, insp); err != nil {
		return domain.Inspection{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save inspection")
	}
	s.metrics.ObserveDecision(string(insp.Type), string(decision))

	if _, err := s.cases.Transition(ctx, actor, insp.CaseID, decisionTarget[decision], transitionReason(insp.Type, decision)); err != nil {
		s.logger.Warn("decision recorded but case transition rejected",
			"inspection_id", insp.ID, "case_id", insp.CaseID, "decision", decision, "error", err)
		return insp, err
	}
	return insp, nil
}

// transitionReason is the human-readable history line for a decision-driven
// transition.
func transitionReason(t domain.InspectionType, d domain.Decision) string {
	switch d {
	case domain.DecisionRelease:
		return fmt.Sprintf("Released after %s inspection", t)
	case domain.DecisionHold:
		return fmt.Sprintf("On hold pending %s inspection review", t)
	case domain.DecisionReject:
		return fmt.Sprintf("Rejected after %s inspection", t)
	}
	return ""
}
