// Package cases owns the case lifecycle: transition legality, mutation
// auditing, and risk recomputation. Cases are mutated only through this
// service; every mutating call names its acting principal explicitly.
package cases

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rodzerz/customs-crm/internal/caseevent"
	casemetrics "github.com/rodzerz/customs-crm/internal/cases/metrics"
	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/notify"
	"github.com/rodzerz/customs-crm/internal/risk"
	riskmetrics "github.com/rodzerz/customs-crm/internal/risk/metrics"
	"github.com/rodzerz/customs-crm/internal/storage"
	dErrors "github.com/rodzerz/customs-crm/pkg/domain-errors"
	"github.com/rodzerz/customs-crm/pkg/platform/sentinel"
	"github.com/rodzerz/customs-crm/pkg/requestcontext"
)

// Service is the single logical owner of every case. All mutations of one
// case are serialized through tx; risk recomputation and event appends happen
// inside the same critical section as the mutation they belong to, so
// subsequent reads observe them as a unit. Webhook dispatch runs after the
// mutation commits and its outcome never affects the mutation's result.
type Service struct {
	cases      storage.CaseStore
	cargo      storage.CargoStore
	events     *caseevent.Service
	dispatcher *notify.Dispatcher
	engine     *risk.Engine
	logger     *slog.Logger
	tx         CaseTx

	metrics     *casemetrics.Metrics
	riskMetrics *riskmetrics.Metrics
}

// Option configures optional service dependencies.
type Option func(*Service)

func WithMetrics(m *casemetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithRiskMetrics(m *riskmetrics.Metrics) Option {
	return func(s *Service) { s.riskMetrics = m }
}

func WithTx(tx CaseTx) Option {
	return func(s *Service) { s.tx = tx }
}

func NewService(cases storage.CaseStore, cargo storage.CargoStore, events *caseevent.Service, dispatcher *notify.Dispatcher, engine *risk.Engine, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		cases:      cases,
		cargo:      cargo,
		events:     events,
		dispatcher: dispatcher,
		engine:     engine,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewShardedTx()
	}
	return s
}

// CreateInput carries the externally-assigned identity and initial attributes
// of a new case. Status is always "new"; callers cannot pick it.
type CreateInput struct {
	ID                 string
	VehicleID          string
	Route              string
	OriginCountry      string
	DestinationCountry string
	DeclaredValue      *float64
	ArrivedAt          *time.Time
}

// Create registers a new case in the initial status.
func (s *Service) Create(ctx context.Context, actor domain.Actor, input CreateInput) (domain.Case, error) {
	if input.ID == "" {
		return domain.Case{}, dErrors.New(dErrors.CodeBadRequest, "case id is required")
	}

	var created domain.Case
	err := s.tx.RunInTx(ctx, input.ID, func(ctx context.Context) error {
		if _, err := s.cases.FindByID(ctx, input.ID); err == nil {
			return dErrors.Newf(dErrors.CodeConflict, "case %s already exists", input.ID)
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check case id")
		}

		now := requestcontext.Now(ctx)
		created = domain.Case{
			ID:                 input.ID,
			VehicleID:          input.VehicleID,
			Status:             domain.StatusNew,
			Route:              input.Route,
			OriginCountry:      input.OriginCountry,
			DestinationCountry: input.DestinationCountry,
			DeclaredValue:      input.DeclaredValue,
			ArrivedAt:          input.ArrivedAt,
			StatusUpdatedAt:    now,
			CreatedAt:          now,
		}
		if err := s.cases.Save(ctx, created); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save case")
		}
		if _, err := s.events.Log(ctx, actor, created.ID, domain.EventCreated, nil, "Case registered"); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Case{}, err
	}

	s.dispatch(ctx, "case."+domain.EventCreated, created, nil)
	return created, nil
}

// Get returns one case by id.
func (s *Service) Get(ctx context.Context, id string) (domain.Case, error) {
	c, err := s.cases.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Case{}, dErrors.Newf(dErrors.CodeNotFound, "case %s not found", id)
		}
		return domain.Case{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
	}
	return c, nil
}

// List returns all cases.
func (s *Service) List(ctx context.Context) ([]domain.Case, error) {
	return s.cases.List(ctx)
}

// Cargo returns the cargo manifest of a case.
func (s *Service) Cargo(ctx context.Context, caseID string) ([]domain.CargoItem, error) {
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}
	return s.cargo.ListByCase(ctx, caseID)
}

// History returns the case event sequence, newest first.
func (s *Service) History(ctx context.Context, caseID string) ([]domain.CaseEvent, error) {
	if _, err := s.Get(ctx, caseID); err != nil {
		return nil, err
	}
	return s.events.History(ctx, caseID)
}

// CanTransition reports whether the case could legally move to target.
// Pure check, no side effects.
func (s *Service) CanTransition(ctx context.Context, caseID string, target domain.CaseStatus) (bool, error) {
	c, err := s.Get(ctx, caseID)
	if err != nil {
		return false, err
	}
	return CanTransition(c.Status, target), nil
}

// Transition moves a case along a legal edge. On success the status, its
// timestamp, and the status_changed event commit as a unit; a rejected
// transition leaves no trace. The case.status_changed notification is
// attempted exactly once per successful transition, after commit.
func (s *Service) Transition(ctx context.Context, actor domain.Actor, caseID string, target domain.CaseStatus, reason string) (domain.Case, error) {
	var (
		updated domain.Case
		old     domain.CaseStatus
	)
	err := s.tx.RunInTx(ctx, caseID, func(ctx context.Context) error {
		c, err := s.Get(ctx, caseID)
		if err != nil {
			return err
		}
		if !CanTransition(c.Status, target) {
			s.metrics.ObserveTransition(string(c.Status), string(target), false)
			return dErrors.Newf(dErrors.CodeInvalidTransition, "cannot transition from %s to %s", c.Status, target)
		}

		old = c.Status
		c.Status = target
		c.StatusUpdatedAt = requestcontext.Now(ctx)
		if err := s.cases.Save(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save case")
		}
		if _, err := s.events.LogStatusChange(ctx, actor, c.ID, old, target, reason); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return domain.Case{}, err
	}

	s.metrics.ObserveTransition(string(old), string(target), true)
	s.dispatch(ctx, "case."+domain.EventStatusChanged, updated, map[string]any{
		"old_status": string(old),
		"new_status": string(target),
	})
	return updated, nil
}

// UpdateInput lists the inspector-correctable fields. Nil pointers leave the
// field untouched.
type UpdateInput struct {
	DeclaredValue      *float64
	ActualValue        *float64
	PreviousViolations *int
	Route              *string
}

// Update applies field corrections, records the old/new delta as an audit
// event, and recomputes the risk score. Malformed risk-relevant values fail
// the whole mutation; nothing is persisted.
func (s *Service) Update(ctx context.Context, actor domain.Actor, caseID string, input UpdateInput) (domain.Case, error) {
	var (
		updated domain.Case
		delta   map[string]any
	)
	err := s.tx.RunInTx(ctx, caseID, func(ctx context.Context) error {
		c, err := s.Get(ctx, caseID)
		if err != nil {
			return err
		}

		oldValues := map[string]any{}
		newValues := map[string]any{}
		if input.DeclaredValue != nil {
			oldValues["declared_value"] = c.DeclaredValue
			newValues["declared_value"] = *input.DeclaredValue
			c.DeclaredValue = input.DeclaredValue
		}
		if input.ActualValue != nil {
			oldValues["actual_value"] = c.ActualValue
			newValues["actual_value"] = *input.ActualValue
			c.ActualValue = input.ActualValue
		}
		if input.PreviousViolations != nil {
			oldValues["previous_violations"] = c.PreviousViolations
			newValues["previous_violations"] = *input.PreviousViolations
			c.PreviousViolations = *input.PreviousViolations
		}
		if input.Route != nil {
			oldValues["route"] = c.Route
			newValues["route"] = *input.Route
			c.Route = *input.Route
		}
		if len(newValues) == 0 {
			updated = c
			return nil
		}

		// Every updatable field is risk-relevant; recompute before persisting
		// so a validation failure aborts the whole mutation.
		items, err := s.cargo.ListByCase(ctx, caseID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cargo items")
		}
		assessment, err := s.engine.Analyze(c, items)
		if err != nil {
			return err
		}
		c.RiskScore = assessment.Score
		c.RiskReason = assessment.RiskReason()

		if err := s.cases.Save(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save case")
		}
		delta = map[string]any{"old": oldValues, "new": newValues}
		if _, err := s.events.Log(ctx, actor, c.ID, domain.EventUpdated, delta, ""); err != nil {
			return err
		}
		s.riskMetrics.ObserveAssessment(string(assessment.Level), assessment.Score)
		updated = c
		return nil
	})
	if err != nil {
		return domain.Case{}, err
	}

	if delta != nil {
		s.dispatch(ctx, "case."+domain.EventUpdated, updated, delta)
	}
	return updated, nil
}

// CargoInput is one declared goods line to attach to a case.
type CargoInput struct {
	HSCode      string
	Description string
	Weight      float64
	Value       float64
	Currency    string
}

// AttachCargo adds a cargo item and recomputes the case risk. The item is
// validated through the same rules the engine applies, so an invalid line is
// rejected before anything persists.
func (s *Service) AttachCargo(ctx context.Context, actor domain.Actor, caseID string, input CargoInput) (domain.CargoItem, error) {
	var (
		item    domain.CargoItem
		updated domain.Case
	)
	err := s.tx.RunInTx(ctx, caseID, func(ctx context.Context) error {
		c, err := s.Get(ctx, caseID)
		if err != nil {
			return err
		}

		item = domain.CargoItem{
			ID:          uuid.New().String(),
			CaseID:      caseID,
			HSCode:      input.HSCode,
			Description: input.Description,
			Weight:      input.Weight,
			Value:       input.Value,
			Currency:    input.Currency,
		}

		items, err := s.cargo.ListByCase(ctx, caseID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cargo items")
		}
		items = append(items, item)

		assessment, err := s.engine.Analyze(c, items)
		if err != nil {
			return err
		}

		if err := s.cargo.Save(ctx, item); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save cargo item")
		}
		c.RiskScore = assessment.Score
		c.RiskReason = assessment.RiskReason()
		if err := s.cases.Save(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save case")
		}
		if _, err := s.events.Log(ctx, actor, c.ID, domain.EventCargoAdded, map[string]any{
			"hs_code": item.HSCode,
			"value":   item.Value,
		}, ""); err != nil {
			return err
		}
		s.riskMetrics.ObserveAssessment(string(assessment.Level), assessment.Score)
		updated = c
		return nil
	})
	if err != nil {
		return domain.CargoItem{}, err
	}

	s.dispatch(ctx, "case."+domain.EventCargoAdded, updated, map[string]any{"hs_code": item.HSCode})
	return item, nil
}

// Analyze runs the risk engine and persists score and reasons onto the case.
// A case without cargo items cannot be analyzed.
func (s *Service) Analyze(ctx context.Context, caseID string) (risk.Assessment, error) {
	var assessment risk.Assessment
	err := s.tx.RunInTx(ctx, caseID, func(ctx context.Context) error {
		c, err := s.Get(ctx, caseID)
		if err != nil {
			return err
		}
		items, err := s.cargo.ListByCase(ctx, caseID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load cargo items")
		}
		if len(items) == 0 {
			return dErrors.New(dErrors.CodeValidation, "cannot analyze case without cargo items")
		}

		assessment, err = s.engine.Analyze(c, items)
		if err != nil {
			return err
		}
		c.RiskScore = assessment.Score
		c.RiskReason = assessment.RiskReason()
		if err := s.cases.Save(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save case")
		}
		s.riskMetrics.ObserveAssessment(string(assessment.Level), assessment.Score)
		return nil
	})
	if err != nil {
		return risk.Assessment{}, err
	}
	return assessment, nil
}

// ImportSnapshot is one authoritative feed record for a case, cargo included.
// Identifiers come from the source system; importing the same snapshot twice
// converges on the same state.
type ImportSnapshot struct {
	ID                 string
	VehicleID          string
	Status             domain.CaseStatus
	Route              string
	OriginCountry      string
	DestinationCountry string
	DeclaredValue      *float64
	ActualValue        *float64
	PreviousViolations int
	ArrivedAt          *time.Time
	Cargo              []CargoSnapshot
}

// CargoSnapshot is one feed cargo line with its source-assigned id.
type CargoSnapshot struct {
	ID          string
	HSCode      string
	Description string
	Weight      float64
	Value       float64
	Currency    string
}

// Import upserts a case from a feed snapshot. The feed status is an
// authoritative observation, not a transition request, so it is applied
// directly after membership validation. Risk is recomputed from the imported
// cargo; a snapshot that fails validation leaves the stored case untouched.
func (s *Service) Import(ctx context.Context, actor domain.Actor, snap ImportSnapshot) (domain.Case, error) {
	if snap.ID == "" {
		return domain.Case{}, dErrors.New(dErrors.CodeValidation, "import snapshot is missing a case id")
	}
	status := snap.Status
	if status == "" {
		status = domain.StatusNew
	}
	if !domain.ValidStatus(status) {
		return domain.Case{}, dErrors.Newf(dErrors.CodeValidation, "unknown case status %q", status)
	}

	var updated domain.Case
	err := s.tx.RunInTx(ctx, snap.ID, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		c, err := s.cases.FindByID(ctx, snap.ID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			c = domain.Case{ID: snap.ID, CreatedAt: now, StatusUpdatedAt: now}
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load case")
		}

		if c.Status != status {
			c.StatusUpdatedAt = now
		}
		c.Status = status
		c.VehicleID = snap.VehicleID
		c.Route = snap.Route
		c.OriginCountry = snap.OriginCountry
		c.DestinationCountry = snap.DestinationCountry
		c.DeclaredValue = snap.DeclaredValue
		c.ActualValue = snap.ActualValue
		c.PreviousViolations = snap.PreviousViolations
		c.ArrivedAt = snap.ArrivedAt

		items := make([]domain.CargoItem, 0, len(snap.Cargo))
		for _, line := range snap.Cargo {
			items = append(items, domain.CargoItem{
				ID:          line.ID,
				CaseID:      snap.ID,
				HSCode:      line.HSCode,
				Description: line.Description,
				Weight:      line.Weight,
				Value:       line.Value,
				Currency:    line.Currency,
			})
		}
		assessment, err := s.engine.Analyze(c, items)
		if err != nil {
			return err
		}
		c.RiskScore = assessment.Score
		c.RiskReason = assessment.RiskReason()

		for _, item := range items {
			if err := s.cargo.Save(ctx, item); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save cargo item")
			}
		}
		if err := s.cases.Save(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save case")
		}
		if _, err := s.events.Log(ctx, actor, c.ID, domain.EventImported, map[string]any{
			"status":      string(status),
			"cargo_items": len(items),
		}, ""); err != nil {
			return err
		}
		s.riskMetrics.ObserveAssessment(string(assessment.Level), assessment.Score)
		updated = c
		return nil
	})
	if err != nil {
		return domain.Case{}, err
	}

	s.dispatch(ctx, "case."+domain.EventImported, updated, nil)
	return updated, nil
}

// dispatch sends one notification and logs failures; the triggering mutation
// already committed, so errors stop here.
func (s *Service) dispatch(ctx context.Context, event string, c domain.Case, data map[string]any) {
	payload := map[string]any{
		"case_id": c.ID,
		"status":  string(c.Status),
		"data":    data,
	}
	if err := s.dispatcher.Dispatch(ctx, event, payload); err != nil {
		s.logger.Error("webhook dispatch failed", "event", event, "case_id", c.ID, "error", err)
	}
}
