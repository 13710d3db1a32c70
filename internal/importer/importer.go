// Package importer ingests case snapshots from the source customs system.
// Registry records (vehicles, parties) are plain upserts; cases flow through
// the case service so risk scoring and event logging apply to imported data
// exactly as they do to data entered by hand.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rodzerz/customs-crm/internal/cases"
	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/internal/storage"
)

const maxParallelCases = 4

// Source is anything that can produce one export document. Satisfied by
// *Client; tests feed documents in directly.
type Source interface {
	Fetch(ctx context.Context) (Feed, error)
}

// Stats summarizes one import run. Failed counts cases whose snapshot was
// rejected; a run with failures still imports every valid snapshot.
type Stats struct {
	Vehicles int
	Parties  int
	Cases    int
	Failed   int
}

type Importer struct {
	source      Source
	cases       *cases.Service
	inspections storage.InspectionStore
	vehicles    storage.VehicleStore
	parties     storage.PartyStore
	documents   storage.DocumentStore
	logger      *slog.Logger
}

func New(source Source, caseSvc *cases.Service, inspections storage.InspectionStore, vehicles storage.VehicleStore, parties storage.PartyStore, documents storage.DocumentStore, logger *slog.Logger) *Importer {
	return &Importer{
		source:      source,
		cases:       caseSvc,
		inspections: inspections,
		vehicles:    vehicles,
		parties:     parties,
		documents:   documents,
		logger:      logger,
	}
}

// Run fetches the feed and upserts everything in it. Registry records land
// first so cases can reference them; cases then import in parallel,
// independently, so one malformed snapshot never blocks the rest.
func (im *Importer) Run(ctx context.Context) (Stats, error) {
	feed, err := im.source.Fetch(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{}
	for _, v := range feed.Vehicles {
		if err := im.vehicles.Save(ctx, domain.Vehicle{
			ID:      v.ID,
			PlateNo: v.PlateNo,
			Country: v.Country,
			Make:    v.Make,
			Model:   v.Model,
			VIN:     v.VIN,
		}); err != nil {
			return stats, fmt.Errorf("import vehicle %s: %w", v.ID, err)
		}
		stats.Vehicles++
	}
	for _, p := range feed.Parties {
		if err := im.parties.Save(ctx, domain.Party{
			ID:             p.ID,
			Name:           p.Name,
			Type:           p.Type,
			Country:        p.Country,
			RegistrationNo: p.RegistrationNo,
		}); err != nil {
			return stats, fmt.Errorf("import party %s: %w", p.ID, err)
		}
		stats.Parties++
	}

	var imported, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelCases)
	for _, fc := range feed.Cases {
		g.Go(func() error {
			if err := im.importCase(gctx, fc); err != nil {
				failed.Add(1)
				im.logger.Warn("case snapshot rejected", "case_id", fc.ID, "error", err)
				return nil
			}
			imported.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	stats.Cases = int(imported.Load())
	stats.Failed = int(failed.Load())
	im.logger.Info("import run finished",
		"vehicles", stats.Vehicles, "parties", stats.Parties,
		"cases", stats.Cases, "failed", stats.Failed)
	return stats, nil
}

func (im *Importer) importCase(ctx context.Context, fc FeedCase) error {
	actor := domain.SystemActor("importer")

	snap := cases.ImportSnapshot{
		ID:                 fc.ID,
		VehicleID:          fc.VehicleID,
		Status:             domain.CaseStatus(fc.Status),
		Route:              fc.Route,
		OriginCountry:      fc.OriginCountry,
		DestinationCountry: fc.DestinationCountry,
		DeclaredValue:      fc.DeclaredValue,
		ActualValue:        fc.ActualValue,
		PreviousViolations: fc.PreviousViolations,
		ArrivedAt:          fc.ArrivedAt,
	}
	for _, line := range fc.Cargo {
		snap.Cargo = append(snap.Cargo, cases.CargoSnapshot{
			ID:          line.ID,
			HSCode:      line.HSCode,
			Description: line.Description,
			Weight:      line.Weight,
			Value:       line.Value,
			Currency:    line.Currency,
		})
	}
	if _, err := im.cases.Import(ctx, actor, snap); err != nil {
		return err
	}

	// Historical inspections are records of work already done in the source
	// system; they bypass the workflow so decisions are not re-applied.
	for _, fi := range fc.Inspections {
		if err := im.inspections.Save(ctx, domain.Inspection{
			ID:             fi.ID,
			CaseID:         fc.ID,
			Type:           domain.InspectionType(fi.Type),
			Status:         domain.InspectionStatus(fi.Status),
			Decision:       domain.Decision(fi.Decision),
			DecisionReason: fi.Reason,
			Comment:        fi.Comment,
			PerformedAt:    fi.PerformedAt,
			CreatedAt:      fi.CreatedAt,
		}); err != nil {
			return fmt.Errorf("import inspection %s: %w", fi.ID, err)
		}
	}
	for _, fd := range fc.Documents {
		if err := im.documents.Save(ctx, domain.Document{
			ID:         fd.ID,
			CaseID:     fc.ID,
			Type:       fd.Type,
			FilePath:   fd.FilePath,
			UploadedAt: fd.UploadedAt,
		}); err != nil {
			return fmt.Errorf("import document %s: %w", fd.ID, err)
		}
	}
	for _, link := range fc.Parties {
		if err := im.parties.AttachToCase(ctx, domain.CaseParty{
			CaseID:  fc.ID,
			PartyID: link.PartyID,
			Role:    domain.PartyRole(link.Role),
		}); err != nil {
			return fmt.Errorf("attach party %s: %w", link.PartyID, err)
		}
	}
	return nil
}
