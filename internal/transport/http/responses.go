package httptransport

import (
	"encoding/json"
	"time"

	"github.com/rodzerz/customs-crm/internal/domain"
)

// Response DTOs. Domain records stay free of transport tags; the JSON shape
// is owned here.

type caseResponse struct {
	ID                 string     `json:"id"`
	VehicleID          string     `json:"vehicle_id,omitempty"`
	Status             string     `json:"status"`
	RiskScore          int        `json:"risk_score"`
	RiskLevel          string     `json:"risk_level"`
	RiskReason         string     `json:"risk_reason,omitempty"`
	Route              string     `json:"route,omitempty"`
	OriginCountry      string     `json:"origin_country,omitempty"`
	DestinationCountry string     `json:"destination_country,omitempty"`
	DeclaredValue      *float64   `json:"declared_value,omitempty"`
	ActualValue        *float64   `json:"actual_value,omitempty"`
	PreviousViolations int        `json:"previous_violations"`
	ArrivedAt          *time.Time `json:"arrived_at,omitempty"`
	StatusUpdatedAt    time.Time  `json:"status_updated_at"`
	CreatedAt          time.Time  `json:"created_at"`
}

func toCaseResponse(c domain.Case) caseResponse {
	return caseResponse{
		ID:                 c.ID,
		VehicleID:          c.VehicleID,
		Status:             string(c.Status),
		RiskScore:          c.RiskScore,
		RiskLevel:          string(domain.RiskLevelFor(c.RiskScore)),
		RiskReason:         c.RiskReason,
		Route:              c.Route,
		OriginCountry:      c.OriginCountry,
		DestinationCountry: c.DestinationCountry,
		DeclaredValue:      c.DeclaredValue,
		ActualValue:        c.ActualValue,
		PreviousViolations: c.PreviousViolations,
		ArrivedAt:          c.ArrivedAt,
		StatusUpdatedAt:    c.StatusUpdatedAt,
		CreatedAt:          c.CreatedAt,
	}
}

func toCaseResponses(cs []domain.Case) []caseResponse {
	out := make([]caseResponse, 0, len(cs))
	for _, c := range cs {
		out = append(out, toCaseResponse(c))
	}
	return out
}

type cargoResponse struct {
	ID          string  `json:"id"`
	CaseID      string  `json:"case_id"`
	HSCode      string  `json:"hs_code"`
	Description string  `json:"description,omitempty"`
	Weight      float64 `json:"weight"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency,omitempty"`
}

func toCargoResponse(item domain.CargoItem) cargoResponse {
	return cargoResponse{
		ID:          item.ID,
		CaseID:      item.CaseID,
		HSCode:      item.HSCode,
		Description: item.Description,
		Weight:      item.Weight,
		Value:       item.Value,
		Currency:    item.Currency,
	}
}

type actorResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

type eventResponse struct {
	ID          string         `json:"id"`
	CaseID      string         `json:"case_id"`
	EventType   string         `json:"event_type"`
	Payload     map[string]any `json:"payload,omitempty"`
	Description string         `json:"description,omitempty"`
	Actor       actorResponse  `json:"actor"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toEventResponses(events []domain.CaseEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:          e.ID,
			CaseID:      e.CaseID,
			EventType:   e.EventType,
			Payload:     e.Payload,
			Description: e.Description,
			Actor: actorResponse{
				ID:        e.Actor.ID,
				Name:      e.Actor.Name,
				IP:        e.Actor.IP,
				UserAgent: e.Actor.UserAgent,
			},
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

type inspectionResponse struct {
	ID          string     `json:"id"`
	CaseID      string     `json:"case_id"`
	Type        string     `json:"type"`
	Status      string     `json:"status"`
	Decision    string     `json:"decision,omitempty"`
	Reason      string     `json:"reason,omitempty"`
	Comment     string     `json:"comment,omitempty"`
	PerformedAt *time.Time `json:"performed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toInspectionResponse(insp domain.Inspection) inspectionResponse {
	return inspectionResponse{
		ID:          insp.ID,
		CaseID:      insp.CaseID,
		Type:        string(insp.Type),
		Status:      string(insp.Status),
		Decision:    string(insp.Decision),
		Reason:      insp.DecisionReason,
		Comment:     insp.Comment,
		PerformedAt: insp.PerformedAt,
		CreatedAt:   insp.CreatedAt,
	}
}

type webhookResponse struct {
	ID              string     `json:"id"`
	URL             string     `json:"url"`
	Event           string     `json:"event"`
	Secret          string     `json:"secret,omitempty"` // only on create
	Active          bool       `json:"active"`
	RetryCount      int        `json:"retry_count"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toWebhookResponse(wh domain.Webhook, includeSecret bool) webhookResponse {
	resp := webhookResponse{
		ID:              wh.ID,
		URL:             wh.URL,
		Event:           wh.Event,
		Active:          wh.Active,
		RetryCount:      wh.RetryCount,
		LastTriggeredAt: wh.LastTriggeredAt,
		CreatedAt:       wh.CreatedAt,
	}
	if includeSecret {
		resp.Secret = wh.Secret
	}
	return resp
}

type deliveryResponse struct {
	ID         string          `json:"id"`
	WebhookID  string          `json:"webhook_id"`
	Event      string          `json:"event"`
	StatusCode *int            `json:"status_code,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Response   string          `json:"response,omitempty"`
	Error      string          `json:"error,omitempty"`
	Success    bool            `json:"success"`
	CreatedAt  time.Time       `json:"created_at"`
}

func toDeliveryResponses(recs []domain.WebhookDelivery) []deliveryResponse {
	out := make([]deliveryResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, deliveryResponse{
			ID:         rec.ID,
			WebhookID:  rec.WebhookID,
			Event:      rec.Event,
			StatusCode: rec.StatusCode,
			Payload:    json.RawMessage(rec.Payload),
			Response:   rec.Response,
			Error:      rec.Error,
			Success:    rec.Success,
			CreatedAt:  rec.CreatedAt,
		})
	}
	return out
}
