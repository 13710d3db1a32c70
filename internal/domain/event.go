package domain

import "time"

// Case event types logged by the core. Other suffixes may appear as features
// grow; subscribers filter on the dispatched "case.<type>" string.
const (
	EventCreated       = "created"
	EventStatusChanged = "status_changed"
	EventUpdated       = "updated"
	EventCargoAdded    = "cargo_added"
	EventImported      = "imported"
)

// CaseEvent is one append-only entry in a case's history. Events are never
// updated or deleted; the ordered sequence of events is the case history.
type CaseEvent struct {
	ID          string
	CaseID      string
	EventType   string
	Payload     map[string]any
	Description string
	Actor       Actor
	CreatedAt   time.Time
	// Seq breaks creation-time ties; assigned by the store, monotonic per case.
	Seq int64
}

// Actor identifies who performed a mutating operation. It is threaded
// explicitly through every mutating call rather than read from ambient
// request state.
type Actor struct {
	ID        string
	Name      string
	IP        string
	UserAgent string
}

// SystemActor marks mutations performed by the system itself (importer,
// scheduled jobs) rather than a signed-in principal.
func SystemActor(name string) Actor {
	return Actor{ID: "system", Name: name}
}
