package httptransport

import (
	"net/http"

	"github.com/rodzerz/customs-crm/internal/domain"
	"github.com/rodzerz/customs-crm/pkg/requestcontext"
)

// Identity headers set by the gateway in front of this service. Requests
// without them are attributed to "anonymous"; authentication itself happens
// upstream.
const (
	headerActorID   = "X-Actor-ID"
	headerActorName = "X-Actor-Name"
)

// actorFromRequest builds the audit actor for a mutating call from gateway
// identity headers plus the client metadata captured by middleware.
func actorFromRequest(r *http.Request) domain.Actor {
	ctx := r.Context()
	actor := domain.Actor{
		ID:        r.Header.Get(headerActorID),
		Name:      r.Header.Get(headerActorName),
		IP:        requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	}
	if actor.ID == "" {
		actor.ID = "anonymous"
	}
	if actor.Name == "" {
		actor.Name = actor.ID
	}
	return actor
}
