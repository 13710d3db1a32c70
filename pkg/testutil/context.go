package testutil

import (
	"context"
	"net/http"
	"time"

	"github.com/rodzerz/customs-crm/pkg/requestcontext"
)

// WithActor sets the gateway identity headers on a request, simulating an
// authenticated caller.
func WithActor(req *http.Request, actorID, actorName string) *http.Request {
	req.Header.Set("X-Actor-ID", actorID)
	req.Header.Set("X-Actor-Name", actorName)
	return req
}

// ContextAt pins the request-scoped clock, so services called directly in
// tests produce deterministic timestamps.
func ContextAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

// ContextWithClient carries client metadata the way the middleware chain
// would, for service tests that assert on audit actors.
func ContextWithClient(ip, userAgent string) context.Context {
	return requestcontext.WithClientMetadata(context.Background(), ip, userAgent)
}
