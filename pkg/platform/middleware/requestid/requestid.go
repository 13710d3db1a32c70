// Package requestid assigns a correlation id to every request. Incoming
// X-Request-ID values are honored so upstream proxies can trace calls.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/rodzerz/customs-crm/pkg/requestcontext"
)

const Header = "X-Request-ID"

// Middleware ensures every request carries a correlation id, echoing it back
// on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
