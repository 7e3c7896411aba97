package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/tyre-inventory/pkg/correlationid"
)

const correlationIDHeader = correlationid.Header

// CorrelationID reads the correlation id from the request header, or
// generates one, stores it in the request context and echoes it back.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(correlationIDHeader)
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set(correlationIDHeader, id)
			next.ServeHTTP(w, r.WithContext(correlationid.NewContext(r.Context(), id)))
		})
	}
}
