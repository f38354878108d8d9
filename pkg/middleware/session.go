package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/pkg/logger"
)

// SessionHeader identifies the browsing session a request belongs to.
const SessionHeader = "X-Session-ID"

var validSessionID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Session reads the session ID header, generating a fresh ID when it is
// missing or malformed, and echoes it back in the response.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if !validSessionID.MatchString(id) {
			id = uuid.NewString()
		}

		w.Header().Set(SessionHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithSessionID(r.Context(), id)))
	})
}
