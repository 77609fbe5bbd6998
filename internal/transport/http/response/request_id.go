package response

import (
	"net/http"

	appCtx "github.com/baechuer/coursehub/internal/pkg/context"
)

// RequestIDFromContext returns the id set by the request-id middleware.
func RequestIDFromContext(r *http.Request) string {
	return appCtx.GetRequestID(r.Context())
}
