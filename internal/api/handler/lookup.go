package handler

import (
	"net/http"

	"github.com/kiranshivaraju/unionhome/internal/api/response"
)

// NewLookupHandler returns an http.HandlerFunc for GET /api/v1/unions/lookup.
// Responses are never cacheable so a union created or renamed after a miss
// is visible on the next request.
func NewLookupHandler(scope *Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.NoStore(w)

		u, ok := scope.resolve(w, r, r.URL.Query().Get("slug"))
		if !ok {
			return
		}
		response.JSON(w, u)
	}
}
