package app

import (
	"net/http"

	apperrors "taskhire/pkg/errors"
)

func errRouteNotFound(r *http.Request) error {
	return apperrors.NotFound("Route").
		WithDetails(map[string]any{"method": r.Method, "path": r.URL.Path})
}
