package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"taskhire/pkg/config"
	apperrors "taskhire/pkg/errors"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// DecodeJSON reads the request body into v. Unknown fields are accepted so
// callers can drop what they do not handle.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperrors.InvalidInput("Request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.InvalidInput("Request body is required")
		case errors.As(err, &maxErr):
			return apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
		default:
			return apperrors.InvalidInput("Invalid request body")
		}
	}
	return nil
}
