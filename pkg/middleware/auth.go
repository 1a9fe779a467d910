package middleware

import (
	"net/http"
	"strings"

	"taskhire/pkg/auth"
	apperrors "taskhire/pkg/errors"
	httputil "taskhire/pkg/http"
	"taskhire/pkg/model"
)

type TokenVerifier interface {
	Verify(token string) (model.Actor, error)
}

// Authenticate resolves the bearer token to an actor and attaches it to the
// request context. Requests without a valid token never reach handlers.
func Authenticate(verifier TokenVerifier, rs *httputil.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				rs.Error(w, r, apperrors.Unauthorized("Missing bearer token"))
				return
			}

			actor, err := verifier.Verify(token)
			if err != nil {
				rs.Error(w, r, apperrors.Wrap(err, apperrors.CodeUnauthorized, "Invalid or expired token", http.StatusUnauthorized))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
