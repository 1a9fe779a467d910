// Package auth verifies bearer tokens issued by the account service and
// carries the resulting actor through request contexts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "taskhire/pkg/errors"
	"taskhire/pkg/model"

	jwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidRole  = errors.New("token carries an unknown role")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses an HS256 token and maps its subject and role to an actor.
func (v *Verifier) Verify(tokenStr string) (model.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return model.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return model.Actor{}, ErrInvalidToken
	}

	role := model.Role(claims.Role)
	if !role.Valid() {
		return model.Actor{}, ErrInvalidRole
	}
	return model.Actor{ID: claims.Subject, Role: role}, nil
}

// Issue signs a token for actor. The marketplace only verifies tokens; Issue
// exists for tooling and tests.
func (v *Verifier) Issue(actor model.Actor, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

type actorKey struct{}

func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor attached by the
// authentication middleware.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}

// RequireActor is ActorFromContext for handlers: a missing actor is a 401.
func RequireActor(ctx context.Context) (model.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return model.Actor{}, apperrors.Unauthorized("Authentication required")
	}
	return actor, nil
}
