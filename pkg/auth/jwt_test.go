package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskhire/pkg/model"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestVerify_RoundTrip(t *testing.T) {
	v := NewVerifier(testSecret, "taskhire")
	actor := model.Actor{ID: "65f1c0ffee000000000000c1", Role: model.RoleCustomer}

	token, err := v.Issue(actor, time.Minute)
	require.NoError(t, err)

	got, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestVerify_Rejections(t *testing.T) {
	v := NewVerifier(testSecret, "taskhire")
	actor := model.Actor{ID: "65f1c0ffee000000000000c1", Role: model.RoleWorker}

	expired, err := v.Issue(actor, -time.Minute)
	require.NoError(t, err)

	otherIssuer, err := NewVerifier(testSecret, "someone-else").Issue(actor, time.Minute)
	require.NoError(t, err)

	wrongSecret, err := NewVerifier("ffffffffffffffffffffffffffffffff", "taskhire").Issue(actor, time.Minute)
	require.NoError(t, err)

	badRole, err := v.Issue(model.Actor{ID: actor.ID, Role: "superuser"}, time.Minute)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             "admin",
		RegisteredClaims: jwt.RegisteredClaims{Subject: actor.ID, Issuer: "taskhire"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not-a-token", ErrInvalidToken},
		{"expired", expired, ErrInvalidToken},
		{"wrong issuer", otherIssuer, ErrInvalidToken},
		{"wrong secret", wrongSecret, ErrInvalidToken},
		{"missing expiry", noExpiry, ErrInvalidToken},
		{"unknown role", badRole, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestActorContext(t *testing.T) {
	_, ok := ActorFromContext(context.Background())
	assert.False(t, ok)

	actor := model.Actor{ID: "a1", Role: model.RoleAdmin}
	got, ok := ActorFromContext(WithActor(context.Background(), actor))
	assert.True(t, ok)
	assert.Equal(t, actor, got)
}
