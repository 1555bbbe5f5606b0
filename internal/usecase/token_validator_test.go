//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/infra/memstore"
	"booking-engine/internal/pkg/jwt"
	"booking-engine/internal/testutil/builder"
	"booking-engine/internal/usecase"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidator_Authenticate(t *testing.T) {
	svc := jwt.NewService("test-secret", time.Hour)
	store := memstore.New()

	active := builder.NewUser(user.RoleOwner)
	store.AddUser(active)
	inactiveID := uuid.New()
	store.AddUser(user.ReconstructUser(inactiveID, "Gone", "gone@example.com", "", "", user.RoleClient, false, time.Now()))

	validator := usecase.NewTokenValidator(svc, store)

	sign := func(id uuid.UUID, role user.Role) string {
		tok, err := svc.GenerateToken(id, role, time.Now())
		require.NoError(t, err)
		return tok
	}

	tests := []struct {
		name  string
		token string
		want  shared.Actor
		errIs error
	}{
		{name: "active account", token: sign(active.ID(), user.RoleOwner), want: shared.Actor{UserID: active.ID(), Role: user.RoleOwner}},
		{name: "garbage", token: "not-a-jwt", errIs: jwt.ErrInvalidToken},
		{name: "unknown subject", token: sign(uuid.New(), user.RoleClient), errIs: usecase.ErrUnknownAccount},
		{name: "deactivated", token: sign(inactiveID, user.RoleClient), errIs: usecase.ErrInactiveAccount},
		{name: "role changed since issue", token: sign(active.ID(), user.RoleClient), errIs: usecase.ErrRoleMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validator.Authenticate(context.Background(), tt.token)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
