package readstore

import (
	"context"
	"time"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/repository"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
)

const selectUserByID = `
SELECT id, name, email, phone, push_token, role, is_active, created_at
FROM users
WHERE id = $1`

type UserReadStore struct {
	db repository.DBTX
}

func NewUserReadStore(db repository.DBTX) *UserReadStore {
	return &UserReadStore{db: db}
}

func (r *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var (
		userID                              uuid.UUID
		name, email, phone, pushToken, role string
		isActive                            bool
		createdAt                           time.Time
	)
	err := r.db.QueryRow(ctx, selectUserByID, id).
		Scan(&userID, &name, &email, &phone, &pushToken, &role, &isActive, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by ID", err)
	}

	return user.ReconstructUser(userID, name, email, phone, pushToken, user.Role(role), isActive, createdAt), nil
}
