package usecase

import (
	"context"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/jwt"
	"booking-engine/internal/usecase/shared"
)

var (
	ErrUnknownAccount  = errs.New("token subject does not exist")
	ErrInactiveAccount = errs.New("account is deactivated")
	ErrRoleMismatch    = errs.New("token role no longer matches the account")
)

// TokenValidator turns a bearer token into the actor a use case runs as.
type TokenValidator interface {
	Authenticate(ctx context.Context, token string) (shared.Actor, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
	uow        shared.UnitOfWork
}

func NewTokenValidator(jwtService *jwt.Service, uow shared.UnitOfWork) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
		uow:        uow,
	}
}

// Authenticate rejects tokens of deactivated accounts and tokens minted
// before a role change, so revoking access does not wait for expiry.
func (t *tokenValidatorImpl) Authenticate(ctx context.Context, token string) (shared.Actor, error) {
	claims, err := t.jwtService.ValidateToken(token)
	if err != nil {
		return shared.Actor{}, err
	}
	role, err := user.NewRole(claims.Role)
	if err != nil {
		return shared.Actor{}, err
	}

	u, err := t.uow.Reads().UserByID(ctx, claims.UserID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return shared.Actor{}, ErrUnknownAccount
		}
		return shared.Actor{}, errs.Wrap(err, "load token subject")
	}
	if !u.IsActive() {
		return shared.Actor{}, ErrInactiveAccount
	}
	if u.Role() != role {
		return shared.Actor{}, ErrRoleMismatch
	}

	return shared.Actor{UserID: u.ID(), Role: role}, nil
}
