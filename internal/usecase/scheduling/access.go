package scheduling

import (
	"context"

	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"
)

// AuthorizeBusiness succeeds when the actor is an admin, the owner of the
// business, or an active staff member of it. Others see NotFound.
func AuthorizeBusiness(ctx context.Context, reads shared.Reads, actor shared.Actor, b *catalog.Business) error {
	switch actor.Role {
	case user.RoleAdmin:
		return nil
	case user.RoleOwner:
		if b.OwnerID() == actor.UserID {
			return nil
		}
	case user.RoleStaff:
		staff, err := reads.StaffByBusiness(ctx, b.ID())
		if err != nil {
			return errs.Wrap(err, "failed to list staff")
		}
		for _, s := range staff {
			if s.Active && s.UserID != nil && *s.UserID == actor.UserID {
				return nil
			}
		}
	}
	return errs.NotFound("business not found")
}
