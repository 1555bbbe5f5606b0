package scheduling

import (
	"context"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// StaffSelection is either an explicit staff member or automatic assignment.
type StaffSelection struct {
	staffID *uuid.UUID
}

func Explicit(staffID uuid.UUID) StaffSelection {
	return StaffSelection{staffID: &staffID}
}

func Auto() StaffSelection {
	return StaffSelection{}
}

// SelectionFor maps an optional id to a selection.
func SelectionFor(staffID *uuid.UUID) StaffSelection {
	if staffID == nil || *staffID == uuid.Nil {
		return Auto()
	}
	return Explicit(*staffID)
}

func (s StaffSelection) IsAuto() bool { return s.staffID == nil }

// ResolveStaff picks the staff member for a booking. Explicit selections are
// validated but not checked for availability; the caller re-checks under the
// slot lock anyway. Auto assignment is first-fit in display order.
func ResolveStaff(ctx context.Context, reads shared.Reads, businessID uuid.UUID, sel StaffSelection, serviceIDs []uuid.UUID, w booking.Window) (*catalog.Staff, error) {
	if !sel.IsAuto() {
		return resolveExplicit(ctx, reads, businessID, *sel.staffID, serviceIDs)
	}

	candidates, err := CapableStaff(ctx, reads, businessID, serviceIDs)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		existing, err := reads.FindConflict(ctx, businessID, candidates[i].ID, w)
		if err != nil {
			return nil, errs.Wrap(err, "failed to check staff availability")
		}
		if existing == nil {
			return &candidates[i], nil
		}
	}
	return nil, errs.Mark(errs.Conflict("no staff member is available at the requested time"), ErrSlotUnavailable)
}

// CapableStaff lists active staff offering every service, in display order.
func CapableStaff(ctx context.Context, reads shared.Reads, businessID uuid.UUID, serviceIDs []uuid.UUID) ([]catalog.Staff, error) {
	all, err := reads.StaffByBusiness(ctx, businessID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list staff")
	}
	capable := make([]catalog.Staff, 0, len(all))
	for _, s := range all {
		if s.Active && s.CanPerform(serviceIDs) {
			capable = append(capable, s)
		}
	}
	if len(capable) == 0 {
		return nil, errs.BadRequest("no staff member can perform the requested services")
	}
	return capable, nil
}

func resolveExplicit(ctx context.Context, reads shared.Reads, businessID, staffID uuid.UUID, serviceIDs []uuid.UUID) (*catalog.Staff, error) {
	s, err := reads.StaffByID(ctx, businessID, staffID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.NotFound("staff member not found")
		}
		return nil, errs.Wrap(err, "failed to load staff member")
	}
	if s.BusinessID != businessID {
		return nil, errs.NotFound("staff member not found")
	}
	if !s.Active {
		return nil, errs.BadRequest("staff member is not active")
	}
	if !s.CanPerform(serviceIDs) {
		return nil, errs.BadRequest("staff member does not offer all requested services")
	}
	return s, nil
}
