package scheduling

import (
	"context"

	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// LoadBusiness returns an active business. Inactive businesses are reported
// as missing.
func LoadBusiness(ctx context.Context, reads shared.Reads, id uuid.UUID) (*catalog.Business, error) {
	b, err := reads.BusinessByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.NotFound("business not found")
		}
		return nil, errs.Wrap(err, "failed to load business")
	}
	if !b.IsActive() {
		return nil, errs.NotFound("business not found")
	}
	return b, nil
}

// LoadServices resolves ids to active services of the business, in request
// order. Repeated ids are collapsed.
func LoadServices(ctx context.Context, reads shared.Reads, businessID uuid.UUID, ids []uuid.UUID) ([]catalog.Service, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, errs.BadRequest("at least one service is required")
	}

	found, err := reads.ServicesByIDs(ctx, businessID, ids)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load services")
	}

	byID := make(map[uuid.UUID]catalog.Service, len(found))
	for _, s := range found {
		if s.BusinessID == businessID && s.Active {
			byID[s.ID] = s
		}
	}

	services := make([]catalog.Service, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, errs.BadRequest("one or more services are invalid or inactive")
		}
		services = append(services, s)
	}
	return services, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
