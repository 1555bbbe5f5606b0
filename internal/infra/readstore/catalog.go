package readstore

import (
	"context"
	"encoding/json"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/infra"
	"booking-engine/internal/infra/repository"
	"booking-engine/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const selectBusinessByID = `
SELECT id, owner_id, name, status, timezone, policy, hours, created_at
FROM businesses
WHERE id = $1`

const selectServicesByIDs = `
SELECT id, business_id, name, duration_minutes, price, discounted_price, active
FROM services
WHERE business_id = $1 AND id = ANY($2)`

const staffColumns = `id, business_id, user_id, name, active, service_ids, display_order`

const selectStaffByID = `
SELECT ` + staffColumns + `
FROM staff
WHERE business_id = $1 AND id = $2`

const selectStaffByBusiness = `
SELECT ` + staffColumns + `
FROM staff
WHERE business_id = $1
ORDER BY display_order, id`

type CatalogReadStore struct {
	db repository.DBTX
}

func NewCatalogReadStore(db repository.DBTX) *CatalogReadStore {
	return &CatalogReadStore{db: db}
}

func (r *CatalogReadStore) BusinessByID(ctx context.Context, id uuid.UUID) (*catalog.Business, error) {
	var (
		businessID, ownerID    uuid.UUID
		name, status, timezone string
		policyRaw, hoursRaw    []byte
		createdAt              time.Time
	)
	err := r.db.QueryRow(ctx, selectBusinessByID, id).
		Scan(&businessID, &ownerID, &name, &status, &timezone, &policyRaw, &hoursRaw, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("business not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find business by ID", err)
	}

	// Unset policy fields keep their defaults.
	policy := booking.DefaultPolicy()
	if err := json.Unmarshal(policyRaw, &policy); err != nil {
		return nil, infra.WrapRepoErr("invalid business policy", err)
	}
	hours := catalog.WeeklyHours{}
	if err := json.Unmarshal(hoursRaw, &hours); err != nil {
		return nil, infra.WrapRepoErr("invalid business hours", err)
	}

	return catalog.ReconstructBusiness(businessID, ownerID, name, catalog.BusinessStatus(status), timezone, policy, hours, createdAt), nil
}

func (r *CatalogReadStore) ServicesByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]catalog.Service, error) {
	rows, err := r.db.Query(ctx, selectServicesByIDs, businessID, pgconv.UUIDsToPgtype(ids))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find services", err)
	}
	services, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Service, error) {
		var (
			s          catalog.Service
			discounted pgtype.Int8
		)
		err := row.Scan(&s.ID, &s.BusinessID, &s.Name, &s.DurationMinutes, &s.Price, &discounted, &s.Active)
		s.DiscountedPrice = pgconv.Int64PtrFromPgtype(discounted)
		return s, err
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan services", err)
	}

	// Keep the requested order.
	byID := make(map[uuid.UUID]catalog.Service, len(services))
	for _, s := range services {
		byID[s.ID] = s
	}
	ordered := make([]catalog.Service, 0, len(services))
	for _, id := range ids {
		if s, ok := byID[id]; ok {
			ordered = append(ordered, s)
		}
	}
	return ordered, nil
}

func (r *CatalogReadStore) StaffByID(ctx context.Context, businessID, id uuid.UUID) (*catalog.Staff, error) {
	s, err := scanStaff(r.db.QueryRow(ctx, selectStaffByID, businessID, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("staff not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find staff by ID", err)
	}
	return &s, nil
}

func (r *CatalogReadStore) StaffByBusiness(ctx context.Context, businessID uuid.UUID) ([]catalog.Staff, error) {
	rows, err := r.db.Query(ctx, selectStaffByBusiness, businessID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list staff", err)
	}
	staff, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Staff, error) {
		return scanStaff(row)
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan staff", err)
	}
	return staff, nil
}

func scanStaff(row pgx.Row) (catalog.Staff, error) {
	var (
		s          catalog.Staff
		userID     pgtype.UUID
		serviceIDs []pgtype.UUID
	)
	if err := row.Scan(&s.ID, &s.BusinessID, &userID, &s.Name, &s.Active, &serviceIDs, &s.DisplayOrder); err != nil {
		return catalog.Staff{}, err
	}
	s.UserID = pgconv.UUIDPtrFromPgtype(userID)
	s.ServiceIDs = pgconv.UUIDsFromPgtype(serviceIDs)
	return s, nil
}
