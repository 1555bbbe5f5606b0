//go:build unit || integration

package builder

import (
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/domain/user"

	"github.com/google/uuid"
)

type BusinessBuilder struct {
	ID       uuid.UUID
	OwnerID  uuid.UUID
	Name     string
	Status   catalog.BusinessStatus
	Timezone string
	Policy   booking.Policy
	Hours    catalog.WeeklyHours
}

func NewBusinessBuilder() *BusinessBuilder {
	return &BusinessBuilder{
		ID:       uuid.New(),
		OwnerID:  uuid.New(),
		Name:     "Studio Nord",
		Status:   catalog.BusinessActive,
		Timezone: "UTC",
		Policy:   booking.DefaultPolicy(),
	}
}

func (b *BusinessBuilder) With(mutate func(*BusinessBuilder)) *BusinessBuilder {
	mutate(b)
	return b
}

func (b *BusinessBuilder) WithPolicy(mutate func(*booking.Policy)) *BusinessBuilder {
	mutate(&b.Policy)
	return b
}

func (b *BusinessBuilder) BuildDomain() *catalog.Business {
	return catalog.ReconstructBusiness(b.ID, b.OwnerID, b.Name, b.Status, b.Timezone, b.Policy, b.Hours, time.Now())
}

type ServiceBuilder struct {
	catalog.Service
}

func NewServiceBuilder(businessID uuid.UUID) *ServiceBuilder {
	return &ServiceBuilder{Service: catalog.Service{
		ID:              uuid.New(),
		BusinessID:      businessID,
		Name:            "Haircut",
		DurationMinutes: 30,
		Price:           1000,
		Active:          true,
	}}
}

func (b *ServiceBuilder) With(mutate func(*catalog.Service)) *ServiceBuilder {
	mutate(&b.Service)
	return b
}

func (b *ServiceBuilder) Build() catalog.Service {
	return b.Service
}

type StaffBuilder struct {
	catalog.Staff
}

func NewStaffBuilder(businessID uuid.UUID, serviceIDs ...uuid.UUID) *StaffBuilder {
	return &StaffBuilder{Staff: catalog.Staff{
		ID:         uuid.New(),
		BusinessID: businessID,
		Name:       "Mika",
		Active:     true,
		ServiceIDs: serviceIDs,
	}}
}

func (b *StaffBuilder) With(mutate func(*catalog.Staff)) *StaffBuilder {
	mutate(&b.Staff)
	return b
}

func (b *StaffBuilder) Build() catalog.Staff {
	return b.Staff
}

func NewUser(role user.Role) *user.User {
	id := uuid.New()
	return user.ReconstructUser(id, "Test "+role.String(), id.String()[:8]+"@example.com", "+4917012345", "push-"+id.String()[:8], role, true, time.Now())
}
