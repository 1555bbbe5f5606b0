//go:build unit || integration

// Package fixture wires use cases to the in-memory store for tests.
package fixture

import (
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/infra/lock"
	"booking-engine/internal/infra/memstore"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/testutil/builder"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// Now is a Sunday; BookingDate is the Tuesday of the following week.
var Now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

const BookingDate = "2026-03-10"

// World is one business with an owner, a client, two services and three
// staff members in display order.
type World struct {
	Store      *memstore.Store
	Clock      *clock.MockClock
	Dispatcher *RecordingDispatcher
	Config     config.BookingConfig

	Business *catalog.Business
	Owner    *user.User
	Client   *user.User
	Haircut  catalog.Service
	Color    catalog.Service
	Staff    []catalog.Staff

	Bookings commands.BookingCommands
	Waitlist commands.WaitlistCommands
	Queries  queries.BookingQueries
}

func NewWorld(mutatePolicy func(*booking.Policy)) *World {
	w := &World{
		Store:      memstore.New(),
		Clock:      clock.NewMockClock(Now),
		Dispatcher: &RecordingDispatcher{},
		Config:     config.DefaultBookingConfig(),
		Owner:      builder.NewUser(user.RoleOwner),
		Client:     builder.NewUser(user.RoleClient),
	}

	bb := builder.NewBusinessBuilder().With(func(b *builder.BusinessBuilder) { b.OwnerID = w.Owner.ID() })
	if mutatePolicy != nil {
		bb.WithPolicy(mutatePolicy)
	}
	w.Business = bb.BuildDomain()

	w.Haircut = builder.NewServiceBuilder(w.Business.ID()).With(func(s *catalog.Service) {
		s.Name = "Haircut"
		s.DurationMinutes = 50
		s.Price = 1000
	}).Build()
	w.Color = builder.NewServiceBuilder(w.Business.ID()).With(func(s *catalog.Service) {
		s.Name = "Color"
		s.DurationMinutes = 40
		s.Price = 2500
	}).Build()

	for i, name := range []string{"Ada", "Ben", "Cleo"} {
		w.Staff = append(w.Staff, builder.NewStaffBuilder(w.Business.ID(), w.Haircut.ID, w.Color.ID).With(func(s *catalog.Staff) {
			s.Name = name
			s.DisplayOrder = i + 1
		}).Build())
	}

	w.Store.AddBusiness(w.Business)
	w.Store.AddUser(w.Owner)
	w.Store.AddUser(w.Client)
	w.Store.AddService(w.Haircut)
	w.Store.AddService(w.Color)
	for _, s := range w.Staff {
		w.Store.AddStaff(s)
	}

	w.Waitlist = commands.NewWaitlistUseCase(w.Store, w.Dispatcher, w.Clock, w.Config)
	w.Bookings = commands.NewBookingUseCase(w.Store, lock.NewLocalLocker(time.Second), w.Dispatcher, w.Waitlist, w.Clock, w.Config)
	w.Queries = queries.NewBookingQueries(w.Store, w.Clock)
	return w
}

func (w *World) ClientActor() shared.Actor {
	return shared.Actor{UserID: w.Client.ID(), Role: user.RoleClient}
}

func (w *World) OwnerActor() shared.Actor {
	return shared.Actor{UserID: w.Owner.ID(), Role: user.RoleOwner}
}

// AddClient registers another client user.
func (w *World) AddClient() *user.User {
	u := builder.NewUser(user.RoleClient)
	w.Store.AddUser(u)
	return u
}

// BookingInput is a client booking of a haircut on BookingDate at start.
func (w *World) BookingInput(start string) commands.CreateBookingInput {
	clientID := w.Client.ID()
	return commands.CreateBookingInput{
		Actor:      w.ClientActor(),
		BusinessID: w.Business.ID(),
		ClientID:   &clientID,
		ServiceIDs: []uuid.UUID{w.Haircut.ID},
		Date:       BookingDate,
		StartTime:  start,
		Source:     booking.SourceClientApp,
	}
}

func (w *World) StaffID(i int) *uuid.UUID {
	id := w.Staff[i].ID
	return &id
}

// Seed stores a confirmed haircut booked with staff member i, bypassing the
// use case.
func (w *World) Seed(i int, start string) *booking.Reservation {
	r := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.BusinessID = w.Business.ID()
		b.Staff = w.Staff[i].Snapshot()
		b.Services = []booking.ServiceLine{w.Haircut.Line()}
		b.StartTime = start
		b.Date = BookingDate
		b.BufferMinutes = w.Business.Policy().BufferMinutes
		b.Now = Now
	}).MustBuild()
	w.Store.AddReservation(r)
	return r
}

// Window is the occupancy window of a haircut starting at start on
// BookingDate.
func (w *World) Window(start string) booking.Window {
	slot, err := booking.PlanSlot(BookingDate, start, w.Haircut.DurationMinutes, w.Business.Policy().BufferMinutes, w.Business.Location())
	if err != nil {
		panic(err)
	}
	return slot.Window
}
