package uow

import (
	"booking-engine/internal/infra/repository"
	"booking-engine/internal/usecase/shared"
)

type pgTx struct {
	dbtx repository.DBTX

	// Lazy-initialized repositories
	reads           shared.Reads
	reservationRepo shared.ReservationRepository
	promotionRepo   shared.PromotionRepository
	waitlistRepo    shared.WaitlistRepository
	statsRepo       shared.ClientStatsRepository
	idempotencyRepo shared.IdempotencyRepository
	outboxRepo      shared.OutboxRepository
}

func (t *pgTx) Reads() shared.Reads {
	if t.reads == nil {
		t.reads = newReads(t.dbtx)
	}
	return t.reads
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx)
	}
	return t.reservationRepo
}

func (t *pgTx) Promotions() shared.PromotionRepository {
	if t.promotionRepo == nil {
		t.promotionRepo = repository.NewPromotionRepository(t.dbtx)
	}
	return t.promotionRepo
}

func (t *pgTx) Waitlist() shared.WaitlistRepository {
	if t.waitlistRepo == nil {
		t.waitlistRepo = repository.NewWaitlistRepository(t.dbtx)
	}
	return t.waitlistRepo
}

func (t *pgTx) ClientStats() shared.ClientStatsRepository {
	if t.statsRepo == nil {
		t.statsRepo = repository.NewClientStatsRepository(t.dbtx)
	}
	return t.statsRepo
}

func (t *pgTx) Idempotency() shared.IdempotencyRepository {
	if t.idempotencyRepo == nil {
		t.idempotencyRepo = repository.NewIdempotencyRepository(t.dbtx)
	}
	return t.idempotencyRepo
}

func (t *pgTx) Outbox() shared.OutboxRepository {
	if t.outboxRepo == nil {
		t.outboxRepo = repository.NewOutboxRepository(t.dbtx)
	}
	return t.outboxRepo
}
