package api

import (
	"net/http"

	"booking-engine/internal/domain/booking"
	reqdto "booking-engine/internal/handler/dto/request"
	resdto "booking-engine/internal/handler/dto/response"
	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/handler/middleware"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Create booking
// @Description Book one or more services with a staff member. A repeated Idempotency-Key replays the original result.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Idempotency key (UUID)"
// @Param request body reqdto.CreateBookingRequest true "Booking request"
// @Success 201 {object} resdto.CreateBookingResponse
// @Success 200 {object} resdto.CreateBookingResponse "Replayed result"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var idemKey *uuid.UUID
	if raw := c.GetHeader(middleware.HeaderIdempotencyKey); raw != "" {
		key, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Idempotency-Key must be a valid UUID", nil)
			return
		}
		idemKey = &key
	}

	var req reqdto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.CreateBooking(c.Request.Context(), req.ToInput(actor), idemKey)
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to create booking")
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		c.Header(middleware.HeaderReplayed, "true")
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromCreateResult(result))
}

// @Summary Cancel booking
// @Description Cancel a booking. Refunds follow the business cancellation policy.
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.CancelBookingRequest false "Cancellation reason"
// @Success 200 {object} resdto.CancelBookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var req reqdto.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
			return
		}
	}

	result, err := h.cmds.CancelBooking(c.Request.Context(), commands.CancelBookingInput{
		ReservationID: id,
		RequesterID:   actor.UserID,
		Reason:        req.Reason,
	})
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to cancel booking")
		return
	}
	c.JSON(http.StatusOK, resdto.FromCancelResult(result))
}

// @Summary Price preview
// @Description Calculate the price a booking would be charged without consuming the promotion
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.PriceRequest true "Price request"
// @Success 200 {object} resdto.PriceResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/price [post]
func (h *BookingHandler) Price(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req reqdto.PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	var userID *uuid.UUID
	if actor.IsClient() {
		userID = &actor.UserID
	}
	view, err := h.q.CalculatePrice(c.Request.Context(), req.ToQuery(userID))
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to calculate price")
		return
	}
	c.JSON(http.StatusOK, resdto.FromPriceView(view))
}

// @Summary Get booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	r, err := h.q.GetReservation(c.Request.Context(), actor, id)
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to load booking")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservation(r))
}

// @Summary List my bookings
// @Description Newest first, keyset paginated
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param after query string false "Cursor from a previous page"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	limit, ok := pageSize(c)
	if !ok {
		return
	}
	items, next, err := h.q.ListMine(c.Request.Context(), actor, c.Query("after"), limit)
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservations(items, next))
}

// @Summary Update booking status
// @Description Business side lifecycle transitions (confirm, check in, start, complete, no show, cancel)
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Param request body reqdto.UpdateStatusRequest true "Target status"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id}/status [post]
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req reqdto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	r, err := h.cmds.UpdateStatus(c.Request.Context(), commands.UpdateStatusInput{
		Actor:         actor,
		ReservationID: id,
		Status:        booking.Status(req.Status),
		Note:          req.Note,
	})
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to update booking status")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservation(r))
}

// @Summary Record deposit payment
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Reservation ID"
// @Success 200 {object} resdto.BookingResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id}/deposit [post]
func (h *BookingHandler) RecordDeposit(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	r, err := h.cmds.RecordDepositPayment(c.Request.Context(), actor, id)
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to record deposit")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservation(r))
}
