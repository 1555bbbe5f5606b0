package api

import (
	"net/http"
	"strings"

	resdto "booking-engine/internal/handler/dto/response"
	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	q queries.BookingQueries
}

func NewAvailabilityHandler(q queries.BookingQueries) *AvailabilityHandler {
	return &AvailabilityHandler{q: q}
}

// @Summary Check availability
// @Description Bookable start times for the given services on one date, in the business timezone
// @Tags availability
// @Produce json
// @Param id path string true "Business ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param service_ids query string true "Comma separated service IDs"
// @Param staff_id query string false "Restrict to one staff member"
// @Success 200 {object} resdto.AvailabilityResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /businesses/{id}/availability [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	businessID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errMissingDate, "date is required", nil)
		return
	}

	serviceIDs, err := parseUUIDList(c.Query("service_ids"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid service_ids", nil)
		return
	}

	req := queries.AvailabilityRequest{
		BusinessID: businessID,
		Date:       date,
		ServiceIDs: serviceIDs,
	}
	if raw := c.Query("staff_id"); raw != "" {
		staffID, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid staff_id", nil)
			return
		}
		req.StaffID = &staffID
	}

	view, err := h.q.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to check availability")
		return
	}
	c.JSON(http.StatusOK, resdto.FromAvailabilityView(view))
}

func parseUUIDList(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, errNoServices
	}
	return ids, nil
}
