package api

import (
	"net/http"

	reqdto "booking-engine/internal/handler/dto/request"
	resdto "booking-engine/internal/handler/dto/response"
	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type WaitlistHandler struct {
	cmds commands.WaitlistCommands
}

func NewWaitlistHandler(cmds commands.WaitlistCommands) *WaitlistHandler {
	return &WaitlistHandler{cmds: cmds}
}

// @Summary Join waitlist
// @Description Queue the caller for a slot matching the given preferences
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateWaitlistEntryRequest true "Waitlist request"
// @Success 201 {object} resdto.WaitlistEntryResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /waitlist [post]
func (h *WaitlistHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req reqdto.CreateWaitlistEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	entry, err := h.cmds.CreateWaitlistEntry(c.Request.Context(), req.ToInput(actor.UserID))
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to join waitlist")
		return
	}
	c.JSON(http.StatusCreated, resdto.FromWaitlistEntry(entry))
}

// @Summary Respond to waitlist offer
// @Tags waitlist
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Waitlist entry ID"
// @Param request body reqdto.RespondToOfferRequest true "Accept or decline"
// @Success 200 {object} resdto.WaitlistEntryResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /waitlist/{id}/respond [post]
func (h *WaitlistHandler) Respond(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req reqdto.RespondToOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	entry, err := h.cmds.RespondToOffer(c.Request.Context(), id, actor.UserID, *req.Accept)
	if err != nil {
		abortWithUseCaseError(c, err, "Failed to respond to offer")
		return
	}
	c.JSON(http.StatusOK, resdto.FromWaitlistEntry(entry))
}
