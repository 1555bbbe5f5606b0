package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"booking-engine/internal/handler/httperr"
	"booking-engine/internal/handler/middleware"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// abortWithUseCaseError maps classified use case failures to their status
// and hides everything else behind a generic 500.
func abortWithUseCaseError(c *gin.Context, err error, fallback string) {
	kind, msg := errs.KindOf(err)
	switch kind {
	case errs.KindNotFound:
		httperr.AbortWithError(c, http.StatusNotFound, err, msg, nil)
	case errs.KindBadRequest:
		httperr.AbortWithError(c, http.StatusBadRequest, err, msg, nil)
	case errs.KindConflict:
		httperr.AbortWithError(c, http.StatusConflict, err, msg, nil)
	default:
		slog.Error("unhandled use case error",
			"request_id", middleware.GetRequestID(c),
			"path", c.FullPath(),
			"error", err.Error(),
			"stack", errs.ExtractStackLines(err, 8))
		httperr.AbortWithError(c, http.StatusInternalServerError, err, fallback, nil)
	}
}

var (
	errNoActor     = errs.New("authenticated actor missing from context")
	errMissingDate = errs.New("missing date query parameter")
	errNoServices  = errs.New("at least one service id is required")
)

func actorFrom(c *gin.Context) (shared.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errNoActor, "Unauthorized", nil)
		return shared.Actor{}, false
	}
	return actor, true
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid "+name, nil)
		return uuid.Nil, false
	}
	return id, true
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func pageSize(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultPageSize, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		if err == nil {
			err = errs.Newf("limit must be positive, got %d", n)
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid limit", nil)
		return 0, false
	}
	return min(n, maxPageSize), true
}
