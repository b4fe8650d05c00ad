package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/service"
)

// StatisticHandler exposes booking aggregation endpoints.
type StatisticHandler struct {
	Stats *service.StatisticService
}

func NewStatisticHandler(stats *service.StatisticService) *StatisticHandler {
	if stats == nil {
		panic("nil service passed to NewStatisticHandler")
	}
	return &StatisticHandler{Stats: stats}
}

// UserBookingCount handles GET /v1/statistics/user-booking-count.
func (h *StatisticHandler) UserBookingCount(c echo.Context) error {
	start, end, err := parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Stats.UserBookingCount(ctx, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"counts": counts})
}

// RoomUsedCount handles GET /v1/statistics/room-used-count.
func (h *StatisticHandler) RoomUsedCount(c echo.Context) error {
	start, end, err := parseRange(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	counts, err := h.Stats.RoomUsedCount(ctx, start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"counts": counts})
}

func parseRange(c echo.Context) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, c.QueryParam("startTime"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid startTime")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("endTime"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.New("invalid endTime")
	}
	return start, end, nil
}
