package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/notifier"
	"github.com/iliyamo/meeting-room-reservation/internal/queue"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
	"github.com/iliyamo/meeting-room-reservation/internal/service"
)

// BookingHandler exposes the booking workflow over HTTP: paginated
// listing, creation, the approve/reject/unbind transitions and the urge
// reminder.  All methods assume JWT authentication has already been
// performed by middleware.
type BookingHandler struct {
	Workflow *service.BookingService // create/transition/urge semantics
	Bookings *repository.BookingRepo // direct access for the joined listing
	Rooms    *repository.RoomRepo    // room names for published events
	Users    *repository.UserRepo    // usernames for published events
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(wf *service.BookingService, b *repository.BookingRepo, r *repository.RoomRepo, u *repository.UserRepo) *BookingHandler {
	if wf == nil || b == nil || r == nil || u == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Workflow: wf, Bookings: b, Rooms: r, Users: u}
}

type createBookingReq struct {
	RoomID    uint64 `json:"room_id"`    // room being reserved
	StartTime string `json:"start_time"` // RFC3339
	EndTime   string `json:"end_time"`   // RFC3339
	Note      string `json:"note"`       // optional free-text note
}

// List handles GET /v1/bookings.  Supports username, roomName,
// roomLocation and start/end time-range filters plus pageNo/pageSize.
func (h *BookingHandler) List(c echo.Context) error {
	f := repository.BookingFilter{
		Username:     c.QueryParam("username"),
		RoomName:     c.QueryParam("roomName"),
		RoomLocation: c.QueryParam("roomLocation"),
		PageNo:       queryInt(c, "pageNo", 1),
		PageSize:     queryInt(c, "pageSize", 10),
	}
	if f.PageNo < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pageNo must be at least 1"})
	}
	if v := c.QueryParam("startTime"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid startTime"})
		}
		f.RangeStart = t
	}
	if v := c.QueryParam("endTime"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid endTime"})
		}
		f.RangeEnd = t
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, total, err := h.Bookings.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings, "total_count": total})
}

// Create handles POST /v1/bookings.  The requesting user comes from the
// access token.  On success a booking.applied event is published
// fire-and-forget for downstream consumers.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	// bind request body
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.RoomID == 0 || req.StartTime == "" || req.EndTime == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room_id/start_time/end_time required"})
	}
	// parse the interval before touching the workflow
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid start_time"})
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid end_time"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Workflow.Create(ctx, userID, req.RoomID, start, end, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "meeting room not found"})
		case errors.Is(err, service.ErrTimeSlotLocked):
			return c.JSON(http.StatusConflict, echo.Map{"error": "time slot already locked"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create booking failed"})
		}
	}

	// fire-and-forget; the booking is already committed
	go h.publishApplied(b.ID, b.UserID, b.RoomID, b.StartTime, b.EndTime)

	return c.JSON(http.StatusCreated, echo.Map{
		"id":         b.ID,
		"status":     b.Status,
		"start_time": b.StartTime.UTC().Format(time.RFC3339),
		"end_time":   b.EndTime.UTC().Format(time.RFC3339),
		"message":    "booking applied",
	})
}

// publishApplied enriches and publishes the booking.applied event.  Any
// failure is logged by the publisher and otherwise ignored: the booking
// is already committed.
func (h *BookingHandler) publishApplied(bookingID, userID, roomID uint64, start, end time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ev := queue.BookingAppliedEvent{
		BookingID: bookingID,
		UserID:    userID,
		RoomID:    roomID,
		StartTime: start.UTC().Format(time.RFC3339),
		EndTime:   end.UTC().Format(time.RFC3339),
		AppliedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if u, err := h.Users.GetByID(ctx, userID); err == nil {
		ev.Username = u.Username
	}
	if r, err := h.Rooms.GetByID(ctx, roomID); err == nil {
		ev.RoomName = r.Name
	}
	_ = queue.PublishBookingApplied(ctx, ev)
}

// Apply handles GET /v1/bookings/apply/:id (admin).
func (h *BookingHandler) Apply(c echo.Context) error {
	return h.transition(c, h.Workflow.Approve, "booking approved")
}

// Reject handles GET /v1/bookings/reject/:id (admin).
func (h *BookingHandler) Reject(c echo.Context) error {
	return h.transition(c, h.Workflow.Reject, "booking rejected")
}

// Unbind handles GET /v1/bookings/unbind/:id.  Any status may be
// released.
func (h *BookingHandler) Unbind(c echo.Context) error {
	return h.transition(c, h.Workflow.Unbind, "booking unbound")
}

// transition runs one of the status operations against the booking id
// from the path and translates the outcome into a JSON response.
func (h *BookingHandler) transition(c echo.Context, op func(context.Context, uint64) error, msg string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := op(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update booking failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// Urge handles GET /v1/bookings/urge/:id.  A throttled urge is a normal
// 200 response carrying the informational message; a delivery failure is
// surfaced as an error.
func (h *BookingHandler) Urge(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	msg, err := h.Workflow.Urge(ctx, id)
	if err != nil {
		// mail relay failures map to 502, everything else to 500
		var de *notifier.DeliveryError
		if errors.As(err, &de) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "failed to send reminder"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "urge failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
