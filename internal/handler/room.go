package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

// RoomHandler exposes meeting room management.  Create, update and
// delete are restricted to administrators by middleware; list and get
// are open to any authenticated user.
type RoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewRoomHandler(rooms *repository.RoomRepo) *RoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewRoomHandler")
	}
	return &RoomHandler{Rooms: rooms}
}

type roomReq struct {
	Name        string `json:"name"`        // unique room name
	Capacity    uint32 `json:"capacity"`    // seats, must be positive
	Location    string `json:"location"`    // floor / wing
	Equipment   string `json:"equipment"`   // free-text equipment list
	Description string `json:"description"` // optional
}

type roomResp struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Capacity    uint32 `json:"capacity"`
	Location    string `json:"location"`
	Equipment   string `json:"equipment"`
	Description string `json:"description"`
	IsBooked    bool   `json:"is_booked"`
	CreatedAt   string `json:"created_at"` // RFC3339, UTC
}

func toRoomResp(m model.MeetingRoom) roomResp {
	return roomResp{
		ID:          m.ID,
		Name:        m.Name,
		Capacity:    m.Capacity,
		Location:    m.Location,
		Equipment:   m.Equipment,
		Description: m.Description,
		IsBooked:    m.IsBooked,
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Create handles POST /v1/rooms.
func (h *RoomHandler) Create(c echo.Context) error {
	// bind request body
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Capacity == 0 || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/capacity/location required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room := model.MeetingRoom{
		Name:        req.Name,
		Capacity:    req.Capacity,
		Location:    req.Location,
		Equipment:   req.Equipment,
		Description: req.Description,
	}
	if err := h.Rooms.Create(ctx, &room); err != nil {
		if errors.Is(err, repository.ErrRoomNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room failed"})
	}
	return c.JSON(http.StatusCreated, toRoomResp(room))
}

// List handles GET /v1/rooms with optional name/equipment/capacity
// filters and pageNo/pageSize pagination.
func (h *RoomHandler) List(c echo.Context) error {
	f := repository.RoomFilter{
		Name:      c.QueryParam("name"),
		Equipment: c.QueryParam("equipment"),
		PageNo:    queryInt(c, "pageNo", 1),
		PageSize:  queryInt(c, "pageSize", 10),
	}
	if f.PageNo < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pageNo must be at least 1"})
	}
	// capacity filters on an exact match, not a minimum
	if v := c.QueryParam("capacity"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid capacity"})
		}
		f.Capacity = uint32(n)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rooms, total, err := h.Rooms.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]roomResp, 0, len(rooms))
	for _, m := range rooms {
		out = append(out, toRoomResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": out, "total_count": total})
}

// Get handles GET /v1/rooms/:id.
func (h *RoomHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "meeting room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toRoomResp(room))
}

// Update handles PUT /v1/rooms/:id.
func (h *RoomHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	// bind request body; updates replace every mutable field
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == "" || req.Capacity == 0 || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/capacity/location required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	room := model.MeetingRoom{
		ID:          id,
		Name:        req.Name,
		Capacity:    req.Capacity,
		Location:    req.Location,
		Equipment:   req.Equipment,
		Description: req.Description,
	}
	if err := h.Rooms.Update(ctx, &room); err != nil {
		switch {
		case errors.Is(err, repository.ErrRoomNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "meeting room not found"})
		case errors.Is(err, repository.ErrRoomNameExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "room updated"})
}

// Delete handles DELETE /v1/rooms/:id.
func (h *RoomHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Rooms.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "meeting room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "room deleted"})
}

// queryInt parses an optional integer query parameter with a default.
func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
