package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

// UserHandler exposes administrator user management: the paginated user
// list and account freezing.  All routes are admin-guarded by middleware.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(users *repository.UserRepo) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Users: users}
}

// userListItem is the admin view of a user row.  The frozen flag is
// included so administrators can see which accounts are locked out.
type userListItem struct {
	ID        uint64 `json:"id"`
	Username  string `json:"username"`
	NickName  string `json:"nick_name"`
	Email     string `json:"email"`
	IsFrozen  bool   `json:"is_frozen"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

// List handles GET /v1/users with optional username/nickName/email
// filters and pageNo/pageSize pagination.
func (h *UserHandler) List(c echo.Context) error {
	f := repository.UserFilter{
		Username: c.QueryParam("username"),
		NickName: c.QueryParam("nickName"),
		Email:    c.QueryParam("email"),
		PageNo:   queryInt(c, "pageNo", 1),
		PageSize: queryInt(c, "pageSize", 10),
	}
	if f.PageNo < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pageNo must be at least 1"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, total, err := h.Users.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]userListItem, 0, len(users))
	for _, u := range users {
		out = append(out, userListItem{
			ID:        u.ID,
			Username:  u.Username,
			NickName:  u.NickName,
			Email:     u.Email,
			IsFrozen:  u.IsFrozen,
			IsAdmin:   u.IsAdmin,
			CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out, "total_count": total})
}

// Freeze handles POST /v1/users/freeze/:id.  A frozen account keeps its
// data and bookings but can no longer log in.
func (h *UserHandler) Freeze(c echo.Context) error {
	return h.setFrozen(c, true, "user frozen")
}

// Unfreeze handles POST /v1/users/unfreeze/:id.
func (h *UserHandler) Unfreeze(c echo.Context) error {
	return h.setFrozen(c, false, "user unfrozen")
}

func (h *UserHandler) setFrozen(c echo.Context, frozen bool, msg string) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetFrozen(ctx, id, frozen); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}
