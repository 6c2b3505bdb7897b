package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/veo1/online-marketplace/app/respond"
	"github.com/veo1/online-marketplace/models"
)

type UserResponse struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ProductCount int64  `json:"product_count"`
}

type UserProvider interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	CountProducts(ctx context.Context, id uint) (int64, error)
}

type UserHandler struct {
	repo UserProvider
	log  *slog.Logger
}

func NewUserHandler(r UserProvider, log *slog.Logger) *UserHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UserHandler{repo: r, log: log}
}

func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(chi.URLParam(r, "userId"), 10, 0)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.repo.GetByID(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error("failed to fetch user", "user_id", id, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	count, err := h.repo.CountProducts(r.Context(), user.ID)
	if err != nil {
		h.log.Error("failed to count products", "user_id", id, "error", err)
		respond.Error(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	respond.JSON(w, http.StatusOK, UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		ProductCount: count,
	})
}
