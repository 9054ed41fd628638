package handlers

import (
	"net/http"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/service"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type userResponse struct {
	UserID       int64     `json:"userId"`
	Name         string    `json:"name"`
	PointBalance int64     `json:"pointBalance"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GetUser handles GET /v1/users/{userID}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "invalid user id"})
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, userResponse{
		UserID:       user.ID,
		Name:         user.Name,
		PointBalance: user.PointBalance,
		CreatedAt:    user.CreatedAt,
	})
}
