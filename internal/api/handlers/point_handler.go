package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/service"
)

type PointHandler struct {
	points *service.PointService
}

func NewPointHandler(points *service.PointService) *PointHandler {
	return &PointHandler{points: points}
}

type patchPointChargeRequest struct {
	Amount int64 `json:"amount"`
}

type pointBalanceResponse struct {
	UserID  int64 `json:"userId"`
	Balance int64 `json:"balance"`
}

type pointChangeResponse struct {
	UserID     int64     `json:"userId"`
	Amount     int64     `json:"amount"`
	Type       string    `json:"type"`
	NewBalance int64     `json:"newBalance"`
	HappenedAt time.Time `json:"happenedAt"`
}

// Balance handles GET /v1/users/{userID}/points.
func (h *PointHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "invalid user id"})
		return
	}

	balance, err := h.points.Balance(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, pointBalanceResponse{UserID: userID, Balance: balance})
}

// Charge handles PATCH /v1/users/{userID}/points/charge.
func (h *PointHandler) Charge(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "invalid user id"})
		return
	}
	var req patchPointChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "invalid body"})
		return
	}

	change, err := h.points.Charge(r.Context(), userID, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, pointChangeResponse{
		UserID:     change.UserID,
		Amount:     change.Amount,
		Type:       string(change.Type),
		NewBalance: change.NewBalance,
		HappenedAt: change.HappenedAt,
	})
}
