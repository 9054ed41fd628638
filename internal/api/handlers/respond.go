package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/daehwan-kim/retail-order-service/internal/models"
)

// apiResponse is the common envelope every endpoint returns.
type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, apiResponse{Code: code, Message: "ok", Data: data})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, status, apiResponse{Code: status, Message: "internal error"})
		return
	}
	writeJSON(w, status, apiResponse{Code: status, Message: err.Error()})
}

func statusFor(err error) int {
	switch {
	case models.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCouponAlreadyIssued),
		errors.Is(err, models.ErrCouponSoldOut),
		errors.Is(err, models.ErrCouponExpired),
		errors.Is(err, models.ErrCouponNotUsable),
		errors.Is(err, models.ErrCouponNotUsed),
		errors.Is(err, models.ErrCouponNotOwned),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrInsufficientPoints):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidPointAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func pagingFromQuery(r *http.Request) models.PagingOptions {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	return models.NewPagingOptions(page, size)
}

type pagedResponse[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalCount int64 `json:"totalCount"`
}
