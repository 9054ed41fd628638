package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
	"github.com/daehwan-kim/retail-order-service/internal/service"
)

type CouponHandler struct {
	coupons *service.CouponService
}

func NewCouponHandler(coupons *service.CouponService) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

type postCouponIssueRequest struct {
	UserID   int64 `json:"userId"`
	CouponID int64 `json:"couponId"`
}

type userCouponResponse struct {
	UserCouponID   int64      `json:"userCouponId"`
	CouponID       int64      `json:"couponId"`
	CouponName     string     `json:"couponName"`
	DiscountAmount int64      `json:"discountAmount"`
	Status         string     `json:"status"`
	IssuedAt       time.Time  `json:"issuedAt"`
	UsedAt         *time.Time `json:"usedAt,omitempty"`
	ValidUntil     time.Time  `json:"validUntil"`
}

type couponResponse struct {
	CouponID       int64     `json:"couponId"`
	Name           string    `json:"name"`
	DiscountAmount int64     `json:"discountAmount"`
	TotalQuantity  int       `json:"totalQuantity"`
	IssuedQuantity int       `json:"issuedQuantity"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// IssueCoupon handles POST /v1/coupons/issue.
func (h *CouponHandler) IssueCoupon(w http.ResponseWriter, r *http.Request) {
	var req postCouponIssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "invalid body"})
		return
	}
	if req.UserID <= 0 || req.CouponID <= 0 {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "userId and couponId are required"})
		return
	}

	issued, err := h.coupons.IssueCoupon(r.Context(), req.UserID, req.CouponID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toUserCouponResponse(*issued))
}

// GetCoupon handles GET /v1/coupons/{couponID}.
func (h *CouponHandler) GetCoupon(w http.ResponseWriter, r *http.Request) {
	couponID, err := pathID(r, "couponID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "invalid coupon id"})
		return
	}

	coupon, err := h.coupons.GetCoupon(r.Context(), couponID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, couponResponse{
		CouponID:       coupon.ID,
		Name:           coupon.Name,
		DiscountAmount: coupon.DiscountAmount,
		TotalQuantity:  coupon.TotalQuantity,
		IssuedQuantity: coupon.IssuedQuantity,
		ExpiresAt:      coupon.ExpiresAt,
	})
}

// UserCoupons handles GET /v1/users/{userID}/coupons.
func (h *CouponHandler) UserCoupons(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "invalid user id"})
		return
	}

	page, err := h.coupons.UserCoupons(r.Context(), userID, pagingFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]userCouponResponse, 0, len(page.Items))
	for _, uc := range page.Items {
		items = append(items, toUserCouponResponse(uc))
	}
	writeData(w, http.StatusOK, pagedResponse[userCouponResponse]{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalCount: page.TotalCount,
	})
}

func toUserCouponResponse(uc models.UserCoupon) userCouponResponse {
	return userCouponResponse{
		UserCouponID:   uc.ID,
		CouponID:       uc.CouponID,
		CouponName:     uc.CouponName,
		DiscountAmount: uc.DiscountAmount,
		Status:         string(uc.Status),
		IssuedAt:       uc.IssuedAt,
		UsedAt:         uc.UsedAt,
		ValidUntil:     uc.ValidUntil,
	}
}
