package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/models"
	"github.com/daehwan-kim/retail-order-service/internal/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type postOrderRequest struct {
	UserID       int64                     `json:"userId"`
	Products     []postOrderRequestProduct `json:"products"`
	UserCouponID *int64                    `json:"userCouponId,omitempty"`
}

type postOrderRequestProduct struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type orderResponse struct {
	OrderID            int64               `json:"orderId"`
	UserID             int64               `json:"userId"`
	UserCouponID       *int64              `json:"userCouponId,omitempty"`
	Items              []orderItemResponse `json:"items"`
	TotalProductsPrice int64               `json:"totalProductsPrice"`
	DiscountedPrice    int64               `json:"discountedPrice"`
	PurchasedPrice     int64               `json:"purchasedPrice"`
	OrderedAt          time.Time           `json:"orderedAt"`
}

type orderItemResponse struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   int64  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	TotalPrice  int64  `json:"totalPrice"`
}

// CreateOrder handles POST /v1/orders.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req postOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "invalid body"})
		return
	}
	if req.UserID <= 0 || len(req.Products) == 0 {
		writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "userId and products are required"})
		return
	}
	for _, p := range req.Products {
		if p.ProductID <= 0 || p.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, apiResponse{Code: http.StatusBadRequest, Message: "productId and quantity must be positive"})
			return
		}
	}

	input := service.CreateOrderInput{
		UserID:       req.UserID,
		UserCouponID: req.UserCouponID,
	}
	for _, p := range req.Products {
		input.Products = append(input.Products, service.ProductWithQuantity{
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toOrderResponse(order))
}

func toOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		OrderID:            order.ID,
		UserID:             order.UserID,
		UserCouponID:       order.UserCouponID,
		TotalProductsPrice: order.TotalProductsPrice,
		DiscountedPrice:    order.DiscountedPrice,
		PurchasedPrice:     order.PurchasedPrice(),
		OrderedAt:          order.OrderedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice(),
		})
	}
	return resp
}
