package handlers

import (
	"net/http"
	"time"

	"github.com/daehwan-kim/retail-order-service/internal/service"
)

type ProductHandler struct {
	products *service.ProductService
}

func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

type productResponse struct {
	ProductID int64     `json:"productId"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"unitPrice"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"createdAt"`
}

type popularProductResponse struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   int64  `json:"unitPrice"`
	SoldCount   int64  `json:"soldCount"`
}

// Products handles GET /v1/products.
func (h *ProductHandler) Products(w http.ResponseWriter, r *http.Request) {
	page, err := h.products.Products(r.Context(), pagingFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]productResponse, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, productResponse{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.UnitPrice,
			Stock:     p.Stock,
			CreatedAt: p.CreatedAt,
		})
	}
	writeData(w, http.StatusOK, pagedResponse[productResponse]{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalCount: page.TotalCount,
	})
}

// PopularProducts handles GET /v1/products/popular.
func (h *ProductHandler) PopularProducts(w http.ResponseWriter, r *http.Request) {
	page, err := h.products.PopularProducts(r.Context(), pagingFromQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	items := make([]popularProductResponse, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, popularProductResponse{
			ProductID:   s.ProductID,
			ProductName: s.ProductName,
			UnitPrice:   s.UnitPrice,
			SoldCount:   s.SoldCount,
		})
	}
	writeData(w, http.StatusOK, pagedResponse[popularProductResponse]{
		Items:      items,
		Page:       page.Page,
		Size:       page.Size,
		TotalCount: page.TotalCount,
	})
}
