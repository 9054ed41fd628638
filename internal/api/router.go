package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/daehwan-kim/retail-order-service/internal/api/handlers"
	"github.com/daehwan-kim/retail-order-service/internal/service"
)

// Services bundles everything the HTTP surface needs.
type Services struct {
	Orders   *service.OrderService
	Coupons  *service.CouponService
	Points   *service.PointService
	Products *service.ProductService
	Users    *service.UserService
}

// NewRouter builds the HTTP router for the order service.
func NewRouter(svcs Services) http.Handler {
	r := chi.NewRouter()

	orderHandler := handlers.NewOrderHandler(svcs.Orders)
	couponHandler := handlers.NewCouponHandler(svcs.Coupons)
	pointHandler := handlers.NewPointHandler(svcs.Points)
	productHandler := handlers.NewProductHandler(svcs.Products)
	userHandler := handlers.NewUserHandler(svcs.Users)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/orders", orderHandler.CreateOrder)

		r.Route("/coupons", func(r chi.Router) {
			r.Post("/issue", couponHandler.IssueCoupon)
			r.Get("/{couponID}", couponHandler.GetCoupon)
		})

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/", userHandler.GetUser)
			r.Get("/coupons", couponHandler.UserCoupons)
			r.Get("/points", pointHandler.Balance)
			r.Patch("/points/charge", pointHandler.Charge)
		})

		r.Get("/products", productHandler.Products)
		r.Get("/products/popular", productHandler.PopularProducts)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
