package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rahulmenon/freshkart-backend/api/controllers"
	"github.com/rahulmenon/freshkart-backend/api/middleware"
	"github.com/rahulmenon/freshkart-backend/internal/cart"
	"github.com/rahulmenon/freshkart-backend/internal/catalog"
	checkoutsvc "github.com/rahulmenon/freshkart-backend/internal/checkout"
	"github.com/rahulmenon/freshkart-backend/internal/orders"
	"github.com/rahulmenon/freshkart-backend/internal/wallet"
	"github.com/rahulmenon/freshkart-backend/pkg/config"
	"github.com/rahulmenon/freshkart-backend/pkg/db"
	"github.com/rahulmenon/freshkart-backend/pkg/logger"
	pkgredis "github.com/rahulmenon/freshkart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	catalogService catalog.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	walletService wallet.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ProductList(catalogService, logg))
		r.Get("/products/{productID}", controllers.ProductGet(catalogService, logg))
		r.Get("/delivery-slots", controllers.DeliverySlots(logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, logg))
				r.Put("/items/{productID}", controllers.CartUpdateItem(cartService, logg))
				r.Delete("/items/{productID}", controllers.CartRemoveItem(cartService, logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Use(middleware.RateLimit(redisClient, logg, 30, time.Minute))
				r.Post("/quote", controllers.CheckoutQuote(checkoutService, logg))
				r.Post("/", controllers.CheckoutPlace(checkoutService, logg))
				r.Post("/confirm", controllers.CheckoutConfirm(checkoutService, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(ordersService, logg))
				r.Get("/{orderID}", controllers.OrderGet(ordersService, logg))
				// Advancing fulfillment state is staff-only; shoppers only
				// cancel their own orders.
				r.With(middleware.RequireRole("ops", logg)).
					Post("/{orderID}/status", controllers.OrderUpdateStatus(ordersService, logg))
				r.Post("/{orderID}/cancel", controllers.OrderCancel(ordersService, logg))
			})

			r.Route("/wallet", func(r chi.Router) {
				r.Get("/", controllers.WalletBalance(walletService, logg))
				r.Get("/entries", controllers.WalletEntries(walletService, logg))
			})
		})
	})

	return r
}
