package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmorales-dev/rentshop-backend/api/controllers"
	"github.com/dmorales-dev/rentshop-backend/api/middleware"
	"github.com/dmorales-dev/rentshop-backend/internal/auth"
	"github.com/dmorales-dev/rentshop-backend/internal/cart"
	"github.com/dmorales-dev/rentshop-backend/internal/catalog"
	checkoutsvc "github.com/dmorales-dev/rentshop-backend/internal/checkout"
	"github.com/dmorales-dev/rentshop-backend/internal/inventory"
	"github.com/dmorales-dev/rentshop-backend/internal/orders"
	"github.com/dmorales-dev/rentshop-backend/internal/rentals"
	"github.com/dmorales-dev/rentshop-backend/internal/reports"
	"github.com/dmorales-dev/rentshop-backend/internal/users"
	"github.com/dmorales-dev/rentshop-backend/pkg/auth/session"
	"github.com/dmorales-dev/rentshop-backend/pkg/config"
	"github.com/dmorales-dev/rentshop-backend/pkg/db"
	"github.com/dmorales-dev/rentshop-backend/pkg/enums"
	"github.com/dmorales-dev/rentshop-backend/pkg/logger"
	redisclient "github.com/dmorales-dev/rentshop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	cache redisclient.Pinger,
	sessions session.AccessSessionChecker,
	gatherer prometheus.Gatherer,
	authService auth.Service,
	registerService auth.RegisterService,
	adminRegisterService auth.AdminRegisterService,
	usersService users.Service,
	catalogService catalog.Service,
	inventoryService inventory.Service,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	ordersService orders.Service,
	rentalsService rentals.Service,
	reportsService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	authed := middleware.Auth(cfg.JWT, sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, cache, logg))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/register", controllers.Register(registerService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.With(authed).Post("/logout", controllers.AuthLogout(authService, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AdminAuthLogin(authService, logg))
		r.With(authed, middleware.RequireRole(enums.UserRoleSuperAdmin, logg)).
			Post("/register", controllers.AdminRegister(adminRegisterService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ListItems(catalogService, inventoryService, logg))
			r.Get("/{itemId}", controllers.GetItem(catalogService, inventoryService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(authed)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, logg))
				r.Put("/items/{itemId}", controllers.CartUpdateQuantity(cartService, logg))
				r.Delete("/items/{itemId}", controllers.CartRemoveItem(cartService, logg))
				r.Delete("/", controllers.CartClear(cartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListMyOrders(ordersService, logg))
				r.Get("/{orderId}", controllers.GetMyOrder(ordersService, logg))
			})

			r.Route("/rentals", func(r chi.Router) {
				r.Get("/", controllers.ListMyRentals(rentalsService, logg))
				r.Post("/", controllers.RequestRental(rentalsService, logg))
				r.Post("/{rentalId}/finalize", controllers.FinalizeRental(rentalsService, logg))
				r.Post("/{rentalId}/cancel", controllers.CancelRental(rentalsService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(authed)
		r.Use(middleware.RequireStaff(logg))

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateItem(catalogService, logg))
			r.Patch("/{itemId}", controllers.AdminUpdateItem(catalogService, logg))
			r.Delete("/{itemId}", controllers.AdminDeleteItem(catalogService, logg))
			r.Post("/{itemId}/restock", controllers.AdminRestock(inventoryService, logg))
			r.Put("/{itemId}/quantity", controllers.AdminEditQuantity(inventoryService, logg))
			r.Get("/{itemId}/inventory", controllers.AdminInventoryHistory(inventoryService, logg))
			r.Get("/{itemId}/availability", controllers.AdminItemAvailability(inventoryService, logg))
		})

		r.Post("/inventory/bulk-restock", controllers.AdminBulkRestock(inventoryService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(ordersService, logg))
			r.Get("/{orderId}/ledger", controllers.AdminOrderLedger(ordersService, logg))
			r.Post("/{orderId}/transition", controllers.AdminTransitionOrder(ordersService, logg))
		})

		r.Route("/rentals", func(r chi.Router) {
			r.Get("/", controllers.AdminListRentals(rentalsService, logg))
			r.Post("/{rentalId}/complete", controllers.AdminCompleteRental(rentalsService, logg))
			r.Post("/{rentalId}/expire", controllers.AdminExpireRental(rentalsService, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(usersService, logg))
			r.Get("/{userId}", controllers.AdminGetUser(usersService, logg))
			r.Patch("/{userId}", controllers.AdminUpdateUser(usersService, logg))
			r.Post("/{userId}/deactivate", controllers.AdminDeactivateUser(usersService, logg))
			r.Post("/{userId}/reactivate", controllers.AdminReactivateUser(usersService, logg))
		})

		r.Get("/reports/sales", controllers.AdminSalesReport(reportsService, logg))
	})

	return r
}
