package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cellflip/cellflip-backend/api/controllers"
	"github.com/cellflip/cellflip-backend/api/middleware"
	"github.com/cellflip/cellflip-backend/internal/alerts"
	"github.com/cellflip/cellflip-backend/internal/auth"
	"github.com/cellflip/cellflip-backend/internal/catalog"
	"github.com/cellflip/cellflip-backend/internal/inventory"
	"github.com/cellflip/cellflip-backend/internal/notifications"
	"github.com/cellflip/cellflip-backend/internal/tradein"
	"github.com/cellflip/cellflip-backend/internal/users"
	"github.com/cellflip/cellflip-backend/pkg/config"
	"github.com/cellflip/cellflip-backend/pkg/db"
	"github.com/cellflip/cellflip-backend/pkg/logger"
	"github.com/cellflip/cellflip-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth          auth.Service
	Tradein       tradein.Service
	Catalog       catalog.Service
	Inventory     inventory.Service
	Alerts        alerts.Service
	Notifications notifications.Service
	Users         users.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	readiness := map[string]controllers.Pinger{"postgres": dbP}
	if redisClient != nil {
		readiness["redis"] = redisClient
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/rider/otp/request", controllers.RiderOTPRequest(svcs.Auth, logg))
		r.Post("/rider/otp/verify", controllers.RiderOTPVerify(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/requests/{requestId}", controllers.GetRequest(svcs.Tradein, logg))
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListMyNotifications(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Use(middleware.RequireRole("seller", logg))
			r.Get("/catalog", controllers.ListPhoneModels(svcs.Catalog, logg, true))
			r.Route("/requests", func(r chi.Router) {
				r.Post("/", controllers.SellerCreateRequest(svcs.Tradein, logg))
				r.Get("/", controllers.SellerListRequests(svcs.Tradein, logg))
				r.Put("/{requestId}/bank-details", controllers.SellerUpdateBankDetails(svcs.Tradein, logg))
				r.Post("/{requestId}/decision", controllers.SellerDecision(svcs.Tradein, logg))
			})
		})

		r.Route("/rider", func(r chi.Router) {
			r.Use(middleware.RequireRole("rider", logg))
			r.Route("/requests", func(r chi.Router) {
				r.Get("/", controllers.RiderListAssigned(svcs.Tradein, logg))
				r.Post("/{requestId}/evidence", controllers.RiderAttachEvidence(svcs.Tradein, logg))
				r.Post("/{requestId}/verify", controllers.RiderVerify(svcs.Tradein, logg))
				r.Post("/{requestId}/reject", controllers.RiderReject(svcs.Tradein, logg))
				r.Post("/{requestId}/complete", controllers.RiderCompletePickup(svcs.Tradein, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Route("/requests", func(r chi.Router) {
				r.Get("/", controllers.AdminListRequests(svcs.Tradein, logg))
				r.Post("/{requestId}/approval", controllers.AdminApproval(svcs.Tradein, logg))
				r.Post("/{requestId}/assign", controllers.AdminAssignRider(svcs.Tradein, logg))
				r.Post("/{requestId}/settle", controllers.AdminSettlePayout(svcs.Tradein, logg))
			})
			r.Route("/catalog", func(r chi.Router) {
				r.Get("/", controllers.ListPhoneModels(svcs.Catalog, logg, false))
				r.Post("/", controllers.AdminCreatePhoneModel(svcs.Catalog, logg))
				r.Put("/{modelId}/price", controllers.AdminUpdatePhonePrice(svcs.Catalog, logg))
				r.Put("/{modelId}/active", controllers.AdminSetPhoneModelActive(svcs.Catalog, logg))
			})
			r.Route("/stock", func(r chi.Router) {
				r.Get("/", controllers.AdminListStock(svcs.Inventory, logg))
				r.Put("/{itemId}/status", controllers.AdminSetStockStatus(svcs.Inventory, logg))
			})
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", controllers.AdminListAlerts(svcs.Alerts, logg))
				r.Post("/{alertId}/read", controllers.AdminMarkAlertRead(svcs.Alerts, logg))
				r.Post("/read-all", controllers.AdminMarkAllAlertsRead(svcs.Alerts, logg))
			})
			r.Route("/users", func(r chi.Router) {
				r.Post("/", controllers.AdminCreateUser(svcs.Users, logg))
				r.Get("/riders", controllers.AdminListRiders(svcs.Users, logg))
				r.Put("/{userId}/active", controllers.AdminSetUserActive(svcs.Users, logg))
			})
		})
	})

	return r
}
