package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucasfarrell/wavecrest-backend/api/controllers"
	"github.com/lucasfarrell/wavecrest-backend/api/middleware"
	"github.com/lucasfarrell/wavecrest-backend/internal/assignments"
	"github.com/lucasfarrell/wavecrest-backend/internal/notifications"
	"github.com/lucasfarrell/wavecrest-backend/internal/swaps"
	"github.com/lucasfarrell/wavecrest-backend/internal/trips"
	"github.com/lucasfarrell/wavecrest-backend/internal/wallet"
	"github.com/lucasfarrell/wavecrest-backend/pkg/config"
	"github.com/lucasfarrell/wavecrest-backend/pkg/enums"
	"github.com/lucasfarrell/wavecrest-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	Assignments   assignments.Service
	Swaps         swaps.Service
	Trips         trips.Service
	Wallet        wallet.Service
	Notifications notifications.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/ping", controllers.PrivatePing())

		adminOnly := middleware.RequireAnyRole(logg,
			string(enums.ActorRoleAdmin), string(enums.ActorRoleBranchAdmin))

		r.Route("/trips", func(r chi.Router) {
			r.Post("/risk-check", controllers.TripRiskCheck(deps.Trips, logg))
			r.Route("/{tripId}", func(r chi.Router) {
				r.With(adminOnly).Post("/assignments", controllers.AssignGuides(deps.Assignments, logg))
				r.With(adminOnly).Post("/start", controllers.StartTrip(deps.Trips, logg))
				r.Get("/fee-split", controllers.FeeSplitPreview(deps.Wallet, logg))
				r.With(adminOnly).Post("/fee-split", controllers.FeeSplitExecute(deps.Wallet, logg))
				r.Post("/swaps", controllers.CreateSwap(deps.Swaps, logg))
			})
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/{assignmentId}/decision", controllers.DecideAssignment(deps.Assignments, logg))
		})

		r.Get("/swaps", controllers.ListMySwaps(deps.Swaps, logg))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/ledger", controllers.GuideLedger(deps.Wallet, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}
