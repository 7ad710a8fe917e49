package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"travelink/internal/adminaction"
	"travelink/internal/api"
	"travelink/internal/approver"
	"travelink/internal/auth"
	"travelink/internal/budget"
	"travelink/internal/fleet"
	"travelink/internal/notification"
	"travelink/internal/request"
	"travelink/internal/user"
	"travelink/pkg/config"
	"travelink/pkg/sms"
)

type Dependencies struct {
	Cfg config.Config
	Log *zap.Logger
	DB  *pgxpool.Pool
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	usersRepo := user.NewRepository(deps.DB)
	budgetsRepo := budget.NewRepository(deps.DB)
	approversRepo := approver.NewRepository(deps.DB)
	requestsRepo := request.NewRepository(deps.DB)
	notificationsRepo := notification.NewRepository(deps.DB)
	fleetRepo := fleet.NewRepository(deps.DB)

	dispatcher := &notification.Dispatcher{
		Log:   deps.Log,
		Repo:  notificationsRepo,
		Users: usersRepo,
		SMS: sms.Client{
			GatewayURL: deps.Cfg.SMS.GatewayURL,
			APIKey:     deps.Cfg.SMS.APIKey,
			SenderName: deps.Cfg.SMS.SenderName,
		},
	}

	authHandlers := auth.Handlers{Cfg: deps.Cfg, Log: deps.Log, Users: usersRepo}
	requestHandlers := &request.Handlers{
		Cfg:       deps.Cfg,
		Log:       deps.Log,
		Requests:  requestsRepo,
		Users:     usersRepo,
		Budgets:   budgetsRepo,
		Approvers: approversRepo,
		Notify:    dispatcher,
	}
	fleetHandlers := fleet.Handlers{Log: deps.Log, Repo: fleetRepo, Requests: requestsRepo, Pool: deps.DB}
	adminHandlers := adminaction.Handlers{Log: deps.Log, Requests: requestsRepo, Pool: deps.DB}
	notificationHandlers := notification.Handlers{Cfg: deps.Cfg, Log: deps.Log, Repo: notificationsRepo}

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandlers.Login)

		// SMS gateway delivery callbacks are signed, not session-authed.
		r.Post("/sms/callback", notificationHandlers.SMSCallback)

		// Portal APIs consumed from the campus frontend domain.
		r.Group(func(r chi.Router) {
			r.Use(api.CORSMiddleware(api.CORSOptions{
				AllowedOrigins: deps.Cfg.PortalAllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization"},
				MaxAgeSeconds:  600,
			}))
			r.Use(auth.SessionAuth(deps.Cfg, usersRepo))

			r.Get("/me", authHandlers.Me)

			r.Post("/requests", requestHandlers.Submit)
			r.Get("/requests", requestHandlers.ListMine)
			r.Get("/requests/queue", requestHandlers.Queue)
			r.Get("/requests/{id}", requestHandlers.Get)
			r.Get("/requests/{id}/history", requestHandlers.History)
			r.Get("/requests/{id}/next-approver", requestHandlers.NextApprover)
			r.Post("/requests/{id}/approve", requestHandlers.Approve)
			r.Post("/requests/{id}/reject", requestHandlers.Reject)
			r.Post("/requests/{id}/cancel", adminHandlers.Cancel)
			r.Post("/requests/{id}/return", adminHandlers.Return)
			r.Post("/requests/{id}/override", adminHandlers.Override)
			r.Post("/requests/{id}/assign-vehicle", fleetHandlers.Assign)

			r.Get("/fleet/vehicles", fleetHandlers.ListVehicles)
			r.Get("/fleet/drivers", fleetHandlers.ListDrivers)

			r.Get("/notifications", notificationHandlers.ListMine)
		})
	})

	return r
}
