package handlers

import (
	"net/http"

	"dispatchai-pro/internal/advice"
	"dispatchai-pro/internal/dispatch"
	"dispatchai-pro/internal/events"
	"dispatchai-pro/internal/hos"
	"dispatchai-pro/internal/middleware"
	"dispatchai-pro/internal/models"
	"dispatchai-pro/internal/store"
	"dispatchai-pro/internal/websocket"
	"dispatchai-pro/pkg/logger"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the services the HTTP API is built on
type Deps struct {
	Store    *store.Store
	Auth     *middleware.Authenticator
	Dispatch *dispatch.Service
	Workflow *hos.Workflow
	Advice   *advice.Service
	Events   events.Publisher
	Hub      *websocket.Hub // nil disables /ws
	Metrics  http.Handler   // nil disables /metrics
	Log      logger.Logger
}

func NewRouter(d Deps) http.Handler {
	pub := d.Events
	if pub == nil {
		pub = events.Nop
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	// WebSocket endpoint (authentication handled in handler via query param)
	if d.Hub != nil {
		r.Get("/ws", websocket.HandleWebSocket(d.Hub, d.Auth))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", Login(d.Store, d.Auth, d.Log))

		// Any signed-in user
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Auth)

			r.Get("/drivers", GetDrivers(d.Store))
			r.Get("/drivers/{id}", GetDriver(d.Store))
			r.Get("/loads", GetLoads(d.Store))
			r.Get("/loads/{id}", GetLoad(d.Store))
			r.Get("/dashboard/stats", GetDashboardStats(d.Store))
			r.Get("/alerts", GetAlerts(d.Store))
			r.Get("/tasks", GetTasks(d.Store))

			r.Get("/logs/{id}", GetLog(d.Store))
			r.Get("/logs/{id}/grid", GetLogGrid(d.Store))
			r.Get("/log-edits", GetLogEdits(d.Workflow))

			r.Post("/driver/fcm-token", RegisterFCMToken(d.Store, d.Log))
		})

		// Driver actions on their own records
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Auth)
			r.Use(middleware.RequireRole(models.RoleDriver))

			r.Post("/driver/logs/{id}/certify", CertifyLog(d.Store, d.Workflow))
			r.Post("/driver/logs/{id}/status", RecordDutyStatus(d.Store, d.Workflow))
			r.Post("/driver/log-edits/{id}/resolve", ResolveLogEdit(d.Store, d.Workflow))
		})

		// Dispatchers and safety admins
		r.Group(func(r chi.Router) {
			r.Use(d.Auth.Auth)
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Get("/dispatch/loads/{id}/recommendations", GetRecommendations(d.Dispatch))
			r.Post("/dispatch/assign", AssignLoad(d.Dispatch))

			r.Post("/logs/{id}/edits", ProposeLogEdit(d.Workflow))
			r.Post("/advice", GetAdvice(d.Store, d.Advice))

			r.Delete("/alerts/{id}", DismissAlert(d.Store, pub, d.Log))
			r.Post("/tasks", CreateTask(d.Store, pub, d.Log))
			r.Patch("/tasks/{id}/toggle", ToggleTask(d.Store, pub, d.Log))

			r.Get("/invoices", GetInvoices(d.Store))
			r.Patch("/invoices/{id}/status", UpdateInvoiceStatus(d.Store, pub, d.Log))

			r.Get("/unassigned-events", GetUnassignedEvents(d.Store))
			r.Post("/unassigned-events/{id}/assign", AssignUnassignedEvent(d.Workflow))
			r.Post("/unassigned-events/{id}/annotate", AnnotateUnassignedEvent(d.Workflow))
		})
	})

	return r
}
