package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RouterConfig carries the wired handlers and cross-cutting dependencies.
// Nil handlers leave their routes unregistered, which keeps router tests
// small.
type RouterConfig struct {
	Auth         *AuthHandler
	Events       *EventHandler
	Availability *AvailabilityHandler
	Assignments  *AssignmentHandler
	Fleet        *FleetHandler

	Sessions SessionValidator
	Metrics  http.Handler
	Logger   zerolog.Logger
}

// NewRouter assembles the full route tree. /healthz, /metrics, and /login
// stay public; everything else requires a valid session.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(cfg.Logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.Auth != nil {
		r.Post("/login", cfg.Auth.Login)
	}

	r.Group(func(pr chi.Router) {
		if cfg.Sessions != nil {
			pr.Use(RequireSession(cfg.Sessions))
		}

		if cfg.Auth != nil {
			pr.Post("/sessions/refresh", cfg.Auth.RefreshSession)
			pr.Delete("/sessions/current", cfg.Auth.RevokeCurrentSession)
			pr.Post("/operators", cfg.Auth.CreateOperator)
		}

		if cfg.Events != nil {
			pr.Route("/events", func(er chi.Router) {
				er.Post("/", cfg.Events.Create)
				er.Get("/", cfg.Events.List)
				er.Post("/recurring", cfg.Events.CreateRecurring)
				er.Route("/{id}", func(ir chi.Router) {
					ir.Get("/", cfg.Events.Get)
					ir.Delete("/", cfg.Events.Delete)
					ir.Post("/confirm", cfg.Events.Confirm)
					ir.Post("/begin", cfg.Events.Begin)
					ir.Post("/complete", cfg.Events.Complete)
					ir.Post("/cancel", cfg.Events.Cancel)
					ir.Post("/approve", cfg.Events.Approve)
					ir.Post("/reassign", cfg.Events.Reassign)

					if cfg.Assignments != nil {
						ir.Post("/assignments", cfg.Assignments.Assign)
						ir.Get("/assignments", cfg.Assignments.ListByEvent)
						ir.Put("/assignments/{studentID}", cfg.Assignments.Update)
						ir.Delete("/assignments/{studentID}", cfg.Assignments.Unassign)
					}
				})
			})
		}

		if cfg.Assignments != nil {
			pr.Post("/assignments/{id}/attendance", cfg.Assignments.ConfirmAttendance)
			pr.Get("/students/{id}/assignments", cfg.Assignments.ListByStudent)
		}

		if cfg.Availability != nil {
			pr.Get("/availability", cfg.Availability.Check)
			pr.Get("/availability/resources", cfg.Availability.FreePool)
			pr.Get("/schedule/conflicts", cfg.Availability.Conflicts)
		}

		if cfg.Fleet != nil {
			pr.Route("/vehicles", func(vr chi.Router) {
				vr.Post("/", cfg.Fleet.CreateVehicle)
				vr.Get("/", cfg.Fleet.ListVehicles)
				vr.Get("/{id}", cfg.Fleet.GetVehicle)
				vr.Put("/{id}", cfg.Fleet.UpdateVehicle)
				vr.Delete("/{id}", cfg.Fleet.DeleteVehicle)
			})
			pr.Route("/drivers", func(dr chi.Router) {
				dr.Post("/", cfg.Fleet.CreateDriver)
				dr.Get("/", cfg.Fleet.ListDrivers)
				dr.Get("/{id}", cfg.Fleet.GetDriver)
				dr.Put("/{id}", cfg.Fleet.UpdateDriver)
				dr.Delete("/{id}", cfg.Fleet.DeleteDriver)
			})
			pr.Route("/students", func(sr chi.Router) {
				sr.Post("/", cfg.Fleet.CreateStudent)
				sr.Get("/", cfg.Fleet.ListStudents)
				sr.Get("/{id}", cfg.Fleet.GetStudent)
				sr.Put("/{id}", cfg.Fleet.UpdateStudent)
				sr.Delete("/{id}", cfg.Fleet.DeleteStudent)
			})
		}
	})

	return r
}
