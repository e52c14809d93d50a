/*
server.go - HTTP router and middleware configuration

ROUTER: chi. Middleware stack: request logging, panic recovery, request
IDs, CORS for a local frontend. No authentication middleware; this service
sits behind the platform's gateway.
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", h.CreateOrganization)
			r.Put("/{id}/pto-policy", h.SetPTOPolicy)
			r.Get("/{id}/employees", h.ListEmployees)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}/contract", h.SetContract)
			r.Post("/{id}/pause-events", h.AddPauseEvent)
			r.Post("/{id}/requests", h.CreateLeaveRequest)
			r.Post("/{id}/adjustments", h.CreateAdjustment)

			r.Get("/{id}/balance", h.GetBalance)
			r.Get("/{id}/balance/settlement", h.GetSettlementBalance)
			r.Get("/{id}/vacation", h.GetVacationDisplayInfo)
			r.Post("/{id}/can-request", h.CanRequestVacation)
		})

		r.Post("/seed", h.SeedDemo)
	})

	return r
}
