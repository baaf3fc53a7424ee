/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through zap
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/state, /api/settings   Whole-state access and global rules
  /api/employees/*            Roster, fulfillment, factors, overrides
  /api/departments/*          Department default structures
  /api/payouts/*              Payout runs and snapshots
  /api/scenarios/*            Demo scenarios
  /api/reset                  Database reset (dev only)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/incentive/serve.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.GetState)
		r.Put("/state", h.PutState)
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.CreateEmployee)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.UpdateEmployee)
			r.Delete("/{id}", h.DeleteEmployee)
			r.Put("/{id}/factors", h.SetFactors)
			r.Put("/{id}/fulfillment/{pillar}/{index}", h.SetFulfillment)
			r.Get("/{id}/pillars", h.GetPillars)
			r.Get("/{id}/score", h.GetScore)
			r.Get("/{id}/payout", h.GetPayout)
			r.Put("/{id}/override", h.SetOverride)
			r.Delete("/{id}/override", h.ClearOverride)
			pillarRoutes(r, "/{id}/override/pillars/{pillar}", h, overrideTarget)
		})

		// Department routes
		r.Route("/departments", func(r chi.Router) {
			r.Get("/", h.ListDepartments)
			pillarRoutes(r, "/{dept}/pillars/{pillar}", h, departmentTarget)
		})

		// Payout routes
		r.Route("/payouts", func(r chi.Router) {
			r.Get("/", h.ListPayouts)
			r.Post("/snapshots", h.CreateSnapshot)
			r.Get("/snapshots", h.ListSnapshots)
			r.Get("/snapshots/{id}", h.GetSnapshot)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})

		r.Post("/reset", h.ResetDatabase)
	})

	return r
}

// pillarRoutes mounts the pillar and goal edits for one kind of target.
func pillarRoutes(r chi.Router, prefix string, h *Handler, target targetFunc) {
	r.Put(prefix, h.UpdatePillar(target))
	r.Post(prefix+"/goals", h.AddGoal(target))
	r.Delete(prefix+"/goals/{index}", h.RemoveGoal(target))
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			zap.L().Info("http request",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
