package http

import (
	"net/http"

	"habitboard/internal/transport/http/middleware"
)

// Router sets up HTTP routes
type Router struct {
	habitHandler   *HabitHandler
	statsHandler   *StatsHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
	mux            *http.ServeMux
}

// NewRouter creates a new router
func NewRouter(habitHandler *HabitHandler, statsHandler *StatsHandler, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter) *Router {
	return &Router{
		habitHandler:   habitHandler,
		statsHandler:   statsHandler,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		mux:            http.NewServeMux(),
	}
}

// Setup configures all routes
func (r *Router) Setup() http.Handler {
	auth := r.authMiddleware.Auth

	r.mux.HandleFunc("/api/v1/habits/create", auth(r.habitHandler.CreateHabits))
	r.mux.HandleFunc("/api/v1/habits/list", auth(r.habitHandler.ListHabits))
	r.mux.HandleFunc("/api/v1/habits/groups", auth(r.habitHandler.ListGroups))
	r.mux.HandleFunc("/api/v1/habits/toggle", auth(r.habitHandler.ToggleCompletion))
	r.mux.HandleFunc("/api/v1/habits/update", auth(r.habitHandler.UpdateHabit))
	r.mux.HandleFunc("/api/v1/habits/delete", auth(r.habitHandler.DeleteHabit))
	r.mux.HandleFunc("/api/v1/habits/delete-group", auth(r.habitHandler.DeleteGroup))

	r.mux.HandleFunc("/api/v1/stats/daily", auth(r.statsHandler.Daily))
	r.mux.HandleFunc("/api/v1/stats/range", auth(r.statsHandler.Range))
	r.mux.HandleFunc("/api/v1/stats/week-comparison", auth(r.statsHandler.WeekComparison))
	r.mux.HandleFunc("/api/v1/stats/breakdown", auth(r.statsHandler.Breakdown))
	r.mux.HandleFunc("/api/v1/stats/series", auth(r.statsHandler.Series))
	r.mux.HandleFunc("/api/v1/stats/calendar", auth(r.statsHandler.Calendar))
	r.mux.HandleFunc("/api/v1/streak", auth(r.statsHandler.Streak))

	r.mux.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	var handler http.Handler = r.mux
	handler = r.rateLimiter.Limit(handler)
	handler = middleware.Logging(handler)

	return handler
}
