package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/acmclub/ojrank/internal/logger"
	"github.com/acmclub/ojrank/internal/service"
)

type LeaderboardHandler struct {
	leaderboardService service.LeaderboardService
	aggregationService service.AggregationService
	logger             *logger.Logger
}

func NewLeaderboardHandler(
	leaderboardService service.LeaderboardService,
	aggregationService service.AggregationService,
	log *logger.Logger,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		aggregationService: aggregationService,
		logger:             log.With("component", "LeaderboardHandler"),
	}
}

func (h *LeaderboardHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/leaderboard", h.GetLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{id}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{id}", h.DeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/api/refresh", h.Refresh).Methods(http.MethodPost)
}

func (h *LeaderboardHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetLeaderboard serves the paginated listing.
// GET /api/leaderboard?page=1&pageSize=10&sortBy=score&search=xiao
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	query := service.ListQuery{
		Page:     intParam(r, "page", 1),
		PageSize: intParam(r, "pageSize", service.DefaultPageSize),
		SortBy:   r.URL.Query().Get("sortBy"),
		Search:   r.URL.Query().Get("search"),
	}

	result, err := h.leaderboardService.GetLeaderboard(r.Context(), query)
	if err != nil {
		h.logger.Error("Leaderboard listing failed", "error", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetUser serves a single roster entry.
// GET /api/users/{id}
func (h *LeaderboardHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	user, err := h.leaderboardService.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// DeleteUser removes a roster entry. Administrative; the daily pipeline
// never deletes anyone.
// DELETE /api/users/{id}
func (h *LeaderboardHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.aggregationService.DeleteUser(r.Context(), id); err != nil {
		h.logger.Error("User deletion failed", "error", err, "user_id", id)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// Refresh triggers the aggregation for today, e.g. after a failed scheduled
// run. The processed-day ledger makes a redundant trigger a no-op.
// POST /api/refresh
func (h *LeaderboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.aggregationService.RunToday(r.Context()); err != nil {
		h.logger.Error("Manual aggregation failed", "error", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
