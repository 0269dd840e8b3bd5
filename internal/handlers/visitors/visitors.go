package handlers_visitors

import (
	"net/http"
	"strconv"

	"littlefolio/internal/clmiddleware"
	"littlefolio/internal/handlers/clrespond"
	"littlefolio/internal/models/clvisitors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	tracker *clvisitors.TrackerService
}

func New(tracker *clvisitors.TrackerService) *Handler {
	return &Handler{tracker: tracker}
}

// Track enregistre le passage du client courant et retourne les compteurs
func (h *Handler) Track(c *gin.Context) {
	client := clvisitors.ClientContext{
		IP:        clmiddleware.ClientIP(c),
		UserAgent: c.Request.UserAgent(),
	}

	result, err := h.tracker.Track(c.Request.Context(), client)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, result)
}

// Count expose publiquement les compteurs agrégés, sans aucune donnée
// individuelle
func (h *Handler) Count(c *gin.Context) {
	counts, err := h.tracker.Counts(c.Request.Context())
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, counts)
}

// List retourne une page de visiteurs pour l'administration
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	result, err := h.tracker.List(c.Request.Context(), clvisitors.ListParams{
		Page:      page,
		PageSize:  pageSize,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, result)
}

// Snapshots retourne les instantanés journaliers des derniers jours
func (h *Handler) Snapshots(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	snapshots, err := h.tracker.Snapshots(c.Request.Context(), days)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, snapshots)
}

// Realtime retourne les compteurs du jour tenus dans Redis
func (h *Handler) Realtime(c *gin.Context) {
	stats, err := h.tracker.RealtimeStats(c.Request.Context())
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, stats)
}
