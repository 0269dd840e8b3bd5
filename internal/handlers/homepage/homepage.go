package handlers_homepage

import (
	"net/http"
	"strconv"

	"littlefolio/internal/handlers/clrespond"
	"littlefolio/internal/models/clerrors"
	"littlefolio/internal/models/clhomepage"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *clhomepage.Service
}

func New(service *clhomepage.Service) *Handler {
	return &Handler{service: service}
}

// GetActive retourne la configuration active, créée à la volée sur un
// store vide
func (h *Handler) GetActive(c *gin.Context) {
	config, err := h.service.GetActive(c.Request.Context())
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, config)
}

// All liste toutes les configurations (administration)
func (h *Handler) All(c *gin.Context) {
	configs, err := h.service.All(c.Request.Context())
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, configs)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	config, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, config)
}

func (h *Handler) Create(c *gin.Context) {
	var in clhomepage.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	config, err := h.service.Create(c.Request.Context(), &in)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusCreated, config)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	var in clhomepage.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	config, err := h.service.Update(c.Request.Context(), id, &in)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, config)
}

func (h *Handler) Activate(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	config, err := h.service.Activate(c.Request.Context(), id)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, config)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, gin.H{"deleted": id})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, clerrors.Validation("identifiant invalide: %s", c.Param("id"))
	}
	return uint(id), nil
}
