package handlers_techstack

import (
	"net/http"
	"strconv"

	"littlefolio/internal/handlers/clrespond"
	"littlefolio/internal/models/clerrors"
	"littlefolio/internal/models/cltechstack"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *cltechstack.Service
}

func New(service *cltechstack.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	stacks, err := h.service.List(c.Request.Context())
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, stacks)
}

func (h *Handler) Create(c *gin.Context) {
	var in cltechstack.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	stack, err := h.service.Create(c.Request.Context(), &in)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusCreated, stack)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	var in cltechstack.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	stack, err := h.service.Update(c.Request.Context(), id, &in)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, stack)
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
