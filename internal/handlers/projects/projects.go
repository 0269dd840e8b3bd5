package handlers_projects

import (
	"net/http"
	"strconv"

	"littlefolio/internal/handlers/clrespond"
	"littlefolio/internal/models/clerrors"
	"littlefolio/internal/models/climages"
	"littlefolio/internal/models/clprojects"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service    *clprojects.Service
	uploadsDir string
}

func New(service *clprojects.Service, uploadsDir string) *Handler {
	return &Handler{
		service:    service,
		uploadsDir: uploadsDir,
	}
}

// List retourne les projets publiés (vitrine publique)
func (h *Handler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context(), true)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, projects)
}

// ListAll retourne tous les projets, brouillons compris (administration)
func (h *Handler) ListAll(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context(), false)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, projects)
}

func (h *Handler) BySlug(c *gin.Context) {
	project, err := h.service.BySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, project)
}

func (h *Handler) Create(c *gin.Context) {
	var in clprojects.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	project, err := h.service.Create(c.Request.Context(), &in)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusCreated, project)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	var in clprojects.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	project, err := h.service.Update(c.Request.Context(), id, &in)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, project)
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

// Screenshot reçoit une capture d'écran multipart, la redimensionne et
// l'associe au projet
func (h *Handler) Screenshot(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	file, header, err := c.Request.FormFile("screenshot")
	if err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "fichier screenshot manquant")
		return
	}
	defer file.Close()

	filename, err := climages.ProcessUpload(file, header, h.uploadsDir)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	project, err := h.service.SetScreenshot(c.Request.Context(), id, "/uploads/"+filename)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, project)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, clerrors.Validation("identifiant invalide: %s", c.Param("id"))
	}
	return uint(id), nil
}
