package handlers_contact

import (
	"net/http"
	"strconv"

	"littlefolio/internal/handlers/clrespond"
	"littlefolio/internal/models/clcaptchas"
	"littlefolio/internal/models/clcontact"
	"littlefolio/internal/models/clerrors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service    *clcontact.Service
	captchas   *clcaptchas.Captchas
	production bool
}

func New(service *clcontact.Service, captchas *clcaptchas.Captchas, production bool) *Handler {
	return &Handler{
		service:    service,
		captchas:   captchas,
		production: production,
	}
}

type submitRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Subject       string `json:"subject"`
	Body          string `json:"body"`
	CaptchaID     string `json:"captcha_id"`
	CaptchaAnswer string `json:"captcha_answer"`
}

// Captcha génère un défi pour le formulaire de contact
func (h *Handler) Captcha(c *gin.Context) {
	data, err := h.captchas.GenerateCaptcha(h.production)
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, data)
}

// Submit vérifie le captcha puis enregistre le message
func (h *Handler) Submit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	if err := h.captchas.VerifyCaptcha(req.CaptchaID, req.CaptchaAnswer); err != nil {
		clrespond.Error(c, err)
		return
	}

	message, err := h.service.Create(c.Request.Context(), &clcontact.CreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusCreated, message)
}

// List retourne les messages reçus (administration)
func (h *Handler) List(c *gin.Context) {
	messages, err := h.service.List(c.Request.Context())
	if err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, messages)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		clrespond.Error(c, err)
		return
	}
	clrespond.OK(c, http.StatusOK, gin.H{"read": id})
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
