package handlers_auth

import (
	"net/http"

	"littlefolio/internal/handlers/clrespond"
	"littlefolio/internal/models/clauth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	auth *clauth.Service
}

func New(auth *clauth.Service) *Handler {
	return &Handler{auth: auth}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login vérifie les identifiants et délivre un token bearer
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		clrespond.Fail(c, http.StatusBadRequest, "corps de requête invalide")
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		clrespond.Error(c, err)
		return
	}

	clrespond.OK(c, http.StatusOK, gin.H{"token": token})
}

// Me confirme la validité du token courant et retourne l'identité
func (h *Handler) Me(c *gin.Context) {
	username, _ := c.Get("username")
	clrespond.OK(c, http.StatusOK, gin.H{
		"username": username,
		"role":     "admin",
	})
}
