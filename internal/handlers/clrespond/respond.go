package clrespond

import (
	"errors"
	"net/http"

	"littlefolio/internal/models/clerrors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Enveloppe uniforme {success, data?, message?} pour toutes les réponses

func OK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

// Error traduit une erreur métier en réponse HTTP ; les erreurs inconnues
// deviennent un 500 sans détail interne en production
func Error(c *gin.Context, err error) {
	var appErr *clerrors.Error
	if errors.As(err, &appErr) {
		Fail(c, clerrors.HTTPStatus(appErr), appErr.Message)
		return
	}

	log.Error().
		Err(err).
		Str("path", c.Request.URL.Path).
		Str("method", c.Request.Method).
		Msg("unexpected error")

	message := "erreur interne"
	if gin.Mode() != gin.ReleaseMode {
		message = err.Error()
	}
	Fail(c, http.StatusInternalServerError, message)
}
