package clerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classe les erreurs métier pour la traduction HTTP
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error est une erreur métier portant sa classe et un message lisible
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, format string, a ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, a...),
	}
}

// Validation : entrée malformée ou hors politique (400)
func Validation(format string, a ...any) *Error {
	return newError(KindValidation, format, a...)
}

// Unauthorized : token absent, invalide ou expiré (401)
func Unauthorized(format string, a ...any) *Error {
	return newError(KindUnauthorized, format, a...)
}

// Forbidden : token valide mais rôle insuffisant (403)
func Forbidden(format string, a ...any) *Error {
	return newError(KindForbidden, format, a...)
}

// NotFound : l'identifiant ne résout rien (404)
func NotFound(format string, a ...any) *Error {
	return newError(KindNotFound, format, a...)
}

// Conflict : état invalide ou violation d'unicité (409)
func Conflict(format string, a ...any) *Error {
	return newError(KindConflict, format, a...)
}

// IsKind teste la classe d'une erreur, y compris wrappée
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus traduit une erreur métier en code HTTP, 500 par défaut
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}

	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
