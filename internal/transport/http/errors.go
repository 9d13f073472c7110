package http

import (
	"errors"
	"net/http"

	"xuper/internal/domain"
	"xuper/internal/observability/middleware"
)

const (
	msgInternal       = "Error interno del servidor."
	msgBadRequest     = "Solicitud inválida."
	msgVerifyEmailOK  = "Se ha enviado un código de verificación al correo electrónico proporcionado."
	msgInvalidUserID  = "Identificador de usuario inválido."
	msgBackendRunning = "XUPER Backend is running"
)

type apiError struct {
	status  int
	message string
}

var knownErrors = []struct {
	err error
	apiError
}{
	{domain.ErrEmailAlreadyRegistered, apiError{http.StatusBadRequest, "El correo electrónico ya está registrado."}},
	{domain.ErrDuplicateEmail, apiError{http.StatusBadRequest, "El usuario ya existe con ese correo electrónico."}},
	{domain.ErrCodeNotFound, apiError{http.StatusBadRequest, "No existe un código de verificación para este correo. Solicita uno nuevo."}},
	{domain.ErrCodeExpired, apiError{http.StatusBadRequest, "El código de verificación ha expirado. Solicita uno nuevo."}},
	{domain.ErrCodeMismatch, apiError{http.StatusBadRequest, "Código de verificación inválido."}},
	{domain.ErrInvalidCredentials, apiError{http.StatusUnauthorized, "Correo electrónico o contraseña inválidos."}},
	{domain.ErrMissingAuthHeader, apiError{http.StatusUnauthorized, "No autorizado, no se proporcionó un token."}},
	{domain.ErrMalformedAuthHeader, apiError{http.StatusUnauthorized, "No autorizado, formato de token inválido."}},
	{domain.ErrInvalidToken, apiError{http.StatusUnauthorized, "No autorizado, token inválido."}},
	{domain.ErrExpiredToken, apiError{http.StatusUnauthorized, "No autorizado, el token ha expirado."}},
	{domain.ErrAccountNotFound, apiError{http.StatusUnauthorized, "No autorizado, usuario no encontrado."}},
	{domain.ErrUnauthenticated, apiError{http.StatusUnauthorized, "No autorizado."}},
	{domain.ErrEmailNotVerified, apiError{http.StatusForbidden, "Tu correo electrónico no ha sido verificado. Completa la verificación para iniciar sesión."}},
	{domain.ErrForbidden, apiError{http.StatusForbidden, "Acceso denegado, se requieren permisos de administrador."}},
}

// classify maps an error onto a status and a client-safe message. Anything
// unrecognised becomes a generic 500.
func classify(err error) apiError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return apiError{http.StatusBadRequest, verr.Message}
	}
	for _, k := range knownErrors {
		if errors.Is(err, k.err) {
			return k.apiError
		}
	}
	return apiError{http.StatusInternalServerError, msgInternal}
}

func writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	ae := classify(err)
	logger := middleware.Logger(r.Context())
	if ae.status >= http.StatusInternalServerError {
		logger.Error(op+" failed", "error", err)
	} else {
		logger.Warn(op+" rejected", "status", ae.status, "error", err)
	}
	writeJSON(w, ae.status, messageBody{Message: ae.message})
}

type messageBody struct {
	Message string `json:"message"`
}
