package impl

import (
	"errors"

	"xuper/internal/domain"
)

// User-facing validation messages.
const (
	msgRegisterMissingFields = "Por favor, completa todos los campos obligatorios e incluye el código de verificación."
	msgMissingFields         = "Por favor, completa todos los campos obligatorios."
	msgMissingEmail          = "Por favor, ingresa un correo electrónico."
	msgInvalidEmail          = "Por favor, ingresa un correo electrónico válido."
	msgPasswordTooShort      = "La contraseña debe tener al menos 6 caracteres."
	msgPasswordTooLong       = "La contraseña no puede superar los 72 caracteres."
	msgPasswordWhitespace    = "La contraseña no debe contener espacios."
	msgNameLength            = "El nombre debe tener entre 2 y 50 caracteres."
	msgAccountMissing        = "El usuario no existe."
	msgDownloadFields        = "Por favor, indica el nombre y la versión del archivo."
	msgDownloadStatus        = "El estado de la descarga debe ser 'success' o 'failed'."
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt input limit, in bytes
	minNameLen     = 2
	maxNameLen     = 50
)

func validationErr(field, msg string) error { return domain.NewValidationError(field, msg) }

var ErrEmptyPassword = errors.New("empty password")
