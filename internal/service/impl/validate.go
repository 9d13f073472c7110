package impl

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"xuper/internal/domain"
)

// validateAccountFields runs the format checks shared by self-service and
// admin registration. Presence has already been checked by the caller.
func validateAccountFields(name, email, password string) error {
	if len(password) < minPasswordLen {
		return validationErr("password", msgPasswordTooShort)
	}
	if len(password) > maxPasswordLen {
		return validationErr("password", msgPasswordTooLong)
	}
	if strings.IndexFunc(strings.TrimSpace(password), unicode.IsSpace) >= 0 {
		return validationErr("password", msgPasswordWhitespace)
	}
	if !domain.IsValidEmail(email) {
		return validationErr("email", msgInvalidEmail)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < minNameLen || n > maxNameLen {
		return validationErr("name", msgNameLength)
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
