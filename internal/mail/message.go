// Package mail delivers verification codes through Brevo's transactional
// API, a plain SMTP relay, or the log in development.
package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"
)

const Subject = "Código de verificación XUPER"

//go:embed templates/*.html
var templateFS embed.FS

var verificationTmpl = template.Must(template.ParseFS(templateFS, "templates/verification_code.html"))

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// VerificationMessage renders the code email for to. ttl is shown to the
// user in whole minutes.
func VerificationMessage(to, code string, ttl time.Duration, now time.Time) (Message, error) {
	minutes := int(ttl.Minutes())
	var buf bytes.Buffer
	err := verificationTmpl.Execute(&buf, struct {
		Code       string
		TTLMinutes int
		Year       int
	}{Code: code, TTLMinutes: minutes, Year: now.Year()})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: Subject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf("Tu código de verificación de Xuper es %s. Expira en %d minutos.", code, minutes),
	}, nil
}
