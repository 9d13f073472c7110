package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"xuper/internal/dto"
	"xuper/internal/netutil"
	"xuper/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

const tokenCookieName = "token"

type Handler struct {
	auth         service.AuthService
	verification service.VerificationService
	downloads    service.DownloadService

	// cookie settings for the login response
	setCookie    bool
	secureCookie bool
	cookieTTL    time.Duration
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msgBackendRunning))
}

func (h *Handler) handleRequestCode(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.verification.RequestCode(r.Context(), req.Email); err != nil {
		writeError(w, r, "request verification code", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: msgVerifyEmailOK})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminRegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.auth.RegisterAdmin(r.Context(), req)
	if err != nil {
		writeError(w, r, "register admin", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, "login", err)
		return
	}
	if h.setCookie {
		http.SetCookie(w, &http.Cookie{
			Name:     tokenCookieName,
			Value:    resp.Token,
			Path:     "/",
			MaxAge:   int(h.cookieTTL / time.Second),
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteStrictMode,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.auth.ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, "list accounts", err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (h *Handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageBody{Message: msgInvalidUserID})
		return
	}
	if err := h.auth.DeleteAccount(r.Context(), id); err != nil {
		writeError(w, r, "delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDownloadLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.downloads.Links(r.Context())
	if err != nil {
		writeError(w, r, "download links", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DownloadLinksResponse{Downloads: links})
}

func (h *Handler) handleRecordDownload(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req dto.RecordDownloadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.downloads.Record(r.Context(), p.AccountID, req, netutil.ClientIP(r), r.UserAgent())
	if err != nil {
		writeError(w, r, "record download", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleDownloadHistory(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	history, err := h.downloads.History(r.Context(), p.AccountID)
	if err != nil {
		writeError(w, r, "download history", err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DownloadHistoryResponse{Downloads: history})
}

// decodeJSON writes the 400 itself and reports whether the handler may go on.
// An empty body decodes to the zero value so field validation can answer.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, messageBody{Message: msgBadRequest})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
