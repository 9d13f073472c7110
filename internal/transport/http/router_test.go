package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"xuper/internal/downloads"
	"xuper/internal/dto"
	"xuper/internal/events"
	"xuper/internal/service/impl"
	"xuper/internal/store"
	xhttp "xuper/internal/transport/http"
	"xuper/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminCode = "let-me-admin"

type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (c *captureMailer) SendVerificationCode(_ context.Context, to, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codes[to] = code
	return nil
}

func (c *captureMailer) code(email string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.codes[email]
}

type testServer struct {
	handler http.Handler
	mailer  *captureMailer
}

func newTestServer(t *testing.T, opts xhttp.Options) *testServer {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	gdb, err := db.OpenGorm(db.Config{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	st := store.New(gdb)
	require.NoError(t, st.Migrate(context.Background()))

	mailer := &captureMailer{codes: map[string]string{}}
	accounts := st.Accounts()
	verification := impl.NewVerificationServiceImpl(accounts, st.Verifications(), mailer, 0, "test")
	tokens := impl.NewTokenServiceHS256(impl.TokenConfig{SigningKey: []byte("test-secret")}, accounts)
	auth := impl.NewAuthServiceImpl(accounts, st.Downloads(), verification,
		impl.NewPasswordServiceBcrypt(4), tokens, events.Discard{}, adminCode)
	catalog := downloads.StaticSource{
		BaseURL: "https://cdn.example.com/releases",
		Artifacts: []downloads.Artifact{
			{FileName: "xuper-setup.exe", FileVersion: "1.2.0", Platform: "windows", Key: "xuper-setup-1.2.0.exe"},
		},
	}

	if opts.TokenTTL == 0 {
		opts.TokenTTL = impl.DefaultTokenTTL
	}
	h := xhttp.NewRouter(xhttp.Services{
		Auth:         auth,
		Verification: verification,
		Downloads:    impl.NewDownloadServiceImpl(st.Downloads(), catalog, events.Discard{}),
		Tokens:       tokens,
	}, opts)
	return &testServer{handler: h, mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

// signUp runs request-code, register and login and returns the login body.
func (s *testServer) signUp(t *testing.T, name, email, admin string) dto.LoginResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/xuper/verify-email", "", dto.VerifyEmailRequest{Email: email})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/xuper/register", "", dto.RegisterRequest{
		Name: name, Email: email, Password: "secret1",
		VerificationCode: s.mailer.code(email), AdminCode: admin,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/xuper/login", "", dto.LoginRequest{Email: email, Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[dto.LoginResponse](t, rec)
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t, xhttp.Options{})

	rec := s.do(t, http.MethodGet, "/xuper/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "XUPER Backend is running", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterLoginAndAdminGate(t *testing.T) {
	s := newTestServer(t, xhttp.Options{AuthCookie: true})

	rec := s.do(t, http.MethodPost, "/xuper/verify-email", "", dto.VerifyEmailRequest{Email: "  Ana@Example.com "})
	require.Equal(t, http.StatusOK, rec.Code)
	msg := decode[dto.MessageResponse](t, rec)
	assert.Equal(t, "Se ha enviado un código de verificación al correo electrónico proporcionado.", msg.Message)
	code := s.mailer.code("ana@example.com")
	require.Len(t, code, 6)

	rec = s.do(t, http.MethodPost, "/xuper/register", "", dto.RegisterRequest{
		Name: "Ana", Email: "ana@example.com", Password: "secret1", VerificationCode: code,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[dto.AccountResponse](t, rec)
	assert.Equal(t, "user", created.Role)
	assert.Equal(t, "ana@example.com", created.Email)
	assert.NotEmpty(t, created.ID)

	rec = s.do(t, http.MethodPost, "/xuper/login", "", dto.LoginRequest{Email: "ANA@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			cookie = c
		}
	}
	login := decode[dto.LoginResponse](t, rec)
	assert.Equal(t, created.ID, login.ID)
	require.NotEmpty(t, login.Token)
	require.NotNil(t, cookie)
	assert.Equal(t, login.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), cookie.MaxAge)

	rec = s.do(t, http.MethodGet, "/xuper/users", login.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Acceso denegado, se requieren permisos de administrador.", decode[dto.MessageResponse](t, rec).Message)
}

func TestRequestCodeAndRegisterErrors(t *testing.T) {
	s := newTestServer(t, xhttp.Options{})
	s.signUp(t, "Ana", "ana@example.com", "")

	rec := s.do(t, http.MethodPost, "/xuper/verify-email", "", dto.VerifyEmailRequest{Email: "ana@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "El correo electrónico ya está registrado.", decode[dto.MessageResponse](t, rec).Message)

	rec = s.do(t, http.MethodPost, "/xuper/register", "", dto.RegisterRequest{
		Name: "Bob", Email: "bob@example.com", Password: "secret1", VerificationCode: "123456",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No existe un código de verificación para este correo. Solicita uno nuevo.",
		decode[dto.MessageResponse](t, rec).Message)
}

func TestRegisterAcceptsNumericCode(t *testing.T) {
	s := newTestServer(t, xhttp.Options{})

	rec := s.do(t, http.MethodPost, "/xuper/verify-email", "", dto.VerifyEmailRequest{Email: "n@b.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	code, err := strconv.Atoi(s.mailer.code("n@b.com"))
	require.NoError(t, err)

	rec = s.do(t, http.MethodPost, "/xuper/register", "", map[string]any{
		"name": "Nico", "email": "n@b.com", "password": "secret1", "verificationCode": code,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "user", decode[dto.AccountResponse](t, rec).Role)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t, xhttp.Options{})
	s.signUp(t, "Ana", "ana@example.com", "")

	unknown := s.do(t, http.MethodPost, "/xuper/login", "", dto.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	wrong := s.do(t, http.MethodPost, "/xuper/login", "", dto.LoginRequest{Email: "ana@example.com", Password: "secret2"})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
	assert.Contains(t, unknown.Body.String(), "Correo electrónico o contraseña inválidos.")
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	s := newTestServer(t, xhttp.Options{})

	req := httptest.NewRequest(http.MethodPost, "/xuper/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/xuper/register", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthenticationGate(t *testing.T) {
	s := newTestServer(t, xhttp.Options{})

	cases := []struct {
		name   string
		header string
		msg    string
	}{
		{"missing", "", "No autorizado, no se proporcionó un token."},
		{"wrong scheme", "Token abc", "No autorizado, formato de token inválido."},
		{"bearer without token", "Bearer ", "No autorizado, formato de token inválido."},
		{"garbage token", "Bearer not-a-jwt", "No autorizado, token inválido."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/xuper/download", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tc.msg, decode[dto.MessageResponse](t, rec).Message)
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t, xhttp.Options{})
	admin := s.signUp(t, "Root", "root@example.com", adminCode)
	require.Equal(t, "admin", admin.Role)
	user := s.signUp(t, "Ana", "ana@example.com", "")

	rec := s.do(t, http.MethodGet, "/xuper/users", admin.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	list := decode[[]dto.AccountSummary](t, rec)
	assert.Len(t, list, 2)

	rec = s.do(t, http.MethodPost, "/xuper/register/admin", admin.Token, dto.AdminRegisterRequest{
		Name: "Second", Email: "second@example.com", Password: "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "admin", decode[dto.AccountResponse](t, rec).Role)

	rec = s.do(t, http.MethodPost, "/xuper/register/admin", user.Token, dto.AdminRegisterRequest{
		Name: "Third", Email: "third@example.com", Password: "secret1",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodDelete, "/xuper/users/not-a-uuid", admin.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/xuper/users/"+user.ID, admin.Token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/xuper/download", user.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No autorizado, usuario no encontrado.", decode[dto.MessageResponse](t, rec).Message)
}

func TestDownloadRoutes(t *testing.T) {
	s := newTestServer(t, xhttp.Options{})
	user := s.signUp(t, "Ana", "ana@example.com", "")

	rec := s.do(t, http.MethodGet, "/xuper/download", user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	links := decode[dto.DownloadLinksResponse](t, rec)
	require.Len(t, links.Downloads, 1)
	assert.Equal(t, "https://cdn.example.com/releases/xuper-setup-1.2.0.exe", links.Downloads[0].URL)

	rec = s.do(t, http.MethodPost, "/xuper/download", user.Token, dto.RecordDownloadRequest{
		FileName: "xuper-setup.exe", FileVersion: "1.2.0", Status: "success",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	recorded := decode[dto.DownloadResponse](t, rec)
	assert.Equal(t, user.ID, recorded.AccountID)
	assert.Equal(t, "192.0.2.1", recorded.IPAddress)
	assert.Equal(t, "desktop", recorded.DeviceType)

	rec = s.do(t, http.MethodPost, "/xuper/download", user.Token, dto.RecordDownloadRequest{
		FileName: "xuper-setup.exe", FileVersion: "1.2.0", Status: "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/xuper/download/history", user.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[dto.DownloadHistoryResponse](t, rec)
	require.Len(t, history.Downloads, 1)
	assert.Equal(t, recorded.ID, history.Downloads[0].ID)
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newTestServer(t, xhttp.Options{RateLimitPerMinute: 2})

	for i := 0; i < 2; i++ {
		rec := s.do(t, http.MethodPost, "/xuper/login", "", dto.LoginRequest{Email: "x@example.com", Password: "secret1"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/xuper/login", "", dto.LoginRequest{Email: "x@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// other routes are not limited
	rec = s.do(t, http.MethodGet, "/xuper/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
