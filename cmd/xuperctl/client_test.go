package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xuper/internal/dto"
)

func TestClientCallSendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/xuper/users" || r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode([]dto.AccountSummary{{AccountResponse: dto.AccountResponse{Email: "ana@example.com"}}})
	}))
	defer srv.Close()

	var out []dto.AccountSummary
	if err := newClient(srv.URL+"/", "tok").call("GET", "/xuper/users", nil, &out); err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(out) != 1 || out[0].Email != "ana@example.com" {
		t.Fatalf("unexpected body: %+v", out)
	}
}

func TestClientCallSurfacesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Correo electrónico o contraseña inválidos."}`))
	}))
	defer srv.Close()

	err := newClient(srv.URL, "").call("POST", "/xuper/login", dto.LoginRequest{Email: "a@b.co", Password: "x"}, nil)
	if err == nil || !strings.Contains(err.Error(), "401 Correo electrónico o contraseña inválidos.") {
		t.Fatalf("err = %v", err)
	}
}
