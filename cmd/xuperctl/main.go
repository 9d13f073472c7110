package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"xuper/internal/dto"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "request-code":
		err = runRequestCode(args)
	case "register":
		err = runRegister(args)
	case "login":
		err = runLogin(args)
	case "users":
		err = runUsers(args)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  request-code  Email a verification code to an address")
	fmt.Fprintln(os.Stderr, "  register      Create an account with a verification code")
	fmt.Fprintln(os.Stderr, "  login         Log in and print the access token")
	fmt.Fprintln(os.Stderr, "  users         List accounts (admin token required)")
	os.Exit(2)
}

func newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	baseURL := fs.String("base-url", getenv("XUPERCTL_BASE_URL", "http://localhost:5000"), "xuper base URL")
	return fs, baseURL
}

func runRequestCode(args []string) error {
	fs, baseURL := newFlagSet("request-code")
	email := fs.String("email", "", "address to verify")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*email) == "" {
		return fmt.Errorf("email is required")
	}

	var out dto.MessageResponse
	if err := newClient(*baseURL, "").call("POST", "/xuper/verify-email", dto.VerifyEmailRequest{Email: *email}, &out); err != nil {
		return err
	}
	return printJSON(out)
}

func runRegister(args []string) error {
	fs, baseURL := newFlagSet("register")
	var req dto.RegisterRequest
	fs.StringVar(&req.Name, "name", "", "display name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", getenv("XUPERCTL_PASSWORD", ""), "password")
	fs.StringVar(&req.VerificationCode, "code", "", "verification code received by email")
	fs.StringVar(&req.AdminCode, "admin-code", "", "admin registration code (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" || req.VerificationCode == "" {
		return fmt.Errorf("email, password and code are required")
	}

	var out dto.AccountResponse
	if err := newClient(*baseURL, "").call("POST", "/xuper/register", req, &out); err != nil {
		return err
	}
	return printJSON(out)
}

func runLogin(args []string) error {
	fs, baseURL := newFlagSet("login")
	var req dto.LoginRequest
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", getenv("XUPERCTL_PASSWORD", ""), "password")
	tokenOnly := fs.Bool("token-only", false, "print only the token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return fmt.Errorf("email and password are required")
	}

	var out dto.LoginResponse
	if err := newClient(*baseURL, "").call("POST", "/xuper/login", req, &out); err != nil {
		return err
	}
	if *tokenOnly {
		_, err := fmt.Fprintln(os.Stdout, out.Token)
		return err
	}
	return printJSON(out)
}

func runUsers(args []string) error {
	fs, baseURL := newFlagSet("users")
	token := fs.String("token", getenv("XUPERCTL_TOKEN", ""), "admin bearer token")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *token == "" {
		return fmt.Errorf("token is required")
	}

	var out []dto.AccountSummary
	if err := newClient(*baseURL, *token).call("GET", "/xuper/users", nil, &out); err != nil {
		return err
	}
	return printJSON(out)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
