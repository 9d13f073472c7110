package config

import (
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ServiceAccount is the subset of a Firebase/Google service-account key the
// identity provider bootstrap needs.
type ServiceAccount struct {
	Type        string `json:"type"`
	ProjectID   string `json:"project_id"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

var ErrInvalidServiceAccount = errors.New("invalid service account")

// LoadServiceAccount accepts either a path to the key file or the JSON
// document itself, as set in FIREBASE_SERVICE_ACCOUNT.
func LoadServiceAccount(src string) (*ServiceAccount, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: empty source", ErrInvalidServiceAccount)
	}

	raw := []byte(src)
	if !strings.HasPrefix(src, "{") {
		b, err := os.ReadFile(src)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	var sa ServiceAccount
	if err := json.Unmarshal(raw, &sa); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServiceAccount, err)
	}
	// Keys pasted into env vars usually carry literal "\n".
	sa.PrivateKey = strings.ReplaceAll(sa.PrivateKey, `\n`, "\n")

	if err := sa.Validate(); err != nil {
		return nil, err
	}
	return &sa, nil
}

func (sa *ServiceAccount) Validate() error {
	var missing []string
	if sa.ProjectID == "" {
		missing = append(missing, "project_id")
	}
	if sa.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if sa.PrivateKey == "" {
		missing = append(missing, "private_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidServiceAccount, strings.Join(missing, ", "))
	}
	block, _ := pem.Decode([]byte(sa.PrivateKey))
	if block == nil || !strings.Contains(block.Type, "PRIVATE KEY") {
		return fmt.Errorf("%w: private_key is not a PEM private key", ErrInvalidServiceAccount)
	}
	return nil
}
