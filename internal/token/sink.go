// Package token persists the Vault token used by the Vault credential
// backend between runs.
package token

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenFile = "vault-token"
	dirPerms  = 0700
	filePerms = 0600

	// EnvToken overrides the sink when set.
	EnvToken = "VAULT_TOKEN"
)

// ErrNoToken is returned when neither the environment nor the sink holds a
// token.
var ErrNoToken = errors.New("no vault token; run `vault login` first")

// Sink is a token file inside the application home directory.
type Sink struct {
	path string
}

// NewSink returns the sink at <homeDir>/vault-token.
func NewSink(homeDir string) *Sink {
	return &Sink{path: filepath.Join(homeDir, tokenFile)}
}

// Path returns the sink file path.
func (s *Sink) Path() string {
	return s.path
}

// Read reads the token from the sink file. Returns an error if the file does
// not exist or the token is empty.
func (s *Sink) Read() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}

	tok := strings.TrimSpace(string(data))
	if tok == "" {
		return "", fmt.Errorf("read token: %s is empty", s.path)
	}

	return tok, nil
}

// Write writes the token with 0600 permissions, creating the home directory
// with 0700 permissions if it does not exist.
func (s *Sink) Write(token string) error {
	dir := filepath.Dir(s.path)

	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return fmt.Errorf("write token: create directory: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(token+"\n"), filePerms); err != nil {
		return fmt.Errorf("write token: %w", err)
	}

	return nil
}

// Remove deletes the sink file. Returns nil if the file does not exist.
func (s *Sink) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

// Resolve returns the token from $VAULT_TOKEN, falling back to the sink.
func (s *Sink) Resolve() (string, error) {
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		return tok, nil
	}

	tok, err := s.Read()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", err
	}

	return tok, nil
}
