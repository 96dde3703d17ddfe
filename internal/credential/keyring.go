// Package credential provides the local credential managers that hold the
// secure properties of a configuration: the OS keyring, an in-process
// memory store and a disabled manager.
package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// Keyring stores payloads in the OS keyring (macOS Keychain, Windows
// Credential Manager, Secret Service on Linux) under one service name.
type Keyring struct {
	service string

	checkOnce sync.Once
	available bool
}

// NewKeyring returns a keyring manager for service, e.g. "Zowe".
func NewKeyring(service string) *Keyring {
	return &Keyring{service: service}
}

// Name identifies the manager in messages.
func (k *Keyring) Name() string {
	return "keyring"
}

// Initialized reports whether the OS keyring answers. The first call checks
// it with a read; the result is cached.
func (k *Keyring) Initialized() bool {
	k.checkOnce.Do(func() {
		_, err := keyring.Get(k.service, pingAccount)
		k.available = err == nil || errors.Is(err, keyring.ErrNotFound)
	})
	return k.available
}

// Load returns the payload stored for account, or "" when none is stored.
func (k *Keyring) Load(_ context.Context, account string) (string, error) {
	payload, err := keyring.Get(k.service, account)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading %s/%s from keyring: %w", k.service, account, err)
	}
	return payload, nil
}

// Save stores payload for account.
func (k *Keyring) Save(_ context.Context, account, payload string) error {
	if err := keyring.Set(k.service, account, payload); err != nil {
		return fmt.Errorf("writing %s/%s to keyring: %w", k.service, account, err)
	}
	return nil
}

// Delete removes the payload stored for account. A missing entry is not an
// error.
func (k *Keyring) Delete(_ context.Context, account string) error {
	err := keyring.Delete(k.service, account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting %s/%s from keyring: %w", k.service, account, err)
	}
	return nil
}

// pingAccount is read to check keyring availability; it is never written.
const pingAccount = "zcfg_ping"
