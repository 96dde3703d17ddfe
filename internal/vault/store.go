package vault

import (
	"context"
	"path"
)

// valueKey is the KV field holding a stored payload.
const valueKey = "value"

// Store keeps secure configuration payloads in Vault, one KV v2 secret per
// account under dir. It satisfies config.Vault.
type Store struct {
	client *Client
	dir    string
}

// NewStore returns a Store writing below dir on the client's mount, e.g.
// dir "zowe" stores the account "secure_config_props" at
// "<mount>/data/zowe/secure_config_props".
func NewStore(client *Client, dir string) *Store {
	return &Store{client: client, dir: dir}
}

// Name identifies the backend in messages.
func (s *Store) Name() string {
	return "vault"
}

// Initialized reports whether the store has a client carrying a token. It
// does not contact the server.
func (s *Store) Initialized() bool {
	return s.client != nil && s.client.Token() != ""
}

// Load returns the payload stored for account, or "" when none is stored.
func (s *Store) Load(ctx context.Context, account string) (string, error) {
	data, err := s.client.ReadKV(ctx, s.secretPath(account))
	if err != nil {
		return "", err
	}
	return data[valueKey], nil
}

// Save stores payload for account.
func (s *Store) Save(ctx context.Context, account, payload string) error {
	return s.client.WriteKV(ctx, s.secretPath(account), map[string]string{valueKey: payload})
}

// Accounts lists the accounts stored below the store's directory.
func (s *Store) Accounts(ctx context.Context) ([]string, error) {
	entries, err := s.client.ListKeys(ctx, s.dir)
	if err != nil {
		return nil, err
	}

	accounts := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir {
			accounts = append(accounts, e.Name)
		}
	}
	return accounts, nil
}

func (s *Store) secretPath(account string) string {
	return path.Join(s.dir, account)
}
