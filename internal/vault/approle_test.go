package vault

import (
	"context"
	"testing"
)

func TestAppRoleAuth_EmptyRoleID(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:8200", "secret")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	err = AppRoleAuth(context.Background(), client, "", "some-secret-id")
	if err == nil {
		t.Fatal("expected error for empty role_id, got nil")
	}
}

func TestAppRoleAuth_EmptySecretID(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:8200", "secret")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	err = AppRoleAuth(context.Background(), client, "some-role-id", "")
	if err == nil {
		t.Fatal("expected error for empty secret_id, got nil")
	}
}

func TestAppRoleAuth(t *testing.T) {
	fv, srv := newFakeVault(t)

	client, err := NewClient(srv.URL, "secret")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	if err := AppRoleAuth(context.Background(), client, "role", "wrong"); err == nil {
		t.Fatal("expected error for a bad secret_id, got nil")
	}

	if err := AppRoleAuth(context.Background(), client, "role", "secret"); err != nil {
		t.Fatalf("AppRoleAuth() error: %v", err)
	}
	if client.Token() != fv.token {
		t.Errorf("Token() = %q, want %q", client.Token(), fv.token)
	}
}

func TestAppRoleAuth_NoServer(t *testing.T) {
	// With a non-reachable server, AppRoleAuth should return an error.
	client, err := NewClient("http://127.0.0.1:1", "secret")
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}

	err = AppRoleAuth(context.Background(), client, "role-id", "secret-id")
	if err == nil {
		t.Fatal("expected error for non-reachable server, got nil")
	}
}
