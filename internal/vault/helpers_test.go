package vault

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeVault serves the slice of the Vault HTTP API used by this package:
// KV v2 read, write and list, token lookup and AppRole login.
type fakeVault struct {
	mu      sync.Mutex
	secrets map[string]map[string]interface{}
	token   string
	denied  bool
}

func newFakeVault(t *testing.T) (*fakeVault, *httptest.Server) {
	t.Helper()
	t.Setenv("VAULT_TOKEN", "")

	fv := &fakeVault{secrets: map[string]map[string]interface{}{}, token: "s.valid"}
	srv := httptest.NewServer(http.HandlerFunc(fv.serve))
	t.Cleanup(srv.Close)

	return fv, srv
}

func (fv *fakeVault) serve(w http.ResponseWriter, r *http.Request) {
	fv.mu.Lock()
	defer fv.mu.Unlock()

	p := strings.TrimPrefix(r.URL.Path, "/v1/")

	if p == "auth/approle/login" {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["role_id"] != "role" || body["secret_id"] != "secret" {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": []string{"invalid role or secret ID"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"auth": map[string]interface{}{"client_token": fv.token}})
		return
	}

	if r.Header.Get("X-Vault-Token") != fv.token || fv.denied {
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"errors": []string{"permission denied"}})
		return
	}

	switch {
	case p == "auth/token/lookup-self":
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"ttl": 3600}})

	case strings.HasPrefix(p, "secret/metadata/") && r.URL.Query().Get("list") == "true":
		dir := strings.TrimPrefix(p, "secret/metadata/") + "/"
		var keys []string
		for key := range fv.secrets {
			if rest, ok := strings.CutPrefix(key, dir); ok && !strings.Contains(rest, "/") {
				keys = append(keys, rest)
			}
		}
		if len(keys) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]interface{}{"errors": []string{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"keys": keys}})

	case strings.HasPrefix(p, "secret/data/"):
		key := strings.TrimPrefix(p, "secret/data/")
		if r.Method == http.MethodGet {
			data, ok := fv.secrets[key]
			if !ok {
				writeJSON(w, http.StatusNotFound, map[string]interface{}{"errors": []string{}})
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"data": data}})
			return
		}
		var body struct {
			Data map[string]interface{} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": []string{err.Error()}})
			return
		}
		fv.secrets[key] = body.Data
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"version": 1}})

	default:
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"errors": []string{}})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
