package vault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	vaultapi "github.com/hashicorp/vault/api"
)

// ReadKV reads all key-value pairs at the given KV v2 path. The path is
// relative to the client's mount. For example, with mount "secret" and path
// "zowe/secure_config_props", the full API path is
// "secret/data/zowe/secure_config_props".
//
// Returns an empty map when the path does not exist (404).
// Returns a wrapped error on permission denied or other failures.
func (c *Client) ReadKV(ctx context.Context, kvPath string) (map[string]string, error) {
	fullPath := buildKV2Path(c.mount, kvPath)

	secret, err := c.inner.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		if isPermissionDenied(err) {
			return nil, fmt.Errorf("reading KV path %q: permission denied: %w", kvPath, err)
		}
		return nil, fmt.Errorf("reading KV path %q: %w", kvPath, err)
	}

	if secret == nil || secret.Data == nil {
		return make(map[string]string), nil
	}

	return extractKV2Data(secret.Data, kvPath)
}

// WriteKV replaces the key-value pairs at the given KV v2 path with data,
// creating a new secret version.
func (c *Client) WriteKV(ctx context.Context, kvPath string, data map[string]string) error {
	fullPath := buildKV2Path(c.mount, kvPath)

	payload := make(map[string]interface{}, len(data))
	for key, val := range data {
		payload[key] = val
	}

	_, err := c.inner.Logical().WriteWithContext(ctx, fullPath, map[string]interface{}{
		"data": payload,
	})
	if err != nil {
		if isPermissionDenied(err) {
			return fmt.Errorf("writing KV path %q: permission denied: %w", kvPath, err)
		}
		return fmt.Errorf("writing KV path %q: %w", kvPath, err)
	}

	return nil
}

// buildKV2Path constructs the full KV v2 API path by inserting "data" between
// the mount point and the secret path.
func buildKV2Path(mount string, kvPath string) string {
	return path.Join(mount, "data", kvPath)
}

// extractKV2Data parses the nested KV v2 response structure. The Vault KV v2
// API returns data in response.Data["data"] as a nested map.
func extractKV2Data(responseData map[string]interface{}, kvPath string) (map[string]string, error) {
	dataRaw, ok := responseData["data"]
	if !ok || dataRaw == nil {
		return make(map[string]string), nil
	}

	dataMap, ok := dataRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("reading KV path %q: unexpected data format", kvPath)
	}

	result := make(map[string]string, len(dataMap))
	for key, val := range dataMap {
		str, ok := val.(string)
		if !ok {
			continue
		}
		result[key] = str
	}

	return result, nil
}

// Entry represents a key or directory in the Vault KV tree.
type Entry struct {
	Name  string // e.g. "secure_config_props" or "zowe/"
	IsDir bool   // trailing "/" in Vault LIST response indicates a directory
}

// ListKeys lists keys and directories at a KV v2 metadata path. This uses the
// Vault LIST HTTP method on {mount}/metadata/{kvPath}. Keys ending with "/"
// are directories; others are leaf secrets.
//
// Requires the "list" capability on the metadata path. Returns an empty slice
// when the path does not exist.
func (c *Client) ListKeys(ctx context.Context, kvPath string) ([]Entry, error) {
	fullPath := buildKV2MetadataPath(c.mount, kvPath)

	secret, err := c.inner.Logical().ListWithContext(ctx, fullPath)
	if err != nil {
		if isPermissionDenied(err) {
			return nil, fmt.Errorf("listing KV path %q: permission denied: %w", kvPath, err)
		}
		return nil, fmt.Errorf("listing KV path %q: %w", kvPath, err)
	}

	if secret == nil || secret.Data == nil {
		return []Entry{}, nil
	}

	return parseListKeys(secret.Data, kvPath)
}

// buildKV2MetadataPath constructs the KV v2 metadata path for LIST operations.
func buildKV2MetadataPath(mount string, kvPath string) string {
	return path.Join(mount, "metadata", kvPath)
}

// parseListKeys extracts Entry items from the LIST response data.
// The Vault KV v2 LIST response returns keys in Data["keys"] as a []interface{}.
func parseListKeys(data map[string]interface{}, kvPath string) ([]Entry, error) {
	keysRaw, ok := data["keys"]
	if !ok {
		return []Entry{}, nil
	}

	keysList, ok := keysRaw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("listing KV path %q: unexpected keys format", kvPath)
	}

	entries := make([]Entry, 0, len(keysList))
	for _, k := range keysList {
		name, ok := k.(string)
		if !ok {
			continue
		}

		isDir := len(name) > 0 && name[len(name)-1] == '/'
		entries = append(entries, Entry{
			Name:  name,
			IsDir: isDir,
		})
	}

	return entries, nil
}

// isPermissionDenied checks whether a Vault API error is a 403 permission denied.
func isPermissionDenied(err error) bool {
	var respErr *vaultapi.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusForbidden
	}
	return false
}
