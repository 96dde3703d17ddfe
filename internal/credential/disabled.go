package credential

import (
	"context"
	"fmt"
	"strings"

	"go.dot.industries/zcfg/internal/config"
)

// Disabled is the manager selected with --credential-manager none. It never
// initializes, so configurations load without secure values and refuse to
// write any.
type Disabled struct{}

func (Disabled) Name() string      { return "none" }
func (Disabled) Initialized() bool { return false }

func (Disabled) Load(context.Context, string) (string, error) {
	return "", &config.SecureUnavailableError{Manager: "none", Op: "load"}
}

func (Disabled) Save(context.Context, string, string) error {
	return &config.SecureUnavailableError{Manager: "none", Op: "save"}
}

// Kinds lists the manager names Open accepts.
var Kinds = []string{"keyring", "memory", "none"}

// Open returns the local manager named kind. service names the keyring
// service.
func Open(kind, service string) (config.Vault, error) {
	switch strings.ToLower(kind) {
	case "", "keyring":
		return NewKeyring(service), nil
	case "memory":
		return NewMemory(), nil
	case "none", "false":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown credential manager %q (want one of %s)", kind, strings.Join(Kinds, ", "))
	}
}
