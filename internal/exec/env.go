package exec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// OptionPrefix returns the environment variable prefix under which the CLI
// of app reads option values, e.g. "ZOWE_OPT_".
func OptionPrefix(app string) string {
	return strings.ToUpper(strings.ReplaceAll(app, "-", "_")) + "_OPT_"
}

// EnvName converts a camelCase property name to its environment variable
// name: rejectUnauthorized becomes <prefix>REJECT_UNAUTHORIZED.
func EnvName(prefix, prop string) string {
	var b strings.Builder
	b.WriteString(prefix)

	runes := []rune(prop)
	for i, r := range runes {
		switch {
		case r == '-' || r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]) && runes[i-1] != '-':
			b.WriteByte('_')
			b.WriteRune(r)
		default:
			b.WriteRune(unicode.ToUpper(r))
		}
	}

	return b.String()
}

// ProfileEnv maps the properties of a resolved profile to environment
// variables. Null properties are left out. The input map is not mutated.
func ProfileEnv(prefix string, props map[string]any) (map[string]string, error) {
	env := make(map[string]string, len(props))

	for name, val := range props {
		if val == nil {
			continue
		}
		s, err := envValue(val)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		env[EnvName(prefix, name)] = s
	}

	return env, nil
}

// envValue renders scalars as text and anything else as JSON.
func envValue(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}

	data, err := json.Marshal(val)
	if err != nil {
		return "", fmt.Errorf("encoding value: %w", err)
	}
	return string(data), nil
}
