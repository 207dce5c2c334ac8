// Package secrets resolves provider credentials (Jooble, Web3Career and
// Gemini API keys, the Careerjet affiliate id) from either an inline config
// value or a file on disk.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes where one credential comes from.
type Source struct {
	// Name identifies the credential in error messages, e.g. "jooble api key".
	Name string
	// Value is the credential given inline via configuration or flags.
	Value string
	// File points to a file holding the credential, typically a mounted
	// secret. When set it takes precedence over Value.
	File string
}

// Load resolves the credential from src, preferring File over Value. The
// result is whitespace-trimmed. An error is returned when neither holds a
// usable value.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
		src.File = file
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if src.File != "" {
			return "", fmt.Errorf("%s file %q is empty", name, src.File)
		}
		return "", fmt.Errorf("%s is not configured", name)
	}

	return secret, nil
}
