package secret

import (
	"errors"
	"fmt"
	"strings"
)

// Store holds credentials for image generation backends.
type Store interface {
	Set(key string, value []byte) error

	// Get returns nil and no error when the key does not exist.
	Get(key string) ([]byte, error)

	Delete(key string) error
}

// ErrNotFound is returned by Resolve when a reference points at nothing.
var ErrNotFound = errors.New("secret not found")

// Resolve turns a config reference into a secret value. References are
// "env:NAME", "keychain:NAME" or a literal value.
func Resolve(ref string) (string, error) {
	return resolve(ref, map[string]Store{
		"env":      NewEnvStore(),
		"keychain": NewKeychainStore(),
	})
}

func resolve(ref string, stores map[string]Store) (string, error) {
	scheme, key, ok := strings.Cut(ref, ":")
	store, known := stores[scheme]
	if !ok || !known {
		return ref, nil
	}
	if key == "" {
		return "", fmt.Errorf("secret %q: empty key", ref)
	}
	v, err := store.Get(key)
	if err != nil {
		return "", fmt.Errorf("secret %q: %w", ref, err)
	}
	if len(v) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return string(v), nil
}
