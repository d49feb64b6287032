package datastore

import "os"

// Secrets supplies named credentials to stores. A nil Secrets is valid
// and resolves everything from the environment.
type Secrets map[string]string

// GetOrEnv returns the named secret, falling back to the identically
// named environment variable when the secret is absent or empty.
func (s Secrets) GetOrEnv(name string) string {
	if v, ok := s[name]; ok && v != "" {
		return v
	}
	return os.Getenv(name)
}
