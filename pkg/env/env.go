package env

import "os"

// Get returns the named environment variable, or fallback when it is
// unset or empty. Used before config loads, so it cannot depend on it.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
