package util

import "fmt"

// GetString returns the value under key as a string. Redis stream
// fields come back as any even though only strings are ever stored.
func GetString[K comparable](m map[K]any, key K) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("no %v field", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %v holds a %T, not a string", key, v)
	}
	return s, nil
}
