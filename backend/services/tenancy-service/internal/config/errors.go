package config

import "fmt"

func errMissing(key string) error {
	return fmt.Errorf("%s env var is missing", key)
}

func errInvalid(key string, value any) error {
	return fmt.Errorf("%s is invalid: %v", key, value)
}
