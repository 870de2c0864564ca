package config

import (
	"fmt"
	"strings"
)

// ValidateConfig checks that every value the server cannot run without is set.
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBUser == "" {
		errors = append(errors, "DB_USER (or db_user secret) is required")
	}
	if cfg.DBPassword == "" {
		errors = append(errors, "DB_PASSWORD (or db_password secret) is required")
	}
	if cfg.DBName == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET (or jwt_secret secret) is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}
