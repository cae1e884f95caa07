// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("email is missing or invalid")
	}
	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}
	return nil
}

// ValidateName checks that a display name is present and within bounds
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("name must not exceed 100 characters")
	}
	return nil
}

// ValidatePassword checks if a password meets the minimum requirements
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is empty")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must have at least 6 characters")
	}
	if len(password) > 128 {
		return fmt.Errorf("password must not exceed 128 characters")
	}
	return nil
}

// ValidatePostInput checks a post submission before it reaches any component
func ValidatePostInput(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title field should not be empty")
	}
	if len(title) > 300 {
		return fmt.Errorf("title must not exceed 300 characters")
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("content field should not be empty")
	}
	if len(content) > 50000 {
		return fmt.Errorf("content must not exceed 50000 characters")
	}
	return nil
}
