package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	aadhaarRegex = regexp.MustCompile(`^[0-9]{12}$`)
	phoneRegex   = regexp.MustCompile(`^\+?[0-9 \-]{7,15}$`)
)

// ValidationError represents a validation error on a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks if a person or drive name is valid
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: field, Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: field, Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateRequired checks that a free-text field is non-empty
func ValidateRequired(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePhone checks a phone number loosely
func ValidatePhone(field, phone string) error {
	if !phoneRegex.MatchString(strings.TrimSpace(phone)) {
		return ValidationError{Field: field, Message: "invalid phone number"}
	}
	return nil
}

// ValidateAadhaar checks a 12-digit national identity number
func ValidateAadhaar(number string) error {
	if !aadhaarRegex.MatchString(strings.ReplaceAll(number, " ", "")) {
		return ValidationError{Field: "aadhaar_number", Message: "must be 12 digits"}
	}
	return nil
}

// ValidateDate checks that value is a YYYY-MM-DD calendar date
func ValidateDate(field, value string) error {
	if _, err := time.Parse(DateLayout, value); err != nil {
		return ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}

// ValidateLocality checks that value is one of the known localities
func ValidateLocality(field, value string) error {
	if !IsLocality(value) {
		return ValidationError{Field: field, Message: fmt.Sprintf("unknown locality %q", value)}
	}
	return nil
}

// ValidateFutureDate checks that value is a date strictly after today
func ValidateFutureDate(field, value string) error {
	if err := ValidateDate(field, value); err != nil {
		return err
	}
	if value <= Today() {
		return ValidationError{Field: field, Message: "must be a future date"}
	}
	return nil
}

// optional runs check only when value is set and non-empty
func optional(value *string, check func(string) error) error {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return check(*value)
}
