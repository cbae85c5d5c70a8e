package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Ghana vehicle registration: regional prefix, serial, year suffix,
	// e.g. GR 1234-23, AS 567-21.
	vehicleRegRegex = regexp.MustCompile(`^[A-Z]{2}\s?\d{1,4}-\d{2}$`)

	// Ghana Revenue Authority TIN: a letter class prefix followed by ten digits.
	ghanaTINRegex = regexp.MustCompile(`^[PCGQV]\d{10}$`)
)

// ValidateEmail checks if the email format is valid
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is empty")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateVehicleRegistration checks a Ghana DVLA vehicle registration number.
func ValidateVehicleRegistration(reg string) error {
	if reg == "" {
		return fmt.Errorf("vehicle registration is empty")
	}
	normalized := strings.ToUpper(strings.TrimSpace(reg))
	if !vehicleRegRegex.MatchString(normalized) {
		return fmt.Errorf("invalid vehicle registration format: %s", reg)
	}
	return nil
}

// ValidateGhanaTIN checks a Ghana Revenue Authority taxpayer identification number.
func ValidateGhanaTIN(tin string) error {
	if tin == "" {
		return fmt.Errorf("TIN is empty")
	}
	normalized := strings.ToUpper(strings.TrimSpace(tin))
	if !ghanaTINRegex.MatchString(normalized) {
		return fmt.Errorf("invalid TIN format: %s", tin)
	}
	return nil
}

// SanitizeString removes control characters and trims whitespace
func SanitizeString(s string) string {
	var builder strings.Builder
	for _, r := range s {
		if r >= 32 || r == '\t' || r == '\n' {
			builder.WriteRune(r)
		}
	}
	return strings.TrimSpace(builder.String())
}
