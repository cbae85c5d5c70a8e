package utils

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"ops@omcsuite.com", true},
		{"first.last+tag@sub.domain.gh", true},
		{"", false},
		{"not-an-email", false},
		{"missing@tld", false},
		{"@nouser.com", false},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if tt.valid && err != nil {
			t.Errorf("ValidateEmail(%q) = %v, want nil", tt.email, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", tt.email)
		}
	}
}

func TestValidateVehicleRegistration(t *testing.T) {
	tests := []struct {
		reg   string
		valid bool
	}{
		{"GR 1234-23", true},
		{"AS 567-21", true},
		{"GW123-20", true},
		{"gr 1234-23", true}, // normalized to upper case
		{"  GR 1234-23  ", true},
		{"", false},
		{"TRUCK-01", false},
		{"GR 12345-23", false},
		{"G 1234-23", false},
		{"GR 1234-2023", false},
	}

	for _, tt := range tests {
		err := ValidateVehicleRegistration(tt.reg)
		if tt.valid && err != nil {
			t.Errorf("ValidateVehicleRegistration(%q) = %v, want nil", tt.reg, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateVehicleRegistration(%q) = nil, want error", tt.reg)
		}
	}
}

func TestValidateGhanaTIN(t *testing.T) {
	tests := []struct {
		tin   string
		valid bool
	}{
		{"P0001234567", true},
		{"C9876543210", true},
		{"v0001234567", true}, // normalized to upper case
		{"", false},
		{"X0001234567", false},
		{"P000123456", false},
		{"P00012345678", false},
		{"P00O1234567", false},
	}

	for _, tt := range tests {
		err := ValidateGhanaTIN(tt.tin)
		if tt.valid && err != nil {
			t.Errorf("ValidateGhanaTIN(%q) = %v, want nil", tt.tin, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateGhanaTIN(%q) = nil, want error", tt.tin)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Star Energy Ltd  ", "Star Energy Ltd"},
		{"line1\nline2", "line1\nline2"},
		{"tab\tseparated", "tab\tseparated"},
		{"null\x00byte", "nullbyte"},
		{"bell\x07char", "bellchar"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := SanitizeString(tt.in); got != tt.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
