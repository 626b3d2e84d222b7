package authutil

import (
	"strings"
	"testing"
)

// Test isValidEmail helper function

func TestIsValidEmail_Valid(t *testing.T) {
	validEmails := []string{
		"test@example.com",
		"user@domain.org",
		"name.surname@company.co.uk",
		"a@b.co",
	}

	for _, email := range validEmails {
		if !isValidEmail(email) {
			t.Errorf("expected %q to be valid", email)
		}
	}
}

func TestIsValidEmail_Invalid(t *testing.T) {
	invalid := map[string]string{
		"testexample.com":   "missing @",
		"test@@example.com": "multiple @",
		"@example.com":      "empty local part",
		"test@example":      "no domain dot",
		"test@example.":     "dot at end",
		"test@.com":         "dot at start",
		"te st@example.com": "whitespace",
	}

	for email, why := range invalid {
		if isValidEmail(email) {
			t.Errorf("expected %q to be invalid (%s)", email, why)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail("  ada@example.com ")
	if err != nil || got != "ada@example.com" {
		t.Errorf("ValidateEmail = %q, %v", got, err)
	}
	if _, err := ValidateEmail("   "); err != ErrEmailRequired {
		t.Errorf("expected ErrEmailRequired, got %v", err)
	}
	if _, err := ValidateEmail("nope"); err != ErrEmailInvalid {
		t.Errorf("expected ErrEmailInvalid, got %v", err)
	}
}

// Test password validation

func TestValidatePassword_Valid(t *testing.T) {
	validPasswords := []string{
		"secret",
		"MyP@ssw0rd",
		strings.Repeat("a", MaxPasswordLength),
	}

	for _, pw := range validPasswords {
		if err := ValidatePassword(pw); err != nil {
			t.Errorf("expected %q to be valid, got error: %v", pw, err)
		}
	}
}

func TestValidatePassword_TooShort(t *testing.T) {
	for _, pw := range []string{"", "a", "abcde"} {
		if err := ValidatePassword(pw); err != ErrPasswordTooShort {
			t.Errorf("expected ErrPasswordTooShort for %q, got %v", pw, err)
		}
	}
}

func TestValidatePassword_TooLong(t *testing.T) {
	if err := ValidatePassword(strings.Repeat("a", MaxPasswordLength+1)); err != ErrPasswordTooLong {
		t.Errorf("expected ErrPasswordTooLong, got %v", err)
	}
}

// Test password hashing

func TestHashPassword_DifferentHashesForSamePassword(t *testing.T) {
	hash1, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	hash2, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("expected different hashes for same password (random salt)")
	}
	if !strings.HasPrefix(hash1, "$2") {
		t.Errorf("expected bcrypt hash, got %q", hash1)
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("SecurePassword123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPassword("SecurePassword123", hash) {
		t.Error("expected CheckPassword to return true for correct password")
	}
	if CheckPassword("WrongPassword456", hash) {
		t.Error("expected CheckPassword to return false for wrong password")
	}
	if CheckPassword("", hash) {
		t.Error("expected CheckPassword to return false for empty password")
	}
	if CheckPassword("password", "not-a-valid-hash") {
		t.Error("expected CheckPassword to return false for invalid hash")
	}
}

func TestPasswordRules(t *testing.T) {
	if !strings.Contains(PasswordRules(), "6") {
		t.Error("expected PasswordRules to mention minimum length of 6")
	}
}
