package password

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const minLength = 8

// Hash hashes a plaintext password with bcrypt at the default cost.
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored bcrypt hash.
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// CheckStrength validates a password against the fixed rule set and returns
// every rule it fails. An empty list means the password is acceptable.
func CheckStrength(plain string) []string {
	var reasons []string
	if len(plain) < minLength {
		reasons = append(reasons, "password must be at least 8 characters long")
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range plain {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLower {
		reasons = append(reasons, "password must contain a lowercase letter")
	}
	if !hasUpper {
		reasons = append(reasons, "password must contain an uppercase letter")
	}
	if !hasDigit {
		reasons = append(reasons, "password must contain a digit")
	}
	return reasons
}
