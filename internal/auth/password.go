package auth

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// WeakPasswordMessage is shown to clients whose password fails the policy.
const WeakPasswordMessage = "Invalid password format! Password should contain atleast one uppercase character, one number, one special character and length greater than 6 characters."

// ErrWeakPassword is returned by ValidatePassword.
var ErrWeakPassword = errors.New("password does not satisfy policy")

var (
	passwordCharset = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{6,}$`)
	passwordLower   = regexp.MustCompile(`[a-z]`)
	passwordUpper   = regexp.MustCompile(`[A-Z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSymbol  = regexp.MustCompile(`[@$!%*?&]`)
)

// ValidatePassword requires a lowercase letter, an uppercase letter, a digit
// and one of @$!%*?&, using only those character classes, at least 6 long.
func ValidatePassword(password string) error {
	if !passwordCharset.MatchString(password) ||
		!passwordLower.MatchString(password) ||
		!passwordUpper.MatchString(password) ||
		!passwordDigit.MatchString(password) ||
		!passwordSymbol.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword bcrypts password with the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
