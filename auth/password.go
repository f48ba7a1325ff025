package auth

import (
	"strings"

	"github.com/rpupo63/portfolio-backend/errs"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Admin is the single principal allowed to mutate content.
type Admin struct {
	Email        string
	PasswordHash string
}

// Authenticate checks a login attempt against the configured admin.
// The hash comparison runs even when the email does not match.
func (a Admin) Authenticate(email, password string) error {
	if a.Email == "" {
		return errs.NewConfigError("ADMIN_EMAIL")
	}
	if a.PasswordHash == "" {
		return errs.NewConfigError("ADMIN_PASSWORD_HASH")
	}

	emailOK := strings.EqualFold(strings.TrimSpace(email), a.Email)
	passwordOK := CheckPassword(a.PasswordHash, password)
	if !emailOK || !passwordOK {
		return errs.NewInvalidCredentialsError()
	}
	return nil
}
