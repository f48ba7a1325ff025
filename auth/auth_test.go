package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rpupo63/portfolio-backend/errs"
	"golang.org/x/crypto/bcrypt"
)

func TestAdminAuthenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	admin := Admin{Email: "admin@example.com", PasswordHash: string(hash)}

	if err := admin.Authenticate(" Admin@Example.com ", "s3cret"); err != nil {
		t.Fatalf("valid login rejected: %v", err)
	}

	for name, tc := range map[string][2]string{
		"wrong password": {"admin@example.com", "nope"},
		"wrong email":    {"other@example.com", "s3cret"},
	} {
		t.Run(name, func(t *testing.T) {
			err := admin.Authenticate(tc[0], tc[1])
			if !errs.IsInvalidCredentialsError(err) || errs.StatusCode(err) != 401 {
				t.Fatalf("expected 401 invalid credentials, got %v", err)
			}
			if err.Error() != "Invalid email or password" {
				t.Fatalf("message = %q", err.Error())
			}
		})
	}

	t.Run("unconfigured", func(t *testing.T) {
		if err := (Admin{}).Authenticate("a", "b"); !errs.IsConfigError(err) {
			t.Fatalf("expected config error, got %v", err)
		}
	})
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "pw") || CheckPassword(hash, "other") {
		t.Fatal("CheckPassword disagrees with HashPassword")
	}
}

func TestTokenIssuer(t *testing.T) {
	if _, err := NewTokenIssuer("", time.Hour); !errs.IsConfigError(err) {
		t.Fatalf("empty secret should be a config error, got %v", err)
	}

	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	token, err := issuer.Issue("admin@example.com", RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	t.Run("valid", func(t *testing.T) {
		claims, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if claims.Subject != "admin@example.com" || claims.Role != RoleAdmin {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := *issuer
		later.now = func() time.Time { return now.Add(2 * time.Hour) }
		if _, err := later.Verify(token); !errs.IsExpiredTokenError(err) {
			t.Fatalf("expected expired token error, got %v", err)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, _ := NewTokenIssuer("other-secret", time.Hour)
		other.now = issuer.now
		if _, err := other.Verify(token); !errs.IsInvalidTokenError(err) {
			t.Fatalf("expected invalid token error, got %v", err)
		}
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "role": RoleAdmin}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		if _, err := issuer.Verify(unsigned); !errs.IsInvalidTokenError(err) {
			t.Fatalf("expected invalid token error, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := issuer.Verify("not-a-token"); !errs.IsInvalidTokenError(err) {
			t.Fatalf("expected invalid token error, got %v", err)
		}
	})
}
