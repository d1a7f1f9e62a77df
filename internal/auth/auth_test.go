package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"helio/pharmacy/domain"
)

func TestDirectory_Authenticate(t *testing.T) {
	d := NewDirectory()
	u, err := d.Register("Dr. Pharmacist", "Pharmacist@Helio.local", "demo1234", RolePharmacist)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID != 1 || u.Password == "demo1234" {
		t.Errorf("unexpected user %+v", u)
	}

	got, err := d.Authenticate("pharmacist@helio.local", "demo1234")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("expected user %d, got %d", u.ID, got.ID)
	}
	if _, err := d.Authenticate("pharmacist@helio.local", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := d.Authenticate("nobody@helio.local", "demo1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := d.Register("Dup", "pharmacist@helio.local", "x", RoleAssistant); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
	if _, err := d.Register("Bad", "bad@helio.local", "x", "owner"); err == nil {
		t.Error("expected role error")
	}
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret")
	d := NewDirectory()
	u, _ := d.Register("A", "a@helio.local", "pw", RoleAssistant)

	token, err := iss.Issue(u)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := iss.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != u.ID || claims.Role != RoleAssistant || claims.Email != "a@helio.local" {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := NewIssuer("other").Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
	if _, err := iss.Parse("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_Expired(t *testing.T) {
	iss := NewIssuer("secret")
	issued := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return issued }
	token, err := iss.Issue(domain.User{ID: 7, Role: RolePharmacist})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	iss.now = func() time.Time { return issued.Add(TokenTTL + time.Minute) }
	if _, err := iss.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to fail, got %v", err)
	}
}

func TestIssuer_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewIssuer("secret").Parse(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected HS512 token to be rejected, got %v", err)
	}
}
