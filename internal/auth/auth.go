package auth

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"helio/pharmacy/domain"
)

const (
	RolePharmacist = "pharmacist"
	RoleAssistant  = "assistant"

	TokenTTL = 24 * time.Hour
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrDuplicateEmail     = errors.New("email already registered")
)

// Directory holds the staff accounts allowed to sign in.
type Directory struct {
	mu     sync.RWMutex
	users  map[string]domain.User
	nextID int64
}

func NewDirectory() *Directory {
	return &Directory{users: make(map[string]domain.User), nextID: 1}
}

// Register stores a user with a bcrypt hash of password.
func (d *Directory) Register(name, email, password, role string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.User{}, errors.New("email and password are required")
	}
	if role != RolePharmacist && role != RoleAssistant {
		return domain.User{}, errors.New("role must be pharmacist or assistant")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[email]; ok {
		return domain.User{}, ErrDuplicateEmail
	}
	u := domain.User{ID: d.nextID, Name: strings.TrimSpace(name), Email: email, Password: string(hashed), Role: role}
	d.nextID++
	d.users[email] = u
	return u, nil
}

// Lookup finds a user by email.
func (d *Directory) Lookup(email string) (domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[strings.ToLower(strings.TrimSpace(email))]
	return u, ok
}

// Authenticate checks password against the stored hash.
func (d *Directory) Authenticate(email, password string) (domain.User, error) {
	u, ok := d.Lookup(email)
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

type Claims struct {
	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 bearer tokens.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

func (i *Issuer) Issue(u domain.User) (string, error) {
	now := i.now()
	claims := Claims{
		UserID: u.ID,
		Role:   u.Role,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
