package auth

import (
	"errors"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal/permission"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the decoded, verified claim set for one request. It is never
// persisted and never mutated, only re-issued at login.
type Identity struct {
	UserID      int64          `json:"id"`
	Username    string         `json:"username"`
	Role        string         `json:"role"`
	Permissions permission.Set `json:"permissions"`
}

// Credential is the stored login record as seen by the auth service.
type Credential struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	Permissions  permission.Set
	IsActive     bool
}

// CredentialStore looks up login records. The primary implementation is the
// user repository; a static secondary source can be configured explicitly.
type CredentialStore interface {
	GetCredential(username string) (*Credential, error)
}

// TokenGenerator issues and verifies signed session tokens.
type TokenGenerator interface {
	GenerateToken(identity Identity) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims are the JWT claims carried by every session token.
type Claims struct {
	UserID      int64          `json:"user_id"`
	Username    string         `json:"username"`
	Role        string         `json:"role"`
	Permissions permission.Set `json:"permissions"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() Identity {
	return Identity{
		UserID:      c.UserID,
		Username:    c.Username,
		Role:        c.Role,
		Permissions: c.Permissions,
	}
}

type LoginResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

type JWTTokenGenerator struct {
	Secret   []byte
	TokenTTL time.Duration
}

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)
