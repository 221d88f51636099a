package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service performs authentication and token validation. The secondary store
// is nil unless fallback credentials were explicitly enabled in configuration;
// it is consulted only when the primary store has no matching user, never on
// store errors.
type Service struct {
	primary        CredentialStore
	secondary      CredentialStore
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(primary CredentialStore, secondary CredentialStore, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		primary:        primary,
		secondary:      secondary,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		TokenTTL: ttl,
	}
}

// Authenticate validates credentials and returns a signed token plus the
// identity embedded in it.
func (s *Service) Authenticate(dto LoginDTO) (*LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	username := dto.NormalizedUsername()

	cred, err := s.lookupCredential(username)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !cred.IsActive {
		s.logger.Warn("login rejected: account inactive", "username", username)
		return nil, ErrUserInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	identity := Identity{
		UserID:      cred.ID,
		Username:    cred.Username,
		Role:        cred.Role,
		Permissions: cred.Permissions,
	}

	token, err := s.tokenGenerator.GenerateToken(identity)
	if err != nil {
		return nil, err
	}

	s.logger.Info("login successful", "username", cred.Username, "role", cred.Role)

	return &LoginResponse{Token: token, User: identity}, nil
}

func (s *Service) lookupCredential(username string) (*Credential, error) {
	cred, err := s.primary.GetCredential(username)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, ErrCredentialNotFound) {
		return nil, err
	}
	if s.secondary == nil {
		return nil, ErrCredentialNotFound
	}
	cred, serr := s.secondary.GetCredential(username)
	if serr != nil {
		return nil, ErrCredentialNotFound
	}
	s.logger.Warn("authenticated against secondary credential source", "username", username)
	return cred, nil
}

// ValidateToken validates a session token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateToken signs the identity claims with an expiry.
func (j *JWTTokenGenerator) GenerateToken(identity Identity) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID:      identity.UserID,
		Username:    identity.Username,
		Role:        identity.Role,
		Permissions: identity.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   identity.Username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken verifies signature and expiry and returns the claims.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}
