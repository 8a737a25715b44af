package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token namespaces. Each namespace has its own signing secret.
const (
	AudienceUser       = "dealerhub:user"
	AudienceSuperAdmin = "dealerhub:super-admin"
)

var (
	// ErrNotMine means the token was not signed with this verifier's secret;
	// the next verifier in a chain may still accept it.
	ErrNotMine = errors.New("token not signed by this verifier")
	// ErrInvalidToken means the signature matched but the token is expired,
	// not yet valid or carries the wrong claims. Chains stop here.
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrEmptySecretKey   = errors.New("secret key cannot be empty")
	ErrWeakSecretKey    = errors.New("secret key must be at least 32 characters")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrMissingAudience  = errors.New("audience cannot be empty")
	ErrMissingPrincipal = errors.New("subject cannot be empty")
)

// Claims are the session claims shared by both namespaces. TenantID and Role are
// only set on user tokens.
type Claims struct {
	TenantID       string `json:"tid,omitempty"`
	Role           string `json:"role,omitempty"`
	ImpersonatedBy string `json:"impersonatedBy,omitempty"`
	jwt.RegisteredClaims
}

// IsSuperAdmin reports whether the claims were issued in the super-admin namespace
func (c *Claims) IsSuperAdmin() bool {
	for _, a := range c.Audience {
		if a == AudienceSuperAdmin {
			return true
		}
	}
	return false
}

// Config represents one signing namespace
type Config struct {
	SecretKey string
	Audience  string
	Issuer    string
}

// TokenVerifier checks a raw token against one namespace
type TokenVerifier interface {
	Audience() string
	Verify(token string) (*Claims, error)
}

// Service signs and verifies tokens of a single namespace
type Service struct {
	config Config
	now    func() time.Time
}

// NewService creates a new JWT service
func NewService(config Config) (*Service, error) {
	if config.SecretKey == "" {
		return nil, ErrEmptySecretKey
	}
	if len(config.SecretKey) < 32 {
		return nil, ErrWeakSecretKey
	}
	if config.Audience == "" {
		return nil, ErrMissingAudience
	}
	return &Service{config: config, now: time.Now}, nil
}

// NewUserVerifier creates the service for tenant-user tokens
func NewUserVerifier(secret, issuer string) (*Service, error) {
	return NewService(Config{SecretKey: secret, Audience: AudienceUser, Issuer: issuer})
}

// NewSuperAdminVerifier creates the service for super-admin tokens
func NewSuperAdminVerifier(secret, issuer string) (*Service, error) {
	return NewService(Config{SecretKey: secret, Audience: AudienceSuperAdmin, Issuer: issuer})
}

// Audience returns the namespace of the service
func (s *Service) Audience() string { return s.config.Audience }

// Issue signs claims for subject, valid for ttl, and returns the token and its expiry
func (s *Service) Issue(subject string, claims Claims, ttl time.Duration) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, ErrMissingPrincipal
	}
	if ttl <= 0 {
		return "", time.Time{}, ErrInvalidDuration
	}
	now := s.now()
	exp := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.config.Issuer,
		Audience:  jwt.ClaimStrings{s.config.Audience},
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify validates a token. It returns ErrNotMine when the signature does not
// match this namespace's secret and ErrInvalidToken/ErrExpiredToken otherwise.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(s.config.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return []byte(s.config.SecretKey), nil
	}, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenMalformed),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return nil, ErrNotMine
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Chain tries verifiers in order. The first verifier that recognises the
// signature decides the outcome.
type Chain []TokenVerifier

// Verify returns the claims and the verifier that accepted them
func (c Chain) Verify(token string) (*Claims, TokenVerifier, error) {
	for _, v := range c {
		claims, err := v.Verify(token)
		if errors.Is(err, ErrNotMine) {
			continue
		}
		if err != nil {
			return nil, v, err
		}
		return claims, v, nil
	}
	return nil, nil, ErrInvalidToken
}
