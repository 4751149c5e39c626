package jwtutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Token type markers carried in the claims so a refresh token can never be
// presented as an access token.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	// ErrExpiredToken marks a structurally valid token past its expiry.
	ErrExpiredToken = errors.New("token expired")
	// ErrInvalidToken marks every other validation failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrAudienceMismatch marks a domain-bound token presented from the
	// wrong hostname.
	ErrAudienceMismatch = errors.New("token not valid for this domain")
)

// Config holds JWT configuration.
type Config struct {
	SigningKey string
	// Issuer is the platform apex domain stamped on every token.
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims represents the JWT claims for user authentication. Tokens are
// domain-bound: Audience holds the hostname the token may be validated
// against.
type Claims struct {
	UserID        uint   `json:"user_id"`
	Role          string `json:"role"`
	PartnerID     *uint  `json:"partner_id,omitempty"`
	PartnerDomain string `json:"partner_domain,omitempty"`
	TenantPrefix  string `json:"tenant_prefix"`
	IsRootUser    bool   `json:"is_root_user"`
	SessionID     string `json:"session_id"`
	TokenType     string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the access/refresh pair returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`
}

// JWT is a utility for domain-bound token operations.
type JWT struct {
	config *Config
}

// New creates a new JWT utility with the given configuration.
func New(config *Config) *JWT {
	return &JWT{config: config}
}

// Subject captures everything about the authenticated user that ends up in
// the claims.
type Subject struct {
	UserID        uint
	Role          string
	PartnerID     *uint
	PartnerDomain string
	TenantPrefix  string
	IsRootUser    bool
	SessionID     string
	// Audience is the hostname this token is bound to; root users get the
	// platform issuer domain.
	Audience string
}

// GeneratePair issues an access/refresh token pair sharing the same session
// id and audience.
func (j *JWT) GeneratePair(sub Subject) (*TokenPair, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	access, err := j.sign(sub, TokenTypeAccess, j.config.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := j.sign(sub, TokenTypeRefresh, j.config.RefreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(j.config.AccessTTL.Seconds()),
	}, nil
}

func (j *JWT) sign(sub Subject, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:        sub.UserID,
		Role:          sub.Role,
		PartnerID:     sub.PartnerID,
		PartnerDomain: sub.PartnerDomain,
		TenantPrefix:  sub.TenantPrefix,
		IsRootUser:    sub.IsRootUser,
		SessionID:     sub.SessionID,
		TokenType:     tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.config.Issuer,
			Audience:  jwt.ClaimStrings{sub.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.SigningKey))
}

// Validate validates and parses a token, distinguishing expiry from every
// other failure.
func (j *JWT) Validate(tokenString string) (*Claims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(j.config.SigningKey), nil
		},
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if !claims.VerifyIssuer(j.config.Issuer, true) {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyAudience enforces the domain binding: non-root tokens are only valid
// when presented from the hostname they were minted for, with the platform
// issuer domain accepted as an override.
func (j *JWT) VerifyAudience(claims *Claims, resolvedDomain string) error {
	if claims.IsRootUser {
		return nil
	}

	resolved := strings.ToLower(strings.TrimSpace(resolvedDomain))
	if resolved == strings.ToLower(j.config.Issuer) {
		return nil
	}

	for _, aud := range claims.Audience {
		if strings.EqualFold(aud, resolved) {
			return nil
		}
	}

	return ErrAudienceMismatch
}
