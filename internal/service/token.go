package service

import (
	"errors"
	"fmt"
	"time"

	"library-backend/internal/models"
	"library-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenAuthority mints and verifies access tokens and rotates the
// DB-tracked refresh tokens behind them. Access tokens are stateless and
// short-lived; refresh tokens are persisted, strictly single-use, and
// never deleted.
type TokenAuthority interface {
	Issue(user *models.User) (string, error)
	VerifyAccess(tokenString string) (*models.Claims, error)
	CreateRefresh(user *models.User) (string, error)
	Rotate(refreshValue string) (*models.TokenPair, *models.Claims, error)
}

type tokenAuthority struct {
	creds         repository.CredentialRepository
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewTokenAuthority(creds repository.CredentialRepository, accessSecret, refreshSecret []byte, accessTTL time.Duration, logger *zap.Logger) TokenAuthority {
	return &tokenAuthority{
		creds:         creds,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		logger:        logger,
		now:           time.Now,
	}
}

func (t *tokenAuthority) claimsFor(user *models.User) models.Claims {
	return models.Claims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		RoleID: user.RoleID,
	}
}

// Issue builds a signed access token from the subject's identity claims.
// A signing failure here means the secret is misconfigured, not a
// user-facing condition.
func (t *tokenAuthority) Issue(user *models.User) (string, error) {
	now := t.now()
	claims := t.claimsFor(user)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(t.accessSecret)
	if err != nil {
		t.logger.Error("Failed to sign access token", zap.Error(err))
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// VerifyAccess checks signature and expiry only; access tokens carry no
// revocation state.
func (t *tokenAuthority) VerifyAccess(tokenString string) (*models.Claims, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := t.parse(tokenString, t.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// CreateRefresh mints an opaque refresh-token value and persists its
// record. The value is itself a signed JWT over the subject claims, so
// tampering is detectable independent of storage; the jti makes each
// value unique even for back-to-back logins of the same subject.
func (t *tokenAuthority) CreateRefresh(user *models.User) (string, error) {
	claims := t.claimsFor(user)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt: jwt.NewNumericDate(t.now()),
		ID:       uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	value, err := token.SignedString(t.refreshSecret)
	if err != nil {
		t.logger.Error("Failed to sign refresh token", zap.Error(err))
		return "", fmt.Errorf("failed to sign refresh token: %w", err)
	}

	now := t.now()
	record := &models.RefreshToken{
		Token:     value,
		UserID:    user.ID,
		CreatedAt: now,
		UsedAt:    now,
	}
	if err := t.creds.Create(record); err != nil {
		return "", fmt.Errorf("failed to persist refresh token: %w", err)
	}
	return value, nil
}

// Rotate exchanges a refresh-token value for a fresh access token. The
// stored record is consumed in a single conditional update, so a replayed
// value fails even when two rotations race. Because rotation runs on
// every protected request, a replacement refresh token is minted in the
// same call and handed back with the new access token.
func (t *tokenAuthority) Rotate(refreshValue string) (*models.TokenPair, *models.Claims, error) {
	if refreshValue == "" {
		return nil, nil, ErrUnauthenticated
	}

	claims, err := t.parse(refreshValue, t.refreshSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: refresh token failed verification", ErrForbidden)
	}

	if _, err := t.creds.Consume(refreshValue); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: refresh token unknown or already used", ErrForbidden)
		}
		return nil, nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}

	subject := &models.User{
		ID:     claims.UserID,
		Name:   claims.Name,
		Email:  claims.Email,
		RoleID: claims.RoleID,
	}

	accessToken, err := t.Issue(subject)
	if err != nil {
		return nil, nil, err
	}
	newRefresh, err := t.CreateRefresh(subject)
	if err != nil {
		return nil, nil, err
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: newRefresh}, claims, nil
}

func (t *tokenAuthority) parse(tokenString string, secret []byte) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}
