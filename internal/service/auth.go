package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"library-backend/internal/models"
	"library-backend/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/argon2"
)

// AuthService handles staff account login and registration. Tokens come
// from the TokenAuthority; this service owns password hashing and the
// account-level checks.
type AuthService interface {
	Login(email, password string) (*models.User, *models.TokenPair, error)
	Register(name, email, password string, roleID int64) (*models.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens TokenAuthority
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenAuthority, logger *zap.Logger) AuthService {
	return &authService{users: users, tokens: tokens, logger: logger}
}

func (s *authService) Login(email, password string) (*models.User, *models.TokenPair, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: no user with the given email address", ErrNotFound)
		}
		s.logger.Error("Failed to get user by email", zap.Error(err))
		return nil, nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if user.Suspended() {
		return nil, nil, fmt.Errorf("%w: account has been suspended", ErrForbidden)
	}

	if !verifyPassword(user.PasswordHash, password) {
		return nil, nil, fmt.Errorf("%w: invalid login credentials", ErrForbidden)
	}

	accessToken, err := s.tokens.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	refreshToken, err := s.tokens.CreateRefresh(user)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("User logged in successfully.", zap.String("email", user.Email))
	return user, &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) Register(name, email, password string, roleID int64) (*models.User, error) {
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: a user already exists with the given email address", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("Failed to check existing users", zap.Error(err))
		return nil, fmt.Errorf("failed to check existing users: %w", err)
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		RoleID:       roleID,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: a user already exists with the given email address", ErrConflict)
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// hashPassword uses Argon2id and encodes salt and hash together, e.g.
// $argon2id$v=19$m=65536,t=1,p=4$BASE64_SALT$BASE64_HASH.
func hashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	encodedSalt := base64.RawStdEncoding.EncodeToString(salt)
	encodedHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, encodedSalt, encodedHash), nil
}

// verifyPassword compares a plaintext password against an encoded hash,
// re-deriving the key with the parameters stored in the hash itself.
func verifyPassword(hashedPassword, password string) bool {
	sections := strings.Split(strings.TrimPrefix(hashedPassword, "$"), "$")
	// Expected: ["argon2id", "v=19", "m=65536,t=1,p=4", salt, hash]
	if len(sections) != 5 || sections[0] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(sections[1], "v=%d", &version); err != nil {
		return false
	}
	var m, t, p uint32
	if _, err := fmt.Sscanf(sections[2], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}

	decodedSalt, err := base64.RawStdEncoding.DecodeString(sections[3])
	if err != nil {
		return false
	}
	decodedHash, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return false
	}

	comparisonHash := argon2.IDKey([]byte(password), decodedSalt, t, m, uint8(p), uint32(len(decodedHash)))
	return subtle.ConstantTimeCompare(comparisonHash, decodedHash) == 1
}
