package repository

import (
	"fmt"

	"library-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// CredentialRepository persists refresh-token records. Records are kept
// forever; rotation marks them consumed instead of deleting them.
type CredentialRepository interface {
	Create(token *models.RefreshToken) error
	Consume(tokenValue string) (*models.RefreshToken, error)
	GetByValue(tokenValue string) (*models.RefreshToken, error)
}

type credentialRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewCredentialRepository(db *sqlx.DB, log *logrus.Logger) CredentialRepository {
	return &credentialRepository{db: db, log: log}
}

func (r *credentialRepository) Create(token *models.RefreshToken) error {
	query := `INSERT INTO refresh_tokens (token, user_id, created_at, used_at, consumed)
	          VALUES ($1, $2, $3, $4, FALSE) RETURNING id`
	err := r.db.QueryRowx(query, token.Token, token.UserID, token.CreatedAt, token.UsedAt).Scan(&token.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Consume stamps used_at and flips consumed in a single conditional
// UPDATE. Two concurrent rotations of the same value race on the
// `NOT consumed` predicate, so at most one of them gets the row back;
// the loser sees ErrNotFound.
func (r *credentialRepository) Consume(tokenValue string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	query := `UPDATE refresh_tokens SET used_at = NOW(), consumed = TRUE
	          WHERE token = $1 AND NOT consumed
	          RETURNING id, token, user_id, created_at, used_at, consumed`
	err := r.db.Get(&rt, query, tokenValue)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return &rt, nil
}

func (r *credentialRepository) GetByValue(tokenValue string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	query := `SELECT id, token, user_id, created_at, used_at, consumed
	          FROM refresh_tokens WHERE token = $1`
	err := r.db.Get(&rt, query, tokenValue)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query refresh token: %w", err)
	}
	return &rt, nil
}
