package repository

import (
	"fmt"

	"library-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id int64) (*models.User, error)
}

type userRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewUserRepository(db *sqlx.DB, log *logrus.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

func (r *userRepository) Create(user *models.User) error {
	query := `INSERT INTO users (name, email, password_hash, role_id, joined_at)
	          VALUES ($1, $2, $3, $4, NOW()) RETURNING id, joined_at`
	err := r.db.QueryRowx(query, user.Name, user.Email, user.PasswordHash, user.RoleID).
		Scan(&user.ID, &user.JoinedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	query := `SELECT id, name, email, password_hash, role_id, joined_at, removed_at
	          FROM users WHERE email = $1`
	err := r.db.Get(&user, query, email)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) GetByID(id int64) (*models.User, error) {
	var user models.User
	query := `SELECT id, name, email, password_hash, role_id, joined_at, removed_at
	          FROM users WHERE id = $1`
	err := r.db.Get(&user, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user by id: %w", err)
	}
	return &user, nil
}
