package repository

import (
	"fmt"

	"library-backend/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// IssueRepository is the catalog collaborator: the circulation ledger uses
// it to validate a holding's parent issue and to enrich listings with
// title and author. Catalog management itself happens elsewhere.
type IssueRepository interface {
	GetByID(id int64) (*models.Issue, error)
	List() ([]models.Issue, error)
}

type issueRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewIssueRepository(db *sqlx.DB, log *logrus.Logger) IssueRepository {
	return &issueRepository{db: db, log: log}
}

func (r *issueRepository) GetByID(id int64) (*models.Issue, error) {
	var issue models.Issue
	query := `SELECT i.id, i.title, i.author_id, a.name AS author_name, i.category_id
	          FROM issues i JOIN authors a ON a.id = i.author_id
	          WHERE i.id = $1`
	err := r.db.Get(&issue, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query issue: %w", err)
	}
	return &issue, nil
}

func (r *issueRepository) List() ([]models.Issue, error) {
	var issues []models.Issue
	query := `SELECT i.id, i.title, i.author_id, a.name AS author_name, i.category_id
	          FROM issues i JOIN authors a ON a.id = i.author_id ORDER BY i.id`
	if err := r.db.Select(&issues, query); err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	return issues, nil
}
