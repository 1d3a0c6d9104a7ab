package models

import "time"

// Holding is one physical copy of a catalogued issue.
type Holding struct {
	ID         int64     `db:"id" json:"id"`
	SerialNo   string    `db:"serial_no" json:"serial_no"`
	IssueID    int64     `db:"issue_id" json:"issue_id"`
	IsRemoved  bool      `db:"is_removed" json:"is_removed"`
	ReservedAt time.Time `db:"reserved_at" json:"reserved_at"`
}

// Issue is the catalog read model a holding points at. Catalog management
// lives outside this service; we only look issues up for validation and
// listing enrichment.
type Issue struct {
	ID         int64  `db:"id" json:"id"`
	Title      string `db:"title" json:"title"`
	AuthorID   int64  `db:"author_id" json:"author_id"`
	AuthorName string `db:"author_name" json:"author"`
	CategoryID int64  `db:"category_id" json:"category_id"`
}
