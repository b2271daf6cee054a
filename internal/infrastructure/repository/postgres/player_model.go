package postgres

import (
	"database/sql"
	"time"
)

type rosterPlayerTableModel struct {
	ID               int64          `db:"id"`
	ExternalID       sql.NullString `db:"external_id"`
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	TeamAbbreviation string         `db:"team_abbreviation"`
	Position         string         `db:"position"`
	IsActive         bool           `db:"is_active"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	DeletedAt        *time.Time     `db:"deleted_at"`
}

type rosterPlayerInsertModel struct {
	ExternalID       string `db:"external_id"`
	FirstName        string `db:"first_name"`
	LastName         string `db:"last_name"`
	TeamAbbreviation string `db:"team_abbreviation"`
	Position         string `db:"position"`
	IsActive         bool   `db:"is_active"`
}
