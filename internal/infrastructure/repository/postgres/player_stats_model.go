package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type playerGameStatTableModel struct {
	ID               int64          `db:"id"`
	PlayerExternalID string         `db:"player_external_id"`
	RosterPlayerID   sql.NullInt64  `db:"roster_player_id"`
	GameID           string         `db:"game_id"`
	Season           int            `db:"season"`
	Week             int            `db:"week"`
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	TeamAbbreviation string         `db:"team_abbreviation"`
	Position         string         `db:"position"`
	Categories       pq.StringArray `db:"categories"`
	Stats            string         `db:"stats"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

type playerGameStatInsertModel struct {
	PlayerExternalID string         `db:"player_external_id"`
	RosterPlayerID   *int64         `db:"roster_player_id"`
	GameID           string         `db:"game_id"`
	Season           int            `db:"season"`
	Week             int            `db:"week"`
	FirstName        string         `db:"first_name"`
	LastName         string         `db:"last_name"`
	TeamAbbreviation string         `db:"team_abbreviation"`
	Position         string         `db:"position"`
	Categories       pq.StringArray `db:"categories"`
	Stats            string         `db:"stats"`
}
