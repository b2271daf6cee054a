package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
	qb "github.com/riskibarqy/gridiron-sync/internal/platform/querybuilder"
)

type PlayerStatsRepository struct {
	db *sqlx.DB
}

func NewPlayerStatsRepository(db *sqlx.DB) *PlayerStatsRepository {
	return &PlayerStatsRepository{db: db}
}

// UpsertCombined writes one row per (player, game). Duplicate keys inside
// the batch collapse to the last record.
func (r *PlayerStatsRepository) UpsertCombined(ctx context.Context, records []playerstats.CombinedStatRecord) (int, error) {
	records = dedupeCombined(records)
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([]playerGameStatInsertModel, 0, len(records))
	for _, record := range records {
		categories := make([]string, 0, len(record.Categories))
		for _, category := range record.Categories {
			categories = append(categories, string(category))
		}
		var rosterPlayerID *int64
		if record.CandidateID > 0 {
			id := record.CandidateID
			rosterPlayerID = &id
		}
		rows = append(rows, playerGameStatInsertModel{
			PlayerExternalID: record.PlayerExternalID,
			RosterPlayerID:   rosterPlayerID,
			GameID:           record.GameID,
			Season:           record.Season,
			Week:             record.Week,
			FirstName:        strings.TrimSpace(record.FirstName),
			LastName:         strings.TrimSpace(record.LastName),
			TeamAbbreviation: strings.ToUpper(strings.TrimSpace(record.TeamAbbreviation)),
			Position:         strings.ToUpper(strings.TrimSpace(record.Position)),
			Categories:       pq.StringArray(categories),
			Stats:            encodeJSON(record.Fields),
		})
	}

	query, args, err := qb.InsertModels("player_game_stats", rows, `ON CONFLICT (player_external_id, game_id)
DO UPDATE SET
    roster_player_id = COALESCE(EXCLUDED.roster_player_id, player_game_stats.roster_player_id),
    season = EXCLUDED.season,
    week = EXCLUDED.week,
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    team_abbreviation = EXCLUDED.team_abbreviation,
    position = EXCLUDED.position,
    categories = EXCLUDED.categories,
    stats = EXCLUDED.stats,
    updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("build upsert player game stats query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upsert player game stats records=%d: %w", len(records), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return len(records), nil
	}

	return int(affected), nil
}

func (r *PlayerStatsRepository) ListByGame(ctx context.Context, gameID string) ([]playerstats.CombinedStatRecord, error) {
	query, args, err := qb.Select(
		"id",
		"player_external_id",
		"roster_player_id",
		"game_id",
		"season",
		"week",
		"first_name",
		"last_name",
		"team_abbreviation",
		"position",
		"categories",
		"stats::text AS stats",
		"created_at",
		"updated_at",
	).From("player_game_stats").
		Where(qb.Eq("game_id", strings.TrimSpace(gameID))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list player game stats query: %w", err)
	}

	var rows []playerGameStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list player game stats game_id=%s: %w", gameID, err)
	}

	out := make([]playerstats.CombinedStatRecord, 0, len(rows))
	for _, row := range rows {
		fields := make(map[string]float64)
		if err := decodeJSON(row.Stats, &fields); err != nil {
			return nil, fmt.Errorf("decode stats for %s@%s: %w", row.PlayerExternalID, row.GameID, err)
		}
		categories := make([]playerstats.Category, 0, len(row.Categories))
		for _, item := range row.Categories {
			categories = append(categories, playerstats.Category(item))
		}
		out = append(out, playerstats.CombinedStatRecord{
			PlayerExternalID: row.PlayerExternalID,
			CandidateID:      row.RosterPlayerID.Int64,
			GameID:           row.GameID,
			Season:           row.Season,
			Week:             row.Week,
			FirstName:        row.FirstName,
			LastName:         row.LastName,
			TeamAbbreviation: row.TeamAbbreviation,
			Position:         row.Position,
			Categories:       categories,
			Fields:           fields,
		})
	}

	return out, nil
}

func dedupeCombined(records []playerstats.CombinedStatRecord) []playerstats.CombinedStatRecord {
	index := make(map[playerstats.Key]int, len(records))
	out := make([]playerstats.CombinedStatRecord, 0, len(records))
	for _, record := range records {
		if strings.TrimSpace(record.PlayerExternalID) == "" || strings.TrimSpace(record.GameID) == "" {
			continue
		}
		key := record.Key()
		if pos, ok := index[key]; ok {
			out[pos] = record
			continue
		}
		index[key] = len(out)
		out = append(out, record)
	}
	return out
}
