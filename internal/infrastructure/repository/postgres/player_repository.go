package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	qb "github.com/riskibarqy/gridiron-sync/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var rosterPlayerSelectColumns = []string{
	"id",
	"external_id",
	"first_name",
	"last_name",
	"team_abbreviation",
	"position",
	"is_active",
	"created_at",
	"updated_at",
	"deleted_at",
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) FindLinkByExternalID(ctx context.Context, externalID string) (int64, bool, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return 0, false, nil
	}

	query, args, err := qb.Select("id").From("roster_players").
		Where(
			qb.Eq("external_id", externalID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, false, fmt.Errorf("build find roster link query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("find roster link external_id=%s: %w", externalID, err)
	}

	return id, true, nil
}

func (r *PlayerRepository) ListActiveCandidates(ctx context.Context) ([]player.Candidate, error) {
	return r.list(ctx, true)
}

func (r *PlayerRepository) ListAll(ctx context.Context) ([]player.Candidate, error) {
	return r.list(ctx, false)
}

func (r *PlayerRepository) list(ctx context.Context, activeOnly bool) ([]player.Candidate, error) {
	conditions := []qb.Condition{qb.IsNull("deleted_at")}
	if activeOnly {
		conditions = append(conditions, qb.Eq("is_active", true))
	}

	query, args, err := qb.Select(rosterPlayerSelectColumns...).From("roster_players").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select roster players query: %w", err)
	}

	var rows []rosterPlayerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select roster players: %w", err)
	}

	out := make([]player.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, candidateFromRow(row))
	}

	return out, nil
}

// Create inserts a roster row for the external player. A row already linked
// to the same external id is reused.
func (r *PlayerRepository) Create(ctx context.Context, external player.ExternalPlayer) (int64, error) {
	firstName, lastName := splitExternalName(external)
	model := rosterPlayerInsertModel{
		ExternalID:       strings.TrimSpace(external.ExternalID),
		FirstName:        firstName,
		LastName:         lastName,
		TeamAbbreviation: strings.ToUpper(strings.TrimSpace(external.TeamAbbreviation)),
		Position:         string(player.NormalizePosition(external.Position)),
		IsActive:         external.Active,
	}
	if model.ExternalID == "" {
		return 0, fmt.Errorf("external id is required")
	}

	query, args, err := qb.InsertModel("roster_players", model, `ON CONFLICT (external_id) WHERE deleted_at IS NULL
DO UPDATE SET updated_at = NOW()
RETURNING id`)
	if err != nil {
		return 0, fmt.Errorf("build insert roster player query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("insert roster player external_id=%s: %w", model.ExternalID, err)
	}

	return id, nil
}

// UpdateLinkage points the row at the external id and refreshes team,
// position and status. Blank provider values keep the stored ones.
func (r *PlayerRepository) UpdateLinkage(ctx context.Context, candidateID int64, external player.ExternalPlayer) (bool, error) {
	query, args, err := qb.Update("roster_players").
		Set("external_id", strings.TrimSpace(external.ExternalID)).
		SetExpr("team_abbreviation", "COALESCE(NULLIF(?, ''), team_abbreviation)", strings.ToUpper(strings.TrimSpace(external.TeamAbbreviation))).
		SetExpr("position", "COALESCE(NULLIF(?, ''), position)", string(player.NormalizePosition(external.Position))).
		Set("is_active", external.Active).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", candidateID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update roster linkage query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("external id %s already linked to another roster player: %w", external.ExternalID, err)
		}
		return false, fmt.Errorf("update roster linkage id=%d: %w", candidateID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read roster linkage rows affected: %w", err)
	}

	return affected > 0, nil
}

// LinkExternalID moves the external id onto candidateID, detaching it from
// whichever row held it before.
func (r *PlayerRepository) LinkExternalID(ctx context.Context, candidateID int64, externalID string) (bool, error) {
	externalID = strings.TrimSpace(externalID)

	detachQuery, detachArgs, err := qb.Update("roster_players").
		SetExpr("external_id", "NULL").
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("external_id", externalID),
			qb.Expr("id <> ?", candidateID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build detach external id query: %w", err)
	}
	linkQuery, linkArgs, err := qb.Update("roster_players").
		Set("external_id", externalID).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("id", candidateID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build link external id query: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin link external id tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, detachQuery, detachArgs...); err != nil {
		return false, fmt.Errorf("detach external id=%s: %w", externalID, err)
	}
	res, err := tx.ExecContext(ctx, linkQuery, linkArgs...)
	if err != nil {
		return false, fmt.Errorf("link external id=%s to id=%d: %w", externalID, candidateID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read link rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit link external id tx: %w", err)
	}

	return true, nil
}

func candidateFromRow(row rosterPlayerTableModel) player.Candidate {
	return player.Candidate{
		ID:               row.ID,
		ExternalID:       nullStringToString(row.ExternalID),
		FirstName:        row.FirstName,
		LastName:         row.LastName,
		TeamAbbreviation: row.TeamAbbreviation,
		Position:         row.Position,
		Active:           row.IsActive,
	}
}

func splitExternalName(external player.ExternalPlayer) (string, string) {
	firstName := strings.TrimSpace(external.FirstName)
	lastName := strings.TrimSpace(external.LastName)
	if firstName != "" || lastName != "" {
		return firstName, lastName
	}
	parts := strings.Fields(external.DisplayName)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
