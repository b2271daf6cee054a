package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	qb "github.com/riskibarqy/gridiron-sync/internal/platform/querybuilder"
)

type matchReviewInsertModel struct {
	ExternalID   string    `db:"external_id"`
	SyncID       string    `db:"sync_id"`
	ExternalName string    `db:"external_name"`
	BestScore    float64   `db:"best_score"`
	Method       string    `db:"method"`
	Result       string    `db:"result"`
	CreatedAt    time.Time `db:"created_at"`
}

type matchReviewRow struct {
	SyncID    string    `db:"sync_id"`
	Result    string    `db:"result"`
	CreatedAt time.Time `db:"created_at"`
}

// MatchReviewRepository keeps one open review per external id.
type MatchReviewRepository struct {
	db *sqlx.DB
}

func NewMatchReviewRepository(db *sqlx.DB) *MatchReviewRepository {
	return &MatchReviewRepository{db: db}
}

func (r *MatchReviewRepository) Save(ctx context.Context, review matching.Review) error {
	externalID := strings.TrimSpace(review.Result.ExternalID)
	if externalID == "" {
		return fmt.Errorf("review external id is required")
	}
	createdAt := review.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	model := matchReviewInsertModel{
		ExternalID:   externalID,
		SyncID:       review.SyncID,
		ExternalName: review.Result.ExternalName,
		BestScore:    review.Result.ConfidenceScore,
		Method:       string(review.Result.Method),
		Result:       encodeJSON(review.Result),
		CreatedAt:    createdAt,
	}

	query, args, err := qb.InsertModel("match_reviews", model, `ON CONFLICT (external_id) WHERE resolved_at IS NULL
DO UPDATE SET
    sync_id = EXCLUDED.sync_id,
    external_name = EXCLUDED.external_name,
    best_score = EXCLUDED.best_score,
    method = EXCLUDED.method,
    result = EXCLUDED.result,
    created_at = EXCLUDED.created_at`)
	if err != nil {
		return fmt.Errorf("build upsert match review query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert match review external_id=%s: %w", externalID, err)
	}
	return nil
}

func (r *MatchReviewRepository) ListPending(ctx context.Context, limit int) ([]matching.Review, error) {
	query, args, err := qb.Select("sync_id", "result::text AS result", "created_at").From("match_reviews").
		Where(qb.IsNull("resolved_at")).
		OrderBy("created_at", "external_id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list match reviews query: %w", err)
	}

	var rows []matchReviewRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list match reviews: %w", err)
	}

	out := make([]matching.Review, 0, len(rows))
	for _, row := range rows {
		var result matching.MatchResult
		if err := decodeJSON(row.Result, &result); err != nil {
			return nil, fmt.Errorf("decode match review sync_id=%s: %w", row.SyncID, err)
		}
		out = append(out, matching.Review{
			SyncID:    row.SyncID,
			Result:    result,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

func (r *MatchReviewRepository) Resolve(ctx context.Context, externalID string) error {
	query, args, err := qb.Update("match_reviews").
		SetExpr("resolved_at", "NOW()").
		Where(
			qb.Eq("external_id", strings.TrimSpace(externalID)),
			qb.IsNull("resolved_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build resolve match review query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("resolve match review external_id=%s: %w", externalID, err)
	}
	return nil
}
