package postgres

import "time"

type syncReportInsertModel struct {
	SyncID           string     `db:"sync_id"`
	SyncType         string     `db:"sync_type"`
	Status           string     `db:"status"`
	Season           int        `db:"season"`
	Week             int        `db:"week"`
	StartedAt        time.Time  `db:"started_at"`
	FinishedAt       *time.Time `db:"finished_at"`
	DurationMs       int64      `db:"duration_ms"`
	SuccessRate      float64    `db:"success_rate"`
	PlayersProcessed int        `db:"players_processed"`
	StatsProcessed   int        `db:"stats_processed"`
	DataErrors       int        `db:"data_errors"`
	MatchingErrors   int        `db:"matching_errors"`
	APIErrors        int        `db:"api_errors"`
	Payload          string     `db:"payload"`
}

type syncReportPayloadRow struct {
	SyncID  string `db:"sync_id"`
	Payload string `db:"payload"`
}
