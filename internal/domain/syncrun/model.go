package syncrun

import (
	"time"
)

type Type string

const (
	TypePlayers     Type = "players"
	TypePlayerStats Type = "player_stats"
	TypeDateRange   Type = "date_range"
	TypeFull        Type = "full"
)

type Status string

const (
	StatusIdle                  Status = "idle"
	StatusRunning               Status = "running"
	StatusCompleted             Status = "completed"
	StatusCompletedWithWarnings Status = "completed_with_warnings"
	StatusPartiallyCompleted    Status = "partially_completed"
	StatusFailed                Status = "failed"
	StatusCancelled             Status = "cancelled"
)

// Terminal reports whether the status ends a run.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCompletedWithWarnings, StatusPartiallyCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

const (
	DefaultBatchSize  = 100
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Options are supplied per run.
type Options struct {
	ForceFullSync      bool          `json:"force_full_sync"`
	SkipInactives      bool          `json:"skip_inactives"`
	BatchSize          int           `json:"batch_size"`
	DryRun             bool          `json:"dry_run"`
	MaxRetries         int           `json:"max_retries"`
	RetryDelay         time.Duration `json:"retry_delay"`
	SkipInvalidRecords bool          `json:"skip_invalid_records"`
	CreateBackup       bool          `json:"create_backup"`
	ContinueOnError    bool          `json:"continue_on_error"`
}

// DefaultOptions returns the documented per-run defaults.
func DefaultOptions() Options {
	return Options{
		BatchSize:          DefaultBatchSize,
		MaxRetries:         DefaultMaxRetries,
		RetryDelay:         DefaultRetryDelay,
		SkipInvalidRecords: true,
		ContinueOnError:    true,
	}
}

// WithDefaults fills zero numeric values. Booleans are taken as given.
func (o Options) WithDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	return o
}

type ErrorCounts struct {
	DataErrors     int `json:"data_errors"`
	MatchingErrors int `json:"matching_errors"`
	APIErrors      int `json:"api_errors"`
}

func (c ErrorCounts) Total() int {
	return c.DataErrors + c.MatchingErrors + c.APIErrors
}

func (c *ErrorCounts) Add(other ErrorCounts) {
	c.DataErrors += other.DataErrors
	c.MatchingErrors += other.MatchingErrors
	c.APIErrors += other.APIErrors
}

// UnmatchedPlayer is an external player left without a confident link.
type UnmatchedPlayer struct {
	ExternalID   string  `json:"external_id"`
	ExternalName string  `json:"external_name"`
	BestScore    float64 `json:"best_score"`
	Reason       string  `json:"reason"`
}

// Result accumulates counters while a run executes.
type Result struct {
	ID                string            `json:"id"`
	Type              Type              `json:"type"`
	Status            Status            `json:"status"`
	StartedAt         time.Time         `json:"started_at"`
	FinishedAt        *time.Time        `json:"finished_at,omitempty"`
	Season            int               `json:"season,omitempty"`
	Week              int               `json:"week,omitempty"`
	RangeStart        *time.Time        `json:"range_start,omitempty"`
	RangeEnd          *time.Time        `json:"range_end,omitempty"`
	PlayersProcessed  int               `json:"players_processed"`
	PlayersUpdated    int               `json:"players_updated"`
	NewPlayersAdded   int               `json:"new_players_added"`
	StatsProcessed    int               `json:"stats_processed"`
	StatsUpserted     int               `json:"stats_upserted"`
	GamesProcessed    int               `json:"games_processed"`
	RecordsSkipped    int               `json:"records_skipped"`
	ManualReviewCount int               `json:"manual_review_count"`
	ErrorCounts       ErrorCounts       `json:"error_counts"`
	Errors            []string          `json:"errors,omitempty"`
	Warnings          []string          `json:"warnings,omitempty"`
	UnmatchedPlayers  []UnmatchedPlayer `json:"unmatched_players,omitempty"`
	BackupLocation    string            `json:"backup_location,omitempty"`
}

func NewResult(id string, runType Type, startedAt time.Time) *Result {
	return &Result{
		ID:        id,
		Type:      runType,
		Status:    StatusRunning,
		StartedAt: startedAt,
	}
}

func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Processed is the item count the success rate is computed over.
func (r *Result) Processed() int {
	return r.PlayersProcessed + r.StatsProcessed
}

// Merge folds the counters of a sub-run into r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.PlayersProcessed += other.PlayersProcessed
	r.PlayersUpdated += other.PlayersUpdated
	r.NewPlayersAdded += other.NewPlayersAdded
	r.StatsProcessed += other.StatsProcessed
	r.StatsUpserted += other.StatsUpserted
	r.GamesProcessed += other.GamesProcessed
	r.RecordsSkipped += other.RecordsSkipped
	r.ManualReviewCount += other.ManualReviewCount
	r.ErrorCounts.Add(other.ErrorCounts)
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.UnmatchedPlayers = append(r.UnmatchedPlayers, other.UnmatchedPlayers...)
}

// Finish stamps the end time and derives the final status. A cancelled run
// keeps its status.
func (r *Result) Finish(at time.Time) {
	r.FinishedAt = &at
	if r.Status == StatusCancelled {
		return
	}
	r.Status = DeriveStatus(r.Processed(), r.ErrorCounts, len(r.Warnings))
}

// Clone returns a deep copy safe to hand to readers while the run continues.
func (r *Result) Clone() Result {
	out := *r
	out.Errors = append([]string(nil), r.Errors...)
	out.Warnings = append([]string(nil), r.Warnings...)
	out.UnmatchedPlayers = append([]UnmatchedPlayer(nil), r.UnmatchedPlayers...)
	if r.FinishedAt != nil {
		at := *r.FinishedAt
		out.FinishedAt = &at
	}
	return out
}

// SuccessRate is the percentage of processed items that did not error.
// It is 100 when nothing was processed.
func SuccessRate(processed int, counts ErrorCounts) float64 {
	if processed <= 0 {
		return 100
	}
	return float64(processed-counts.Total()) / float64(processed) * 100
}

// DeriveStatus computes the terminal status from final counters.
func DeriveStatus(processed int, counts ErrorCounts, warnings int) Status {
	if counts.Total() > 0 {
		if SuccessRate(processed, counts) <= 50 {
			return StatusFailed
		}
		return StatusPartiallyCompleted
	}
	if warnings > 0 {
		return StatusCompletedWithWarnings
	}
	return StatusCompleted
}

// Report is the durable snapshot of a finished run.
type Report struct {
	Result
	DurationMs  int64   `json:"duration_ms"`
	SuccessRate float64 `json:"success_rate"`
}

func NewReport(result Result) Report {
	report := Report{
		Result:      result,
		SuccessRate: SuccessRate(result.Processed(), result.ErrorCounts),
	}
	if result.FinishedAt != nil {
		report.DurationMs = result.FinishedAt.Sub(result.StartedAt).Milliseconds()
	}
	return report
}
