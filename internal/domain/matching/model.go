package matching

import (
	"fmt"
	"runtime"
	"time"
)

// Method names the dominant factor behind a match decision.
type Method string

const (
	MethodExactNameAndTeam     Method = "exact_name_and_team"
	MethodExactNameAndPosition Method = "exact_name_and_position"
	MethodFuzzyNameAndTeam     Method = "fuzzy_name_and_team"
	MethodPhoneticMatch        Method = "phonetic_match"
	MethodNameVariation        Method = "name_variation"
	MethodFuzzyNameOnly        Method = "fuzzy_name_only"
	MethodNone                 Method = "none"
	MethodNoMatch              Method = "no_match"
	MethodManualLink           Method = "manual_link"
)

// MatchCandidate is one scored alternate for an external player.
type MatchCandidate struct {
	CandidateID int64    `json:"candidate_id"`
	Name        string   `json:"name"`
	Team        string   `json:"team"`
	Position    string   `json:"position"`
	Score       float64  `json:"score"`
	Reasons     []string `json:"reasons,omitempty"`
}

// MatchResult is the outcome of matching one external player.
type MatchResult struct {
	ExternalID           string           `json:"external_id"`
	ExternalName         string           `json:"external_name"`
	MatchedCandidateID   *int64           `json:"matched_candidate_id,omitempty"`
	ConfidenceScore      float64          `json:"confidence_score"`
	Method               Method           `json:"method"`
	Reasons              []string         `json:"reasons,omitempty"`
	RequiresManualReview bool             `json:"requires_manual_review"`
	Alternates           []MatchCandidate `json:"alternates,omitempty"`
	MatchedAt            time.Time        `json:"matched_at"`
}

func (r MatchResult) Matched() bool {
	return r.MatchedCandidateID != nil
}

// Options tunes candidate scoring and match thresholds.
type Options struct {
	NameWeight                  float64
	TeamWeight                  float64
	PositionWeight              float64
	MinimumConfidenceThreshold  float64
	AutoLinkConfidenceThreshold float64
	ManualReviewThreshold       float64
	MaxAlternateCandidates      int
	ReasonVisibilityFloor       float64
	Workers                     int
}

func DefaultOptions() Options {
	return Options{
		NameWeight:                  0.60,
		TeamWeight:                  0.25,
		PositionWeight:              0.15,
		MinimumConfidenceThreshold:  0.50,
		AutoLinkConfidenceThreshold: 0.85,
		ManualReviewThreshold:       0.10,
		MaxAlternateCandidates:      5,
		ReasonVisibilityFloor:       0.05,
		Workers:                     runtime.GOMAXPROCS(0),
	}
}

// WithDefaults fills unset fields. Weights are replaced together when
// they are all zero.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.NameWeight == 0 && o.TeamWeight == 0 && o.PositionWeight == 0 {
		o.NameWeight = defaults.NameWeight
		o.TeamWeight = defaults.TeamWeight
		o.PositionWeight = defaults.PositionWeight
	}
	if o.MinimumConfidenceThreshold <= 0 {
		o.MinimumConfidenceThreshold = defaults.MinimumConfidenceThreshold
	}
	if o.AutoLinkConfidenceThreshold <= 0 {
		o.AutoLinkConfidenceThreshold = defaults.AutoLinkConfidenceThreshold
	}
	if o.ManualReviewThreshold <= 0 {
		o.ManualReviewThreshold = defaults.ManualReviewThreshold
	}
	if o.MaxAlternateCandidates <= 0 {
		o.MaxAlternateCandidates = defaults.MaxAlternateCandidates
	}
	if o.ReasonVisibilityFloor < 0 {
		o.ReasonVisibilityFloor = defaults.ReasonVisibilityFloor
	}
	if o.Workers <= 0 {
		o.Workers = defaults.Workers
	}
	return o
}

func (o Options) Validate() error {
	if o.NameWeight < 0 || o.TeamWeight < 0 || o.PositionWeight < 0 {
		return fmt.Errorf("matching weights must be >= 0")
	}
	if sum := o.NameWeight + o.TeamWeight + o.PositionWeight; sum <= 0 || sum > 1.0001 {
		return fmt.Errorf("matching weights must sum to (0, 1], got %.4f", sum)
	}
	if o.MinimumConfidenceThreshold > o.AutoLinkConfidenceThreshold {
		return fmt.Errorf("minimum confidence threshold must be <= auto-link threshold")
	}
	if o.AutoLinkConfidenceThreshold > 1 {
		return fmt.Errorf("auto-link threshold must be <= 1")
	}

	return nil
}

// Review is a match that needs a human decision.
type Review struct {
	SyncID    string
	Result    MatchResult
	CreatedAt time.Time
}
