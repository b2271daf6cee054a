package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/riskibarqy/gridiron-sync/internal/domain/matching"
	"github.com/riskibarqy/gridiron-sync/internal/domain/player"
	"github.com/riskibarqy/gridiron-sync/internal/identity"
)

const (
	nameScoreExact    = 1.0
	nameScoreNickname = 0.85
	nameScorePhonetic = 0.6
	nameScoreOverlap  = 0.5
)

type nameEvidence string

const (
	nameEvidenceNone     nameEvidence = ""
	nameEvidenceExact    nameEvidence = "exact"
	nameEvidenceNickname nameEvidence = "nickname"
	nameEvidencePhonetic nameEvidence = "phonetic"
	nameEvidenceOverlap  nameEvidence = "overlap"
)

// CandidateScore is the factor breakdown for one (external, candidate) pair.
type CandidateScore struct {
	Candidate     player.Candidate
	Total         float64
	NameScore     float64
	NameEvidence  nameEvidence
	TeamMatch     bool
	PositionScore float64
	Reasons       []string
}

// CandidateScorer turns name, team and position agreement into a weighted
// confidence in [0,1].
type CandidateScorer struct {
	opts      matching.Options
	nicknames *identity.NicknameTable
}

func NewCandidateScorer(opts matching.Options, nicknames *identity.NicknameTable) *CandidateScorer {
	if nicknames == nil {
		nicknames = identity.DefaultNicknames()
	}
	return &CandidateScorer{
		opts:      opts.WithDefaults(),
		nicknames: nicknames,
	}
}

func (s *CandidateScorer) Score(external player.ExternalPlayer, candidate player.Candidate) CandidateScore {
	out := CandidateScore{Candidate: candidate}

	out.NameScore, out.NameEvidence = s.nameScore(external, candidate)
	out.TeamMatch = identity.SameTeam(external.TeamAbbreviation, candidate.TeamAbbreviation)
	out.PositionScore = positionScore(external.Position, candidate.Position)

	teamScore := 0.0
	if out.TeamMatch {
		teamScore = 1
	}

	nameContribution := s.opts.NameWeight * out.NameScore
	teamContribution := s.opts.TeamWeight * teamScore
	positionContribution := s.opts.PositionWeight * out.PositionScore
	out.Total = clampScore(nameContribution + teamContribution + positionContribution)

	floor := s.opts.ReasonVisibilityFloor
	if nameContribution > 0 && nameContribution >= floor {
		out.Reasons = append(out.Reasons, nameReason(out.NameEvidence, out.NameScore, external, candidate))
	}
	if teamContribution > 0 && teamContribution >= floor {
		out.Reasons = append(out.Reasons, "team match: "+identity.CanonicalTeam(candidate.TeamAbbreviation))
	}
	if positionContribution > 0 && positionContribution >= floor {
		if out.PositionScore >= 1 {
			out.Reasons = append(out.Reasons, "position match: "+string(player.NormalizePosition(candidate.Position)))
		} else {
			out.Reasons = append(out.Reasons, "same unit: "+string(player.UnitOf(candidate.Position)))
		}
	}

	return out
}

func (s *CandidateScorer) nameScore(external player.ExternalPlayer, candidate player.Candidate) (float64, nameEvidence) {
	externalFull := identity.NormalizeWithoutSuffix(external.FullName())
	candidateFull := identity.NormalizeWithoutSuffix(candidate.FullName())
	if externalFull == "" || candidateFull == "" {
		return 0, nameEvidenceNone
	}
	if externalFull == candidateFull {
		return nameScoreExact, nameEvidenceExact
	}

	extFirst, extLast := splitExternalName(external)
	candFirst := identity.NormalizeWithoutSuffix(candidate.FirstName)
	candLast := identity.NormalizeWithoutSuffix(candidate.LastName)

	best, evidence := 0.0, nameEvidenceNone
	if extLast != "" && extLast == candLast && s.nicknames.IsVariant(extFirst, candFirst) {
		best, evidence = nameScoreNickname, nameEvidenceNickname
	}
	if best < nameScorePhonetic && identity.SamePhonetic(extFirst, candFirst) && identity.SamePhonetic(extLast, candLast) {
		best, evidence = nameScorePhonetic, nameEvidencePhonetic
	}
	if overlap := identity.TokenOverlap(externalFull, candidateFull) * nameScoreOverlap; overlap > best {
		best, evidence = overlap, nameEvidenceOverlap
	}

	return best, evidence
}

// splitExternalName prefers the structured fields and falls back to the
// first and last token of the display name.
func splitExternalName(external player.ExternalPlayer) (string, string) {
	first := identity.NormalizeWithoutSuffix(external.FirstName)
	last := identity.NormalizeWithoutSuffix(external.LastName)
	if first != "" && last != "" {
		return first, last
	}

	tokens := identity.Tokens(external.DisplayName)
	switch len(tokens) {
	case 0:
		return first, last
	case 1:
		if last == "" {
			last = tokens[0]
		}
		return first, last
	default:
		if first == "" {
			first = tokens[0]
		}
		if last == "" {
			last = tokens[len(tokens)-1]
		}
		return first, last
	}
}

func positionScore(externalPosition, candidatePosition string) float64 {
	left := player.NormalizePosition(externalPosition)
	right := player.NormalizePosition(candidatePosition)
	if left == "" || right == "" {
		return 0
	}
	if left == right {
		return 1
	}
	unit := player.UnitOf(string(left))
	if unit != player.UnitUnknown && unit == player.UnitOf(string(right)) {
		return 0.5
	}
	return 0
}

func nameReason(evidence nameEvidence, score float64, external player.ExternalPlayer, candidate player.Candidate) string {
	switch evidence {
	case nameEvidenceExact:
		return "exact name match"
	case nameEvidenceNickname:
		return fmt.Sprintf("nickname variant: %s / %s", strings.TrimSpace(external.FirstName), strings.TrimSpace(candidate.FirstName))
	case nameEvidencePhonetic:
		return fmt.Sprintf("phonetic match: %s", identity.Encode(candidate.LastName))
	default:
		return fmt.Sprintf("name token overlap: %.2f", score/nameScoreOverlap)
	}
}

// clampScore keeps the score in [0,1] at four decimals so that full
// agreement lands on exactly 1.
func clampScore(value float64) float64 {
	value = math.Round(value*10000) / 10000
	switch {
	case value < 0 || math.IsNaN(value):
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}
