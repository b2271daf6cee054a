package usecase

import (
	"strings"

	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
)

// RawStatGroup holds every category slice for one (player, game) pair.
type RawStatGroup struct {
	Key     playerstats.Key
	Records []playerstats.RawStatRecord
}

// StatsCombiner merges per-category stat slices into one record per
// player and game.
type StatsCombiner struct{}

func NewStatsCombiner() *StatsCombiner {
	return &StatsCombiner{}
}

// GroupRawStats buckets records by (player, game) in first-appearance order.
// Records without a player or game id are returned separately.
func (c *StatsCombiner) GroupRawStats(records []playerstats.RawStatRecord) ([]RawStatGroup, []playerstats.RawStatRecord) {
	groups := make([]RawStatGroup, 0)
	index := make(map[playerstats.Key]int, len(records))
	var orphans []playerstats.RawStatRecord

	for _, record := range records {
		if strings.TrimSpace(record.PlayerExternalID) == "" || strings.TrimSpace(record.GameID) == "" {
			orphans = append(orphans, record)
			continue
		}
		key := record.Key()
		pos, ok := index[key]
		if !ok {
			pos = len(groups)
			index[key] = pos
			groups = append(groups, RawStatGroup{Key: key})
		}
		groups[pos].Records = append(groups[pos].Records, record)
	}

	return groups, orphans
}

// Combine merges slices belonging to the same key. Metadata comes from the
// first record, later records only fill blanks. On a duplicate field name the
// later record wins.
func (c *StatsCombiner) Combine(records []playerstats.RawStatRecord) (playerstats.CombinedStatRecord, bool) {
	if len(records) == 0 {
		return playerstats.CombinedStatRecord{}, false
	}

	first := records[0]
	out := playerstats.CombinedStatRecord{
		PlayerExternalID: first.PlayerExternalID,
		GameID:           first.GameID,
		Season:           first.Season,
		Week:             first.Week,
		FirstName:        first.FirstName,
		LastName:         first.LastName,
		TeamAbbreviation: first.TeamAbbreviation,
		Position:         first.Position,
		Fields:           make(map[string]float64),
	}

	seenCategory := make(map[playerstats.Category]struct{}, len(records))
	for _, record := range records {
		fillBlank(&out.FirstName, record.FirstName)
		fillBlank(&out.LastName, record.LastName)
		fillBlank(&out.TeamAbbreviation, record.TeamAbbreviation)
		fillBlank(&out.Position, record.Position)
		if out.Season == 0 {
			out.Season = record.Season
		}
		if out.Week == 0 {
			out.Week = record.Week
		}

		if record.Category != "" {
			if _, ok := seenCategory[record.Category]; !ok {
				seenCategory[record.Category] = struct{}{}
				out.Categories = append(out.Categories, record.Category)
			}
		}
		for name, value := range record.Fields {
			out.Fields[name] = value
		}
	}

	return out, true
}

func fillBlank(dst *string, value string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = value
	}
}
