package sportsdata

import (
	"math"
	"strconv"
	"strings"

	"github.com/riskibarqy/gridiron-sync/internal/domain/playerstats"
)

type statTarget struct {
	category playerstats.Category
	stat     string
}

// statFields maps flat provider columns to category-scoped stat names.
var statFields = map[string]statTarget{
	"PassingAttempts":             {playerstats.CategoryPassing, "attempts"},
	"PassingCompletions":          {playerstats.CategoryPassing, "completions"},
	"PassingYards":                {playerstats.CategoryPassing, "yards"},
	"PassingTouchdowns":           {playerstats.CategoryPassing, "touchdowns"},
	"PassingInterceptions":        {playerstats.CategoryPassing, "interceptions"},
	"PassingSacks":                {playerstats.CategoryPassing, "sacks"},
	"PassingCompletionPercentage": {playerstats.CategoryPassing, "completion_pct"},
	"PassingRating":               {playerstats.CategoryPassing, "rating"},

	"RushingAttempts":   {playerstats.CategoryRushing, "attempts"},
	"RushingYards":      {playerstats.CategoryRushing, "yards"},
	"RushingTouchdowns": {playerstats.CategoryRushing, "touchdowns"},
	"RushingLong":       {playerstats.CategoryRushing, "long"},

	"ReceivingTargets":    {playerstats.CategoryReceiving, "targets"},
	"Receptions":          {playerstats.CategoryReceiving, "receptions"},
	"ReceivingYards":      {playerstats.CategoryReceiving, "yards"},
	"ReceivingTouchdowns": {playerstats.CategoryReceiving, "touchdowns"},
	"ReceivingLong":       {playerstats.CategoryReceiving, "long"},

	"Tackles":             {playerstats.CategoryDefense, "tackles"},
	"SoloTackles":         {playerstats.CategoryDefense, "solo_tackles"},
	"AssistedTackles":     {playerstats.CategoryDefense, "assisted_tackles"},
	"Sacks":               {playerstats.CategoryDefense, "sacks"},
	"Interceptions":       {playerstats.CategoryDefense, "interceptions"},
	"PassesDefended":      {playerstats.CategoryDefense, "passes_defended"},
	"FumblesForced":       {playerstats.CategoryDefense, "forced_fumbles"},
	"DefensiveTouchdowns": {playerstats.CategoryDefense, "touchdowns"},

	"FieldGoalsMade":        {playerstats.CategoryKicking, "fg_made"},
	"FieldGoalsAttempted":   {playerstats.CategoryKicking, "fg_attempted"},
	"FieldGoalPercentage":   {playerstats.CategoryKicking, "fg_pct"},
	"FieldGoalsLongestMade": {playerstats.CategoryKicking, "longest_fg"},
	"ExtraPointsMade":       {playerstats.CategoryKicking, "xp_made"},
	"ExtraPointsAttempted":  {playerstats.CategoryKicking, "xp_attempted"},

	"Punts":          {playerstats.CategoryPunting, "punts"},
	"PuntYards":      {playerstats.CategoryPunting, "yards"},
	"PuntInside20":   {playerstats.CategoryPunting, "inside_20"},
	"PuntTouchbacks": {playerstats.CategoryPunting, "touchbacks"},
	"PuntLong":       {playerstats.CategoryPunting, "longest"},
	"PuntAverage":    {playerstats.CategoryPunting, "average"},

	"KickReturns":          {playerstats.CategoryReturns, "kick_returns"},
	"KickReturnYards":      {playerstats.CategoryReturns, "kick_return_yards"},
	"PuntReturns":          {playerstats.CategoryReturns, "punt_returns"},
	"PuntReturnYards":      {playerstats.CategoryReturns, "punt_return_yards"},
	"KickReturnTouchdowns": {playerstats.CategoryReturns, "kick_return_touchdowns"},
	"PuntReturnTouchdowns": {playerstats.CategoryReturns, "punt_return_touchdowns"},

	"Fumbles":          {playerstats.CategoryFumbles, "fumbles"},
	"FumblesLost":      {playerstats.CategoryFumbles, "lost"},
	"FumblesRecovered": {playerstats.CategoryFumbles, "recovered"},
}

// splitStatRow turns one flat provider row into one RawStatRecord per
// category that carries at least one non-zero stat.
func splitStatRow(gameID string, row map[string]any) []playerstats.RawStatRecord {
	playerID := rowString(row, "PlayerID")
	if playerID == "" {
		return nil
	}

	firstName, lastName := splitName(rowString(row, "Name"))
	if v := rowString(row, "FirstName"); v != "" {
		firstName = v
	}
	if v := rowString(row, "LastName"); v != "" {
		lastName = v
	}

	byCategory := make(map[playerstats.Category]map[string]float64, len(playerstats.AllCategories))
	for column, target := range statFields {
		value, ok := rowFloat(row, column)
		if !ok || value == 0 {
			continue
		}
		fields := byCategory[target.category]
		if fields == nil {
			fields = make(map[string]float64, 8)
			byCategory[target.category] = fields
		}
		fields[playerstats.FieldName(target.category, target.stat)] = value
	}

	season, _ := rowFloat(row, "Season")
	week, _ := rowFloat(row, "Week")
	out := make([]playerstats.RawStatRecord, 0, len(byCategory))
	for _, category := range playerstats.AllCategories {
		fields, ok := byCategory[category]
		if !ok {
			continue
		}
		out = append(out, playerstats.RawStatRecord{
			PlayerExternalID: playerID,
			GameID:           gameID,
			Season:           int(season),
			Week:             int(week),
			FirstName:        firstName,
			LastName:         lastName,
			TeamAbbreviation: strings.ToUpper(rowString(row, "Team")),
			Position:         strings.ToUpper(rowString(row, "Position")),
			Category:         category,
			Fields:           fields,
		})
	}
	return out
}

func rowString(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func rowFloat(row map[string]any, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func splitName(full string) (string, string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	first, last, found := strings.Cut(full, " ")
	if !found {
		return "", first
	}
	return first, strings.TrimSpace(last)
}
