package player

import (
	"fmt"
	"strings"
)

// Position is an NFL position code as reported by providers.
type Position string

const (
	PositionQuarterback      Position = "QB"
	PositionRunningBack      Position = "RB"
	PositionFullback         Position = "FB"
	PositionWideReceiver     Position = "WR"
	PositionTightEnd         Position = "TE"
	PositionOffensiveLine    Position = "OL"
	PositionCenter           Position = "C"
	PositionGuard            Position = "G"
	PositionTackle           Position = "T"
	PositionDefensiveLine    Position = "DL"
	PositionDefensiveEnd     Position = "DE"
	PositionDefensiveTackle  Position = "DT"
	PositionNoseTackle       Position = "NT"
	PositionLinebacker       Position = "LB"
	PositionInsideLinebacker Position = "ILB"
	PositionOutsideLB        Position = "OLB"
	PositionCornerback       Position = "CB"
	PositionSafety           Position = "S"
	PositionFreeSafety       Position = "FS"
	PositionStrongSafety     Position = "SS"
	PositionDefensiveBack    Position = "DB"
	PositionKicker           Position = "K"
	PositionPunter           Position = "P"
	PositionLongSnapper      Position = "LS"
)

// Unit groups positions by phase of play.
type Unit string

const (
	UnitUnknown      Unit = ""
	UnitOffense      Unit = "offense"
	UnitDefense      Unit = "defense"
	UnitSpecialTeams Unit = "special_teams"
)

var positionAliases = map[string]Position{
	"OT":   PositionTackle,
	"OG":   PositionGuard,
	"MLB":  PositionInsideLinebacker,
	"HB":   PositionRunningBack,
	"PK":   PositionKicker,
	"EDGE": PositionOutsideLB,
}

var unitByPosition = map[Position]Unit{
	PositionQuarterback:      UnitOffense,
	PositionRunningBack:      UnitOffense,
	PositionFullback:         UnitOffense,
	PositionWideReceiver:     UnitOffense,
	PositionTightEnd:         UnitOffense,
	PositionOffensiveLine:    UnitOffense,
	PositionCenter:           UnitOffense,
	PositionGuard:            UnitOffense,
	PositionTackle:           UnitOffense,
	PositionDefensiveLine:    UnitDefense,
	PositionDefensiveEnd:     UnitDefense,
	PositionDefensiveTackle:  UnitDefense,
	PositionNoseTackle:       UnitDefense,
	PositionLinebacker:       UnitDefense,
	PositionInsideLinebacker: UnitDefense,
	PositionOutsideLB:        UnitDefense,
	PositionCornerback:       UnitDefense,
	PositionSafety:           UnitDefense,
	PositionFreeSafety:       UnitDefense,
	PositionStrongSafety:     UnitDefense,
	PositionDefensiveBack:    UnitDefense,
	PositionKicker:           UnitSpecialTeams,
	PositionPunter:           UnitSpecialTeams,
	PositionLongSnapper:      UnitSpecialTeams,
}

// NormalizePosition upper-cases and folds aliases such as OT -> T.
func NormalizePosition(raw string) Position {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := positionAliases[code]; ok {
		return alias
	}
	return Position(code)
}

// UnitOf returns the unit for a position, or UnitUnknown.
func UnitOf(position string) Unit {
	return unitByPosition[NormalizePosition(position)]
}

// ExternalPlayer is a provider roster entry as seen in one fetch.
type ExternalPlayer struct {
	ExternalID       string
	FirstName        string
	LastName         string
	DisplayName      string
	TeamAbbreviation string
	Position         string
	Active           bool
}

func (p ExternalPlayer) FullName() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
}

func (p ExternalPlayer) Validate() error {
	if strings.TrimSpace(p.ExternalID) == "" {
		return fmt.Errorf("external player id is required")
	}
	if p.FullName() == "" {
		return fmt.Errorf("external player %s has no name", p.ExternalID)
	}

	return nil
}

// Candidate is an existing roster row that external players are matched against.
type Candidate struct {
	ID               int64
	ExternalID       string
	FirstName        string
	LastName         string
	TeamAbbreviation string
	Position         string
	Active           bool
}

func (c Candidate) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(c.FirstName) + " " + strings.TrimSpace(c.LastName))
}
