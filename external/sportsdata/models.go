package sportsdata

type playerDTO struct {
	PlayerID  int64  `json:"PlayerID"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Name      string `json:"Name"`
	Team      string `json:"Team"`
	Position  string `json:"Position"`
	Status    string `json:"Status"`
}

type gameDTO struct {
	ScoreID  int64  `json:"ScoreID"`
	GameKey  string `json:"GameKey"`
	Season   int    `json:"Season"`
	Week     int    `json:"Week"`
	HomeTeam string `json:"HomeTeam"`
	AwayTeam string `json:"AwayTeam"`
	DateTime string `json:"DateTime"`
	Status   string `json:"Status"`
}
