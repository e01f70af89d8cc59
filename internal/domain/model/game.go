// Package model contains domain models passed between layers.
package model

// Season kinds understood by game data providers.
const (
	KindRegular    = "REG"
	KindPostseason = "POST"
	KindPreseason  = "PRE"
)

// GameOutcome is one resolved contest between two roster competitors.
// Draws are not represented.
type GameOutcome struct {
	ID          string `json:"id" koanf:"id"`
	Season      int    `json:"season" koanf:"season"`
	Week        int    `json:"week" koanf:"week"`
	Kind        string `json:"kind" koanf:"kind"`
	Winner      string `json:"winner" koanf:"winner"`
	Loser       string `json:"loser" koanf:"loser"`
	WinnerScore int    `json:"winner_score" koanf:"winner_score"`
	LoserScore  int    `json:"loser_score" koanf:"loser_score"`
}

// Margin returns the absolute score difference.
func (g GameOutcome) Margin() int {
	d := g.WinnerScore - g.LoserScore
	if d < 0 {
		return -d
	}
	return d
}

// Total returns the combined score of both sides.
func (g GameOutcome) Total() int {
	return g.WinnerScore + g.LoserScore
}
