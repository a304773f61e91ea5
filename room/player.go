// room/player.go
package room

import (
	"math/rand"

	"github.com/wfunc/geoguess/models"
)

// MaxGuesses 每回合允许的提交次数上限
const MaxGuesses = 2

const (
	TeamRed  = "red"
	TeamBlue = "blue"
)

// hostColor 房主的固定颜色，加入者按加入顺序轮取调色板
const hostColor = "#1f2937"

var palette = []string{
	"#ef4444", "#f59e0b", "#10b981", "#3b82f6", "#8b5cf6",
	"#ec4899", "#06b6d4", "#f97316", "#0ea5a4", "#7c3aed",
}

// Player 房间内的一名玩家，以会话ID为主键
type Player struct {
	ID          string
	Name        string
	Color       string
	Team        string
	Connected   bool
	SubmitCount int
	LastGuess   *models.Guess
	Excluded    bool
}

func newPlayer(id, name, color string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Color:     color,
		Team:      randomTeam(),
		Connected: true,
	}
}

func randomTeam() string {
	if rand.Intn(2) == 0 {
		return TeamRed
	}
	return TeamBlue
}

// paletteColor picks the joiner color by current player count.
func paletteColor(playerCount int) string {
	return palette[playerCount%len(palette)]
}

// resetRound clears the per-round state at round start and round reset.
func (p *Player) resetRound() {
	p.SubmitCount = 0
	p.LastGuess = nil
	p.Excluded = false
}

func (p *Player) info() models.PlayerInfo {
	return models.PlayerInfo{
		ID:          p.ID,
		Name:        p.Name,
		Color:       p.Color,
		Connected:   p.Connected,
		SubmitCount: p.SubmitCount,
		Excluded:    p.Excluded,
		Team:        p.Team,
	}
}

func (p *Player) result() models.PlayerResult {
	return models.PlayerResult{
		ID:          p.ID,
		Name:        p.Name,
		Color:       p.Color,
		LastGuess:   p.LastGuess,
		Excluded:    p.LastGuess == nil,
		SubmitCount: p.SubmitCount,
		Team:        p.Team,
	}
}
