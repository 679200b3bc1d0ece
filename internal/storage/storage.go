package storage

import (
	"context"
	"time"

	"github.com/Halfis/Connect4/internal/game"
)

type CompletedGame struct {
	ID         string
	Username   string
	Difficulty string
	Outcome    string
	Rows       int
	Cols       int
	Moves      []int
	StartedAt  time.Time
	EndedAt    time.Time
}

// FromSnapshot flattens a finished game for persistence.
func FromSnapshot(s game.Snapshot) CompletedGame {
	moves := make([]int, len(s.Plies))
	for i, p := range s.Plies {
		moves[i] = p.Column
	}
	g := CompletedGame{
		ID:         s.ID,
		Username:   s.Username,
		Difficulty: string(s.Difficulty),
		Outcome:    s.Outcome.String(),
		Moves:      moves,
		StartedAt:  s.StartedAt,
		EndedAt:    s.EndedAt,
	}
	if s.Board != nil {
		g.Rows, g.Cols = s.Board.Rows(), s.Board.Cols()
	}
	return g
}

type LeaderboardRow struct {
	Username string `json:"username"`
	Wins     int    `json:"wins"`
}

type DifficultyStats struct {
	Difficulty  string `json:"difficulty"`
	Games       int    `json:"games"`
	PlayerWins  int    `json:"playerWins"`
	MachineWins int    `json:"machineWins"`
	Draws       int    `json:"draws"`
}

type Store interface {
	SaveGame(ctx context.Context, g CompletedGame) error
	// GetLeaderboard ranks players by games won against the machine.
	GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)
	GetDifficultyStats(ctx context.Context) ([]DifficultyStats, error)
}
