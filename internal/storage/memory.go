package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/Halfis/Connect4/internal/game"
)

// MemoryStore keeps completed games in process. It is the fallback when no
// database is configured.
type MemoryStore struct {
	mu    sync.Mutex
	games map[string]CompletedGame
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]CompletedGame)}
}

func (m *MemoryStore) SaveGame(_ context.Context, g CompletedGame) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.games[g.ID]; !exists {
		m.games[g.ID] = g
	}
	return nil
}

func (m *MemoryStore) GetLeaderboard(_ context.Context, limit int) ([]LeaderboardRow, error) {
	m.mu.Lock()
	wins := make(map[string]int)
	for _, g := range m.games {
		if g.Outcome == game.PlayerWon.String() {
			wins[g.Username]++
		}
	}
	m.mu.Unlock()

	res := make([]LeaderboardRow, 0, len(wins))
	for name, n := range wins {
		res = append(res, LeaderboardRow{Username: name, Wins: n})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Wins != res[j].Wins {
			return res[i].Wins > res[j].Wins
		}
		return res[i].Username < res[j].Username
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *MemoryStore) GetDifficultyStats(_ context.Context) ([]DifficultyStats, error) {
	m.mu.Lock()
	byDifficulty := make(map[string]*DifficultyStats)
	for _, g := range m.games {
		s, ok := byDifficulty[g.Difficulty]
		if !ok {
			s = &DifficultyStats{Difficulty: g.Difficulty}
			byDifficulty[g.Difficulty] = s
		}
		s.Games++
		switch g.Outcome {
		case game.PlayerWon.String():
			s.PlayerWins++
		case game.MachineWon.String():
			s.MachineWins++
		case game.Draw.String():
			s.Draws++
		}
	}
	m.mu.Unlock()

	res := make([]DifficultyStats, 0, len(byDifficulty))
	for _, s := range byDifficulty {
		res = append(res, *s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Difficulty < res[j].Difficulty })
	return res, nil
}
