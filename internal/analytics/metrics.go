package analytics

import (
	"log"
	"sort"
	"sync"
)

type DifficultySummary struct {
	Difficulty    string
	Games         int
	PlayerWins    int
	MachineWins   int
	Draws         int
	MachineMoves  int
	MeanSearchMs  float64
	totalSearchMs float64
}

type Summary struct {
	TotalGames         int
	AverageDurationSec float64
	GamesPerDay        map[string]int
	UserGames          map[string]int
	UserWins           map[string]int
	ByDifficulty       []DifficultySummary
}

// Metrics aggregates the event stream consumed by the analytics service.
type Metrics struct {
	mu            sync.Mutex
	totalGames    int
	totalDuration float64
	gamesPerDay   map[string]int
	userGames     map[string]int
	userWins      map[string]int
	difficulties  map[string]*DifficultySummary
}

func NewMetrics() *Metrics {
	return &Metrics{
		gamesPerDay:  make(map[string]int),
		userGames:    make(map[string]int),
		userWins:     make(map[string]int),
		difficulties: make(map[string]*DifficultySummary),
	}
}

func (m *Metrics) Record(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	difficulty, _ := e.Payload["difficulty"].(string)
	username, _ := e.Payload["username"].(string)
	d := m.difficulty(difficulty)

	switch e.Event {
	case EventMovePlayed:
		d.MachineMoves++
		if ms, ok := e.Payload["searchMs"].(float64); ok {
			d.totalSearchMs += ms
		}
	case EventGameFinished:
		m.totalGames++
		d.Games++
		if dur, ok := e.Payload["durationSec"].(float64); ok {
			m.totalDuration += dur
		}
		m.gamesPerDay[e.Timestamp.Format("2006-01-02")]++
		if username != "" {
			m.userGames[username]++
		}
		switch e.Payload["outcome"] {
		case "player_won":
			d.PlayerWins++
			if username != "" {
				m.userWins[username]++
			}
		case "machine_won":
			d.MachineWins++
		case "draw":
			d.Draws++
		}
	}
}

func (m *Metrics) difficulty(name string) *DifficultySummary {
	d, ok := m.difficulties[name]
	if !ok {
		d = &DifficultySummary{Difficulty: name}
		m.difficulties[name] = d
	}
	return d
}

func (m *Metrics) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		TotalGames:  m.totalGames,
		GamesPerDay: copyCounts(m.gamesPerDay),
		UserGames:   copyCounts(m.userGames),
		UserWins:    copyCounts(m.userWins),
	}
	if m.totalGames > 0 {
		s.AverageDurationSec = m.totalDuration / float64(m.totalGames)
	}
	for _, d := range m.difficulties {
		row := *d
		if row.MachineMoves > 0 {
			row.MeanSearchMs = row.totalSearchMs / float64(row.MachineMoves)
		}
		s.ByDifficulty = append(s.ByDifficulty, row)
	}
	sort.Slice(s.ByDifficulty, func(i, j int) bool {
		return s.ByDifficulty[i].Difficulty < s.ByDifficulty[j].Difficulty
	})
	return s
}

func (m *Metrics) PrintStats() {
	s := m.Summary()
	log.Printf("=== ANALYTICS SUMMARY ===")
	log.Printf("Total Games: %d", s.TotalGames)
	log.Printf("Average Game Duration: %.2f seconds", s.AverageDurationSec)
	for _, d := range s.ByDifficulty {
		log.Printf("%s: games=%d player=%d machine=%d draws=%d mean search=%.2fms over %d moves",
			d.Difficulty, d.Games, d.PlayerWins, d.MachineWins, d.Draws, d.MeanSearchMs, d.MachineMoves)
	}
	log.Printf("Games Per Day: %v", s.GamesPerDay)
	log.Printf("User Game Counts: %v", s.UserGames)
	log.Printf("User Win Counts: %v", s.UserWins)
	log.Printf("========================")
}

func copyCounts(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
