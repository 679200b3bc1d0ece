package game

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrGameNotFound = errors.New("game not found")

// GameState is a live match plus the bookkeeping the manager needs.
type GameState struct {
	ID         string
	Username   string
	Match      *Match
	StartedAt  time.Time
	EndedAt    time.Time
	LastMoveAt time.Time
}

// Snapshot is a read-only view of a game handed to renderers, storage and
// analytics.
type Snapshot struct {
	ID         string     `json:"gameId"`
	Username   string     `json:"username"`
	Difficulty Difficulty `json:"difficulty"`
	Depth      int        `json:"depth"`
	State      State      `json:"state"`
	Turn       Side       `json:"turn"`
	Outcome    Outcome    `json:"outcome,omitempty"`
	Board      *Board     `json:"board"`
	Winning    []Coord    `json:"winning,omitempty"`
	Plies      []Ply      `json:"moves"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    time.Time  `json:"endedAt"`
}

func (g *GameState) Snapshot() Snapshot {
	d := g.Match.Difficulty()
	return Snapshot{
		ID:         g.ID,
		Username:   g.Username,
		Difficulty: d,
		Depth:      d.Depth(),
		State:      g.Match.State(),
		Turn:       g.Match.Turn(),
		Outcome:    g.Match.Outcome(),
		Board:      g.Match.Board(),
		Winning:    g.Match.WinningLine(),
		Plies:      g.Match.Plies(),
		StartedAt:  g.StartedAt,
		EndedAt:    g.EndedAt,
	}
}

type Move struct {
	Username string
	GameID   string
	Column   int
}

// MoveResult reports the human's drop, the machine's reply if it moved, and
// the position afterwards.
type MoveResult struct {
	Player     *Ply          `json:"player,omitempty"`
	Machine    *Ply          `json:"machine,omitempty"`
	Search     *SearchResult `json:"search,omitempty"`
	SearchTime time.Duration `json:"searchTimeNs,omitempty"`
	Resumed    bool          `json:"resumed,omitempty"`
	Game       Snapshot      `json:"game"`
}

type ManagerConfig struct {
	Rows           int
	Cols           int
	IdleTimeout    time.Duration
	ParallelSearch bool
	Seed           int64
	// OnFinish runs in its own goroutine once per finished game.
	OnFinish func(Snapshot)
}

// Manager owns every live match. All access goes through its mutex, so the
// matches themselves never see concurrent calls.
type Manager struct {
	mu          sync.Mutex
	games       map[string]*GameState
	userToGame  map[string]string
	rows, cols  int
	idleTimeout time.Duration
	parallel    bool
	seeds       *rand.Rand
	onFinish    func(Snapshot)
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Rows <= 0 {
		cfg.Rows = DefaultRows
	}
	if cfg.Cols <= 0 {
		cfg.Cols = DefaultColumns
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Manager{
		games:       make(map[string]*GameState),
		userToGame:  make(map[string]string),
		rows:        cfg.Rows,
		cols:        cfg.Cols,
		idleTimeout: cfg.IdleTimeout,
		parallel:    cfg.ParallelSearch,
		seeds:       rand.New(rand.NewSource(cfg.Seed)),
		onFinish:    cfg.OnFinish,
	}
}

// StartGame rejoins the user's unfinished game or starts a new one. When the
// machine is drawn to move first its opening is already played.
func (m *Manager) StartGame(username string, d Difficulty) (MoveResult, error) {
	d, err := ParseDifficulty(string(d))
	if err != nil {
		return MoveResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if gid, ok := m.userToGame[username]; ok {
		if g, exists := m.games[gid]; exists && g.Match.State() == InProgress {
			return MoveResult{Resumed: true, Game: g.Snapshot()}, nil
		}
	}
	searcher := NewSearcher(m.seeds.Int63())
	searcher.Parallel = m.parallel
	match, err := NewMatch(m.rows, m.cols, searcher)
	if err != nil {
		return MoveResult{}, err
	}
	g := &GameState{Username: username, Match: match}
	return m.beginLocked(g, d)
}

// Restart resigns the user's unfinished game, if any, and starts a fresh
// one on the same match.
func (m *Manager) Restart(username string, d Difficulty) (MoveResult, error) {
	d, err := ParseDifficulty(string(d))
	if err != nil {
		return MoveResult{}, err
	}
	m.mu.Lock()
	gid, ok := m.userToGame[username]
	g, exists := m.games[gid]
	if !ok || !exists {
		m.mu.Unlock()
		return m.StartGame(username, d)
	}
	defer m.mu.Unlock()

	if g.Match.State() == InProgress {
		_ = g.Match.Resign(Player)
		m.finishLocked(g)
	}
	delete(m.games, g.ID)
	g.Match.Restart()
	return m.beginLocked(g, d)
}

func (m *Manager) beginLocked(g *GameState, d Difficulty) (MoveResult, error) {
	if err := g.Match.SelectDifficulty(d); err != nil {
		return MoveResult{}, err
	}
	now := time.Now()
	g.ID = uuid.NewString()
	g.StartedAt = now
	g.EndedAt = time.Time{}
	g.LastMoveAt = now
	m.games[g.ID] = g
	m.userToGame[g.Username] = g.ID

	res := MoveResult{}
	if g.Match.Turn() == Machine {
		if err := m.machineTurnLocked(g, &res); err != nil {
			return MoveResult{}, err
		}
	}
	res.Game = g.Snapshot()
	return res, nil
}

// HandleMove applies the human's column and, unless the game ended, the
// machine's reply.
func (m *Manager) HandleMove(move Move) (MoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.games[move.GameID]
	if !ok {
		return MoveResult{}, ErrGameNotFound
	}
	if g.Username != move.Username {
		return MoveResult{}, ErrNotYourTurn
	}
	ply, err := g.Match.PlayerMove(move.Column)
	if err != nil {
		return MoveResult{}, err
	}
	g.LastMoveAt = time.Now()
	res := MoveResult{Player: &ply}

	if g.Match.State() == Finished {
		m.finishLocked(g)
	} else if err := m.machineTurnLocked(g, &res); err != nil {
		return MoveResult{}, err
	}
	res.Game = g.Snapshot()
	return res, nil
}

func (m *Manager) machineTurnLocked(g *GameState, res *MoveResult) error {
	start := time.Now()
	ply, search, err := g.Match.MachineMove()
	if err != nil {
		return err
	}
	res.SearchTime = time.Since(start)
	res.Machine = &ply
	res.Search = &search
	g.LastMoveAt = time.Now()
	if g.Match.State() == Finished {
		m.finishLocked(g)
	}
	return nil
}

func (m *Manager) finishLocked(g *GameState) {
	g.EndedAt = time.Now()
	if m.onFinish != nil {
		go m.onFinish(g.Snapshot())
	}
}

// Hint suggests a column for the user's next move.
func (m *Manager) Hint(gameID, username string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return NoColumn, ErrGameNotFound
	}
	if g.Username != username {
		return NoColumn, ErrNotYourTurn
	}
	return g.Match.Hint()
}

func (m *Manager) GetGame(gameID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	if !ok {
		return Snapshot{}, false
	}
	return g.Snapshot(), true
}

// GameForUser returns the latest game of username.
func (m *Manager) GameForUser(username string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.userToGame[username]; ok {
		if g, exists := m.games[id]; exists {
			return g.Snapshot(), true
		}
	}
	return Snapshot{}, false
}

// Abandon resigns the user's unfinished game and forgets the user.
func (m *Manager) Abandon(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.userToGame[username]; ok {
		if g, exists := m.games[id]; exists && g.Match.State() == InProgress {
			_ = g.Match.Resign(Player)
			m.finishLocked(g)
		}
	}
	delete(m.userToGame, username)
}

// SweepIdle forfeits games with no move inside the idle timeout and drops
// finished games older than it. A non-positive timeout disables sweeping.
func (m *Manager) SweepIdle() {
	if m.idleTimeout <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	for id, g := range m.games {
		switch g.Match.State() {
		case InProgress:
			if now.Sub(g.LastMoveAt) > m.idleTimeout {
				_ = g.Match.Resign(Player)
				m.finishLocked(g)
				log.Printf("game %s forfeited due to inactivity", id)
			}
		case Finished:
			if now.Sub(g.EndedAt) > m.idleTimeout {
				delete(m.games, id)
				if m.userToGame[g.Username] == id {
					delete(m.userToGame, g.Username)
				}
			}
		}
	}
}

// Len is the number of games held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}
