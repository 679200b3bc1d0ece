package game

import (
	"errors"
	"testing"
	"time"
)

func waitFinished(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a finished game notification")
		return Snapshot{}
	}
}

func newTestManager(rows, cols int, idle time.Duration) (*Manager, chan Snapshot) {
	finished := make(chan Snapshot, 8)
	m := NewManager(ManagerConfig{
		Rows:        rows,
		Cols:        cols,
		IdleTimeout: idle,
		Seed:        99,
		OnFinish:    func(s Snapshot) { finished <- s },
	})
	return m, finished
}

func TestManagerStartGame(t *testing.T) {
	m, _ := newTestManager(0, 0, time.Minute)
	if _, err := m.StartGame("alice", "extreme"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Fatalf("expected ErrInvalidDifficulty, got %v", err)
	}
	res, err := m.StartGame("alice", Medium)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	g := res.Game
	if g.ID == "" || g.State != InProgress || g.Turn != Player || g.Depth != 3 {
		t.Fatalf("unexpected snapshot %+v", g)
	}
	if g.Board.Rows() != DefaultRows || g.Board.Cols() != DefaultColumns {
		t.Fatalf("expected default board, got %dx%d", g.Board.Rows(), g.Board.Cols())
	}
	switch len(g.Plies) {
	case 0:
		if res.Machine != nil {
			t.Fatalf("expected no machine ply")
		}
	case 1:
		if res.Machine == nil || g.Plies[0].Side != Machine {
			t.Fatalf("expected the machine's opening, got %+v", g.Plies)
		}
	default:
		t.Fatalf("expected at most one ply, got %d", len(g.Plies))
	}

	again, err := m.StartGame("alice", Hard)
	if err != nil || again.Game.ID != g.ID || !again.Resumed {
		t.Fatalf("expected to rejoin %s, got %s (%v)", g.ID, again.Game.ID, err)
	}
	if s, ok := m.GameForUser("alice"); !ok || s.ID != g.ID {
		t.Fatalf("expected user lookup to find %s", g.ID)
	}
}

func TestManagerHandleMove(t *testing.T) {
	m, _ := newTestManager(0, 0, time.Minute)
	res, err := m.StartGame("bob", Easy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	id := res.Game.ID

	if _, err := m.HandleMove(Move{Username: "bob", GameID: "missing", Column: 0}); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := m.HandleMove(Move{Username: "eve", GameID: id, Column: 0}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if _, err := m.HandleMove(Move{Username: "bob", GameID: id, Column: 9}); !errors.Is(err, ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}

	plies := len(res.Game.Plies)
	res, err = m.HandleMove(Move{Username: "bob", GameID: id, Column: 3})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if res.Player == nil || res.Player.Column != 3 || res.Player.Side != Player {
		t.Fatalf("unexpected player ply %+v", res.Player)
	}
	if res.Machine == nil || res.Search == nil || res.Search.Column != res.Machine.Column {
		t.Fatalf("expected a machine reply, got %+v", res)
	}
	if len(res.Game.Plies) != plies+2 || res.Game.Turn != Player {
		t.Fatalf("expected player to move after reply, got %+v", res.Game)
	}

	col, err := m.Hint(id, "bob")
	if err != nil || !res.Game.Board.IsValidLocation(col) {
		t.Fatalf("expected a legal hint, got %d (%v)", col, err)
	}
}

func TestManagerPlaysToDraw(t *testing.T) {
	m, finished := newTestManager(2, 3, time.Minute)
	res, err := m.StartGame("carol", Hard)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 0; res.Game.State == InProgress; i++ {
		if i > 3 {
			t.Fatalf("expected the game to end")
		}
		col := res.Game.Board.ValidLocations()[0]
		if res, err = m.HandleMove(Move{Username: "carol", GameID: res.Game.ID, Column: col}); err != nil {
			t.Fatalf("move: %v", err)
		}
	}
	if res.Game.Outcome != Draw {
		t.Fatalf("expected draw, got %v", res.Game.Outcome)
	}
	s := waitFinished(t, finished)
	if s.ID != res.Game.ID || s.Outcome != Draw || len(s.Plies) != 6 || s.EndedAt.IsZero() {
		t.Fatalf("unexpected finished snapshot %+v", s)
	}
	if _, err := m.HandleMove(Move{Username: "carol", GameID: s.ID, Column: 0}); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
}

func TestManagerRestart(t *testing.T) {
	m, finished := newTestManager(0, 0, time.Minute)
	first, err := m.StartGame("dave", Easy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := m.Restart("dave", Hard)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if second.Game.ID == first.Game.ID || second.Game.Difficulty != Hard {
		t.Fatalf("expected a fresh hard game, got %+v", second.Game)
	}
	if _, ok := m.GetGame(first.Game.ID); ok {
		t.Fatalf("expected the old game to be dropped")
	}
	s := waitFinished(t, finished)
	if s.ID != first.Game.ID || s.Outcome != MachineWon {
		t.Fatalf("expected the abandoned game to be resigned, got %+v", s)
	}
	fresh, err := m.Restart("erin", Easy)
	if err != nil || fresh.Game.State != InProgress {
		t.Fatalf("expected restart to start a game for a new user, got %v", err)
	}
}

func TestManagerNormalizesDifficulty(t *testing.T) {
	m, _ := newTestManager(0, 0, time.Minute)
	res, err := m.StartGame("ann", "EASY")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if res.Game.Difficulty != Easy || res.Game.Depth != 2 {
		t.Fatalf("expected easy at depth 2, got %q at depth %d", res.Game.Difficulty, res.Game.Depth)
	}
	res, err = m.Restart("ann", "Hard")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if res.Game.Difficulty != Hard || res.Game.Depth != 4 {
		t.Fatalf("expected hard at depth 4, got %q at depth %d", res.Game.Difficulty, res.Game.Depth)
	}
}

func TestManagerSweepIdle(t *testing.T) {
	m, finished := newTestManager(0, 0, 10*time.Millisecond)
	res, err := m.StartGame("frank", Medium)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	m.SweepIdle()
	s := waitFinished(t, finished)
	if s.ID != res.Game.ID || s.Outcome != MachineWon {
		t.Fatalf("expected an idle forfeit, got %+v", s)
	}
	if g, ok := m.GetGame(res.Game.ID); !ok || g.State != Finished {
		t.Fatalf("expected the finished game to be kept until the next sweep")
	}
	time.Sleep(20 * time.Millisecond)
	m.SweepIdle()
	if m.Len() != 0 {
		t.Fatalf("expected finished games to be pruned, got %d", m.Len())
	}
	if _, ok := m.GameForUser("frank"); ok {
		t.Fatalf("expected the user mapping to be pruned")
	}
}

func TestManagerAbandon(t *testing.T) {
	m, finished := newTestManager(0, 0, time.Minute)
	res, err := m.StartGame("gina", Easy)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	m.Abandon("gina")
	if s := waitFinished(t, finished); s.ID != res.Game.ID || s.Outcome != MachineWon {
		t.Fatalf("expected abandoned game to be lost, got %+v", s)
	}
	if _, ok := m.GameForUser("gina"); ok {
		t.Fatalf("expected user to be forgotten")
	}
}
