package game

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotYourTurn    = errors.New("not your turn")
	ErrGameFinished   = errors.New("game already finished")
	ErrNotInProgress  = errors.New("game has not started")
	ErrAlreadyStarted = errors.New("difficulty already selected")
)

// State is the lifecycle stage of a Match.
type State int

const (
	SelectingDifficulty State = iota
	InProgress
	Finished
)

func (s State) String() string {
	switch s {
	case SelectingDifficulty:
		return "selecting_difficulty"
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Ply is one committed drop.
type Ply struct {
	Side   Side `json:"side"`
	Column int  `json:"column"`
	Row    int  `json:"row"`
}

// Match drives one human-versus-machine game through
// SelectingDifficulty -> InProgress -> Finished. It is not safe for
// concurrent use.
type Match struct {
	rows, cols int
	board      *Board
	state      State
	turn       Side
	outcome    Outcome
	winning    []Coord
	plies      []Ply
	searcher   *Searcher
	bot        *Bot
}

// NewMatch prepares a match waiting for a difficulty. A nil searcher is
// replaced by a time-seeded one.
func NewMatch(rows, cols int, searcher *Searcher) (*Match, error) {
	board, err := NewGame(rows, cols)
	if err != nil {
		return nil, err
	}
	if searcher == nil {
		searcher = NewSearcher(time.Now().UnixNano())
	}
	return &Match{rows: rows, cols: cols, board: board, searcher: searcher}, nil
}

// SelectDifficulty starts play on a fresh board with a randomly chosen
// first mover.
func (m *Match) SelectDifficulty(d Difficulty) error {
	if m.state != SelectingDifficulty {
		return ErrAlreadyStarted
	}
	d, err := ParseDifficulty(string(d))
	if err != nil {
		return err
	}
	m.board = NewBoard(m.rows, m.cols)
	m.bot = NewBot(d, m.searcher)
	m.turn = Player
	if m.searcher.rng.Intn(2) == 1 {
		m.turn = Machine
	}
	m.state = InProgress
	return nil
}

// Restart discards the current game and waits for a new difficulty.
func (m *Match) Restart() {
	m.board = NewBoard(m.rows, m.cols)
	m.state = SelectingDifficulty
	m.turn = 0
	m.outcome = NoOutcome
	m.winning = nil
	m.plies = nil
	m.bot = nil
}

// PlayerMove drops the human's piece. Validation errors leave the match
// untouched so the caller can ask again.
func (m *Match) PlayerMove(col int) (Ply, error) {
	return m.apply(Player, col)
}

// MachineMove lets the bot search and commits its column.
func (m *Match) MachineMove() (Ply, SearchResult, error) {
	if err := m.checkTurn(Machine); err != nil {
		return Ply{}, SearchResult{}, err
	}
	res, err := m.bot.ChooseMove(m.board.Copy())
	if err != nil {
		return Ply{}, res, err
	}
	ply, err := m.apply(Machine, res.Column)
	return ply, res, err
}

// Resign ends the game in the opponent's favour.
func (m *Match) Resign(side Side) error {
	if m.state != InProgress {
		return m.stateErr()
	}
	m.finish(winOutcome(side.Opponent()))
	return nil
}

// Hint suggests a column for the human.
func (m *Match) Hint() (int, error) {
	if err := m.checkTurn(Player); err != nil {
		return NoColumn, err
	}
	return m.bot.Hint(m.board)
}

func (m *Match) apply(side Side, col int) (Ply, error) {
	if err := m.checkTurn(side); err != nil {
		return Ply{}, err
	}
	row, err := AttemptPlayerMove(m.board, col, side)
	if err != nil {
		return Ply{}, fmt.Errorf("column %d: %w", col, err)
	}
	ply := Ply{Side: side, Column: col, Row: row}
	m.plies = append(m.plies, ply)

	if line, won := WinningLine(m.board, side); won {
		m.winning = line
		m.finish(winOutcome(side))
	} else if m.board.IsFull() {
		m.finish(Draw)
	} else {
		m.turn = side.Opponent()
	}
	return ply, nil
}

func (m *Match) checkTurn(side Side) error {
	if m.state != InProgress {
		return m.stateErr()
	}
	if m.turn != side {
		return ErrNotYourTurn
	}
	return nil
}

func (m *Match) stateErr() error {
	if m.state == Finished {
		return ErrGameFinished
	}
	return ErrNotInProgress
}

func (m *Match) finish(o Outcome) {
	m.state = Finished
	m.outcome = o
}

func (m *Match) State() State { return m.state }

// Turn is the side to move; zero outside InProgress.
func (m *Match) Turn() Side {
	if m.state != InProgress {
		return 0
	}
	return m.turn
}

func (m *Match) Outcome() Outcome { return m.outcome }

func (m *Match) Winner() Side { return m.outcome.Winner() }

func (m *Match) WinningLine() []Coord { return m.winning }

func (m *Match) Plies() []Ply { return append([]Ply(nil), m.plies...) }

// Board returns a copy of the live board.
func (m *Match) Board() *Board { return m.board.Copy() }

func (m *Match) Difficulty() Difficulty {
	if m.bot == nil {
		return ""
	}
	return m.bot.Difficulty
}
