package game

import (
	"math/rand"
	"testing"
)

// bruteForceWin walks every cell in every direction looking for four.
func bruteForceWin(b *Board, side Side) bool {
	steps := [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			for _, d := range steps {
				n := 0
				for n < 4 {
					rr, cc := r+d[0]*n, c+d[1]*n
					if rr < 0 || rr >= b.Rows() || cc < 0 || cc >= b.Cols() || b.At(rr, cc) != side.Piece() {
						break
					}
					n++
				}
				if n == 4 {
					return true
				}
			}
		}
	}
	return false
}

func TestWinningMoveOrientations(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		side  Side
		want  bool
	}{
		{"horizontal", []string{".......", "...PPPP"}, Player, true},
		{"vertical", []string{"M......", "M......", "M......", "M......"}, Machine, true},
		{"up-right diagonal", []string{
			"...M...",
			"..MP...",
			".MPP...",
			"MPPP...",
		}, Machine, true},
		{"down-right diagonal", []string{
			"P......",
			"MP.....",
			"MMP....",
			"MMMP...",
		}, Player, true},
		{"three only", []string{".......", "PPP.PPP"}, Player, false},
		{"other side", []string{".......", "MMMM..."}, Player, false},
		{"broken diagonal", []string{
			"...P...",
			"..M....",
			".P.....",
			"P......",
		}, Player, false},
	}
	for _, tc := range cases {
		b := mustParse(t, tc.lines...)
		if got := WinningMove(b, tc.side); got != tc.want {
			t.Errorf("%s: expected %v, got %v\n%s", tc.name, tc.want, got, b)
		}
	}
}

func TestWinningMoveMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		rows, cols := 4+rng.Intn(4), 4+rng.Intn(5)
		b := randomBoard(rng, rows, cols, rng.Intn(rows*cols+1))
		for _, side := range []Side{Player, Machine} {
			if got, want := WinningMove(b, side), bruteForceWin(b, side); got != want {
				t.Fatalf("side %v: expected %v, got %v\n%s", side, want, got, b)
			}
		}
	}
}

func TestWinningLineCellsBelongToWinner(t *testing.T) {
	b := mustParse(t, "..M....", "..M....", "..M....", "..M.PPP")
	line, ok := WinningLine(b, Machine)
	if !ok {
		t.Fatalf("expected machine to have a winning line")
	}
	if len(line) != WindowLength {
		t.Fatalf("expected %d coords, got %d", WindowLength, len(line))
	}
	for _, p := range line {
		if b.At(p.Row, p.Col) != MachinePiece {
			t.Fatalf("coord %+v is not a machine piece", p)
		}
	}
	if _, ok := WinningLine(b, Player); ok {
		t.Fatalf("expected no player line")
	}
}

func TestSmallBoardsHaveNoWindows(t *testing.T) {
	b := mustParse(t, "PPP", "PPP", "PPP")
	if WinningMove(b, Player) {
		t.Fatalf("a 3x3 board cannot hold four in a row")
	}
	if !IsTerminal(b) {
		t.Fatalf("expected a full board to be terminal")
	}
}

func TestIsTerminalProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 2000; i++ {
		b := randomBoard(rng, DefaultRows, DefaultColumns, rng.Intn(DefaultRows*DefaultColumns+1))
		want := bruteForceWin(b, Player) || bruteForceWin(b, Machine) || len(b.ValidLocations()) == 0
		if got := IsTerminal(b); got != want {
			t.Fatalf("expected terminal %v, got %v\n%s", want, got, b)
		}
	}
}

func TestIsGameOver(t *testing.T) {
	cases := []struct {
		lines []string
		want  Outcome
		over  bool
	}{
		{[]string{".......", "MMMMPPP"}, MachineWon, true},
		{[]string{"P......", "P......", "P......", "PMM.M.."}, PlayerWon, true},
		{[]string{"PMP", "MPM"}, Draw, true},
		{[]string{".......", "...P..."}, NoOutcome, false},
	}
	for _, tc := range cases {
		got, over := IsGameOver(mustParse(t, tc.lines...))
		if got != tc.want || over != tc.over {
			t.Errorf("%v: expected %v/%v, got %v/%v", tc.lines, tc.want, tc.over, got, over)
		}
	}
}

func TestAttemptPlayerMove(t *testing.T) {
	b := mustParse(t, "P..", "M..")
	if _, err := AttemptPlayerMove(b, 3, Player); err != ErrInvalidColumn {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
	if _, err := AttemptPlayerMove(b, -1, Player); err != ErrInvalidColumn {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
	if _, err := AttemptPlayerMove(b, 0, Player); err != ErrColumnFull {
		t.Fatalf("expected ErrColumnFull, got %v", err)
	}
	row, err := AttemptPlayerMove(b, 2, Machine)
	if err != nil || row != 0 {
		t.Fatalf("expected row 0, got %d (%v)", row, err)
	}
	if b.At(0, 2) != MachinePiece {
		t.Fatalf("expected machine piece at (0,2)")
	}
}

func TestNewGameRejectsBadDimensions(t *testing.T) {
	if _, err := NewGame(0, 7); err != ErrInvalidDimensions {
		t.Fatalf("expected ErrInvalidDimensions, got %v", err)
	}
	b, err := NewGame(DefaultRows, DefaultColumns)
	if err != nil || b.Rows() != 6 || b.Cols() != 7 {
		t.Fatalf("expected 6x7 board, got %v", err)
	}
}
