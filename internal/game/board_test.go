package game

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, lines ...string) *Board {
	t.Helper()
	b, err := ParseBoard(lines...)
	if err != nil {
		t.Fatalf("parse board: %v", err)
	}
	return b
}

// randomBoard drops up to n random pieces, ignoring wins along the way.
func randomBoard(rng *rand.Rand, rows, cols, n int) *Board {
	b := NewBoard(rows, cols)
	for i := 0; i < n; i++ {
		valid := b.ValidLocations()
		if len(valid) == 0 {
			break
		}
		col := valid[rng.Intn(len(valid))]
		side := Player
		if rng.Intn(2) == 0 {
			side = Machine
		}
		b.Drop(b.NextOpenRow(col), col, side)
	}
	return b
}

func TestNewBoardIsEmpty(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultColumns)
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			if b.At(r, c) != Empty {
				t.Fatalf("expected empty cell at (%d,%d), got %v", r, c, b.At(r, c))
			}
		}
	}
	want := []int{0, 1, 2, 3, 4, 5, 6}
	if got := b.ValidLocations(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected valid locations %v, got %v", want, got)
	}
	if b.CenterColumn() != 3 {
		t.Fatalf("expected center column 3, got %d", b.CenterColumn())
	}
}

func TestNewBoardPanicsOnBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for 0x7 board")
		}
	}()
	NewBoard(0, 7)
}

func TestIsValidLocationOutOfRange(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultColumns)
	for _, col := range []int{-1, 7, 100} {
		if b.IsValidLocation(col) {
			t.Errorf("expected column %d to be invalid", col)
		}
	}
}

func TestDropStacksFromTheFloor(t *testing.T) {
	b := NewBoard(DefaultRows, DefaultColumns)
	for want := 0; want < DefaultRows; want++ {
		row := b.NextOpenRow(2)
		if row != want {
			t.Fatalf("expected next open row %d, got %d", want, row)
		}
		b.Drop(row, 2, Player)
	}
	if b.IsValidLocation(2) {
		t.Fatalf("expected full column to be invalid")
	}
	want := []int{0, 1, 3, 4, 5, 6}
	if got := b.ValidLocations(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected valid locations %v, got %v", want, got)
	}
	if b.Count(Player) != DefaultRows {
		t.Fatalf("expected %d player pieces, got %d", DefaultRows, b.Count(Player))
	}
}

func TestNextOpenRowPanicsOnFullColumn(t *testing.T) {
	b := mustParse(t, "P..", "M..")
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for full column")
		}
	}()
	b.NextOpenRow(0)
}

func TestCopyDoesNotAlias(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		orig := randomBoard(rng, DefaultRows, DefaultColumns, rng.Intn(30))
		before := orig.String()
		cp := orig.Copy()
		if cp.String() != before {
			t.Fatalf("expected copy to equal original")
		}
		for _, col := range cp.ValidLocations() {
			cp.Drop(cp.NextOpenRow(col), col, Machine)
		}
		for r := 0; r < cp.Rows(); r++ {
			for c := 0; c < cp.Cols(); c++ {
				cp.cells[r][c] = PlayerPiece
			}
		}
		if orig.String() != before {
			t.Fatalf("original changed after mutating copy:\n%s\nwas\n%s", orig, before)
		}
	}
}

func TestParseBoardRoundTrip(t *testing.T) {
	lines := []string{
		".......",
		".......",
		".......",
		"...M...",
		"..PP...",
		"MPMMP..",
	}
	b := mustParse(t, lines...)
	if b.At(0, 0) != MachinePiece || b.At(0, 1) != PlayerPiece || b.At(2, 3) != MachinePiece {
		t.Fatalf("unexpected cells:\n%s", b)
	}
	want := lines[0]
	for _, l := range lines[1:] {
		want += "\n" + l
	}
	if b.String() != want {
		t.Fatalf("expected\n%s\ngot\n%s", want, b.String())
	}
}

func TestParseBoardErrors(t *testing.T) {
	cases := [][]string{
		nil,
		{""},
		{"...", ".."},
		{"..X"},
	}
	for _, lines := range cases {
		if _, err := ParseBoard(lines...); err == nil {
			t.Errorf("expected error for %q", lines)
		}
	}
}

func TestBoardMarshalJSON(t *testing.T) {
	b := mustParse(t, "...", "M..", "..P")
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got struct {
		Rows  int     `json:"rows"`
		Cols  int     `json:"cols"`
		Cells [][]int `json:"cells"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := [][]int{{0, 0, 1}, {2, 0, 0}, {0, 0, 0}}
	if got.Rows != 3 || got.Cols != 3 || !reflect.DeepEqual(got.Cells, want) {
		t.Fatalf("expected 3x3 %v, got %dx%d %v", want, got.Rows, got.Cols, got.Cells)
	}
}
