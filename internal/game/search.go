package game

import (
	"math"
	"math/rand"
	"sync"
)

// WinScore outweighs any heuristic score so a forced win or loss always
// dominates.
const WinScore int64 = 999999999999

// NoColumn marks a search result produced at a leaf.
const NoColumn = -1

type SearchResult struct {
	Column int   `json:"column"`
	Score  int64 `json:"score"`
}

// Searcher runs depth-limited minimax for the machine. It is not safe for
// concurrent use; give every match its own.
type Searcher struct {
	rng *rand.Rand
	// Parallel explores root candidates in separate goroutines.
	Parallel bool
}

func NewSearcher(seed int64) *Searcher {
	return &Searcher{rng: rand.New(rand.NewSource(seed))}
}

// Minimax searches depth plies below b. maximizing means the machine is to
// move. A negative depth is treated as zero. A leaf or terminal root still
// yields a legal column when one exists.
func (s *Searcher) Minimax(b *Board, depth int, maximizing bool) SearchResult {
	depth = max(depth, 0)
	var res SearchResult
	if s.Parallel && depth > 0 && !IsTerminal(b) {
		res = s.parallelRoot(b, depth, maximizing)
	} else {
		res = minimax(b, depth, maximizing, s.rng)
	}
	if res.Column == NoColumn {
		if valid := b.ValidLocations(); len(valid) > 0 {
			res.Column = valid[s.rng.Intn(len(valid))]
		}
	}
	return res
}

func minimax(b *Board, depth int, maximizing bool, rng *rand.Rand) SearchResult {
	valid := b.ValidLocations()
	machineWon := WinningMove(b, Machine)
	playerWon := !machineWon && WinningMove(b, Player)
	terminal := machineWon || playerWon || len(valid) == 0

	if depth == 0 || terminal {
		switch {
		case machineWon:
			return SearchResult{Column: NoColumn, Score: WinScore}
		case playerWon:
			return SearchResult{Column: NoColumn, Score: -WinScore}
		case terminal:
			return SearchResult{Column: NoColumn, Score: 0}
		default:
			return SearchResult{Column: NoColumn, Score: int64(ScorePosition(b, Machine))}
		}
	}

	mover := Player
	best := SearchResult{Column: valid[rng.Intn(len(valid))], Score: math.MaxInt64}
	if maximizing {
		mover = Machine
		best.Score = math.MinInt64
	}
	for _, col := range valid {
		child := b.Copy()
		child.Drop(child.NextOpenRow(col), col, mover)
		score := minimax(child, depth-1, !maximizing, rng).Score
		if improves(score, best.Score, maximizing) {
			best = SearchResult{Column: col, Score: score}
		}
	}
	return best
}

// improves keeps ties with the incumbent.
func improves(score, incumbent int64, maximizing bool) bool {
	if maximizing {
		return score > incumbent
	}
	return score < incumbent
}

// parallelRoot scores each root candidate in its own goroutine, then folds
// the scores in column order exactly like minimax does.
func (s *Searcher) parallelRoot(b *Board, depth int, maximizing bool) SearchResult {
	valid := b.ValidLocations()
	mover := Player
	best := SearchResult{Column: valid[s.rng.Intn(len(valid))], Score: math.MaxInt64}
	if maximizing {
		mover = Machine
		best.Score = math.MinInt64
	}

	scores := make([]int64, len(valid))
	seeds := make([]int64, len(valid))
	for i := range seeds {
		seeds[i] = s.rng.Int63()
	}

	var wg sync.WaitGroup
	for i, col := range valid {
		wg.Add(1)
		go func(i, col int) {
			defer wg.Done()
			child := b.Copy()
			child.Drop(child.NextOpenRow(col), col, mover)
			rng := rand.New(rand.NewSource(seeds[i]))
			scores[i] = minimax(child, depth-1, !maximizing, rng).Score
		}(i, col)
	}
	wg.Wait()

	for i, col := range valid {
		if improves(scores[i], best.Score, maximizing) {
			best = SearchResult{Column: col, Score: scores[i]}
		}
	}
	return best
}

// PickBestMove is a greedy one-ply chooser: it plays side's piece in each
// legal column and keeps the column with the highest positive ScorePosition,
// falling back to a random column.
func (s *Searcher) PickBestMove(b *Board, side Side) (int, error) {
	valid := b.ValidLocations()
	if len(valid) == 0 {
		return NoColumn, ErrNoLegalMove
	}
	bestCol := valid[s.rng.Intn(len(valid))]
	bestScore := 0
	for _, col := range valid {
		tmp := b.Copy()
		tmp.Drop(tmp.NextOpenRow(col), col, side)
		if score := ScorePosition(tmp, side); score > bestScore {
			bestScore = score
			bestCol = col
		}
	}
	return bestCol, nil
}
