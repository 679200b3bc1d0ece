package game

import (
	"errors"
	"strings"
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

// Difficulty maps to the machine's search depth.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", ErrInvalidDifficulty
	}
}

func (d Difficulty) Depth() int {
	switch d {
	case Easy:
		return 2
	case Hard:
		return 4
	default:
		return 3
	}
}

// Bot is the machine opponent of a single match.
type Bot struct {
	Difficulty Difficulty
	searcher   *Searcher
}

func NewBot(difficulty Difficulty, searcher *Searcher) *Bot {
	return &Bot{Difficulty: difficulty, searcher: searcher}
}

// ChooseMove searches the position with the machine to move.
func (b *Bot) ChooseMove(board *Board) (SearchResult, error) {
	if len(board.ValidLocations()) == 0 {
		return SearchResult{Column: NoColumn}, ErrNoLegalMove
	}
	return b.searcher.Minimax(board, b.Difficulty.Depth(), true), nil
}

// Hint suggests a column for the human using the greedy one-ply chooser.
func (b *Bot) Hint(board *Board) (int, error) {
	return b.searcher.PickBestMove(board, Player)
}
