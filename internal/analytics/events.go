package analytics

import (
	"encoding/json"
	"time"

	"github.com/Halfis/Connect4/internal/game"
)

const (
	EventGameStarted  = "game_started"
	EventMovePlayed   = "move_played"
	EventGameFinished = "game_finished"
)

// Event is the envelope written to the topic. Payload values arrive as
// float64 after decoding, as usual for JSON numbers.
type Event struct {
	Event     string         `json:"event"`
	GameID    string         `json:"gameId"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

func Decode(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

func GameStarted(s game.Snapshot) Event {
	return Event{
		Event:  EventGameStarted,
		GameID: s.ID,
		Payload: map[string]any{
			"username":   s.Username,
			"difficulty": string(s.Difficulty),
			"depth":      s.Depth,
			"rows":       s.Board.Rows(),
			"cols":       s.Board.Cols(),
		},
		Timestamp: s.StartedAt.UTC(),
	}
}

// MovePlayed describes the machine reply in res. ok is false when the
// machine did not move.
func MovePlayed(res game.MoveResult) (Event, bool) {
	if res.Machine == nil || res.Search == nil {
		return Event{}, false
	}
	s := res.Game
	return Event{
		Event:  EventMovePlayed,
		GameID: s.ID,
		Payload: map[string]any{
			"username":   s.Username,
			"difficulty": string(s.Difficulty),
			"depth":      s.Depth,
			"column":     res.Machine.Column,
			"score":      res.Search.Score,
			"searchMs":   float64(res.SearchTime.Microseconds()) / 1000,
			"ply":        len(s.Plies),
		},
		Timestamp: time.Now().UTC(),
	}, true
}

func GameFinished(s game.Snapshot) Event {
	winner := ""
	if w := s.Outcome.Winner(); w != 0 {
		winner = w.String()
	}
	return Event{
		Event:  EventGameFinished,
		GameID: s.ID,
		Payload: map[string]any{
			"username":    s.Username,
			"difficulty":  string(s.Difficulty),
			"outcome":     s.Outcome.String(),
			"winner":      winner,
			"moves":       len(s.Plies),
			"durationSec": s.EndedAt.Sub(s.StartedAt).Seconds(),
		},
		Timestamp: s.EndedAt.UTC(),
	}
}
