package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

func (p *PostgresStore) EnsureTables(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	difficulty TEXT NOT NULL,
	outcome TEXT NOT NULL,
	board_rows INTEGER NOT NULL,
	board_cols INTEGER NOT NULL,
	moves INTEGER[] NOT NULL,
	started_at TIMESTAMP,
	ended_at TIMESTAMP
);
CREATE INDEX IF NOT EXISTS games_outcome_idx ON games (outcome);
`)
	return err
}

func (p *PostgresStore) SaveGame(ctx context.Context, g CompletedGame) error {
	if p == nil || p.pool == nil {
		return nil
	}
	moves := make([]int32, len(g.Moves))
	for i, m := range g.Moves {
		moves[i] = int32(m)
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO games (id, username, difficulty, outcome, board_rows, board_cols, moves, started_at, ended_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) ON CONFLICT (id) DO NOTHING`,
		g.ID, g.Username, g.Difficulty, g.Outcome, g.Rows, g.Cols, moves, g.StartedAt, g.EndedAt)
	return err
}

func (p *PostgresStore) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	rows, err := p.pool.Query(ctx, `
SELECT username, COUNT(*) AS wins
FROM games
WHERE outcome = 'player_won'
GROUP BY username
ORDER BY wins DESC, username
LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []LeaderboardRow
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.Username, &row.Wins); err != nil {
			return nil, err
		}
		res = append(res, row)
	}
	return res, rows.Err()
}

func (p *PostgresStore) GetDifficultyStats(ctx context.Context) ([]DifficultyStats, error) {
	rows, err := p.pool.Query(ctx, `
SELECT difficulty,
	COUNT(*),
	COUNT(*) FILTER (WHERE outcome = 'player_won'),
	COUNT(*) FILTER (WHERE outcome = 'machine_won'),
	COUNT(*) FILTER (WHERE outcome = 'draw')
FROM games
GROUP BY difficulty
ORDER BY difficulty`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []DifficultyStats
	for rows.Next() {
		var s DifficultyStats
		if err := rows.Scan(&s.Difficulty, &s.Games, &s.PlayerWins, &s.MachineWins, &s.Draws); err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
