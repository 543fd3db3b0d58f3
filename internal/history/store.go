package history

import (
	"context"
	"database/sql"
	"time"
)

// Game statuses.
const (
	StatusPlaying      = "playing"
	StatusSolved       = "solved"
	StatusInconsistent = "inconsistent"
	StatusAbandoned    = "abandoned"
)

type Game struct {
	ID         int64  `json:"id"`
	Status     string `json:"status"`
	Rounds     int    `json:"rounds"`
	Answer     string `json:"answer,omitempty"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt,omitempty"`
}

type Stats struct {
	Games         int     `json:"games"`
	Solved        int     `json:"solved"`
	Inconsistent  int     `json:"inconsistent"`
	AverageRounds float64 `json:"averageRounds"`
	MaxRounds     int     `json:"maxRounds"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// StartGame opens a games row for a session and returns its id.
func (s *Store) StartGame(ctx context.Context, sessionID string, length, symbols int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO games(session_id, code_length, symbols, status, started_at) VALUES(?,?,?,?,?)`,
		sessionID, length, symbols, StatusPlaying, now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordObservation stores one round and bumps the game's round counter.
func (s *Store) RecordObservation(ctx context.Context, gameID int64, round int, guess string, hit, blow, remaining int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO observations(game_id, round, guess, hit, blow, remaining) VALUES(?,?,?,?,?,?)`,
		gameID, round, guess, hit, blow, remaining,
	); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE games SET rounds = MAX(rounds, ?) WHERE id=?`, round, gameID,
	); err != nil {
		return err
	}
	return tx.Commit()
}

// FinishGame closes a playing game. Finishing an already closed game is a no-op.
func (s *Store) FinishGame(ctx context.Context, gameID int64, status, answer string) error {
	var ans any
	if answer != "" {
		ans = answer
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE games SET status=?, answer=?, finished_at=? WHERE id=? AND status=?`,
		status, ans, now(), gameID, StatusPlaying,
	)
	return err
}

// Games lists a session's games, newest first.
func (s *Store) Games(ctx context.Context, sessionID string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, rounds, COALESCE(answer,''), started_at, COALESCE(finished_at,'')
		FROM games
		WHERE session_id=?
		ORDER BY id DESC
		LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Game{}
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Status, &g.Rounds, &g.Answer, &g.StartedAt, &g.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Stats aggregates over all finished games.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var avg sql.NullFloat64
	var maxRounds sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(1),
			COALESCE(SUM(status='solved'), 0),
			COALESCE(SUM(status='inconsistent'), 0),
			AVG(CASE WHEN status='solved' THEN rounds END),
			MAX(CASE WHEN status='solved' THEN rounds END)
		FROM games WHERE status != 'playing'`,
	).Scan(&st.Games, &st.Solved, &st.Inconsistent, &avg, &maxRounds)
	if err != nil {
		return Stats{}, err
	}
	st.AverageRounds = avg.Float64
	st.MaxRounds = int(maxRounds.Int64)
	return st, nil
}
