package store

import (
	"context"
	"fmt"

	"github.com/Wybxc/zamuza/internal/engine"
)

// RecordFiring inserts one firing record. Satisfies engine.Journal.
//
// Uses ON CONFLICT DO NOTHING on the (run_token, seq) key so a re-delivered
// record is silently ignored rather than failing the run.
func (s *Store) RecordFiring(ctx context.Context, f engine.Firing) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO firings
		(run_token, seq, rule, left_symbol, right_symbol, left_node, right_node, allocated, enqueued)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_token, seq) DO NOTHING
	`,
		f.RunToken,
		f.Seq,
		f.Rule,
		f.LeftSymbol,
		f.RightSymbol,
		f.LeftNode,
		f.RightNode,
		f.Allocated,
		f.Enqueued,
	)
	if err != nil {
		return fmt.Errorf("record firing: %w", err)
	}

	return nil
}

// ReadFirings returns every firing of the given run in reduction order.
func (s *Store) ReadFirings(ctx context.Context, runToken string) ([]engine.Firing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, seq, rule, left_symbol, right_symbol, left_node, right_node, allocated, enqueued
		FROM firings
		WHERE run_token = ?
		ORDER BY seq
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read firings: %w", err)
	}
	defer rows.Close()

	var out []engine.Firing
	for rows.Next() {
		var f engine.Firing
		if err := rows.Scan(
			&f.RunToken, &f.Seq, &f.Rule,
			&f.LeftSymbol, &f.RightSymbol,
			&f.LeftNode, &f.RightNode,
			&f.Allocated, &f.Enqueued,
		); err != nil {
			return nil, fmt.Errorf("read firings: scan: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read firings: %w", err)
	}

	return out, nil
}

// RunSummary describes one recorded run.
type RunSummary struct {
	Token   string
	Firings int
}

// Runs lists every recorded run. UUIDv7 tokens order by start time, so the
// listing is chronological.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, COUNT(*)
		FROM firings
		GROUP BY run_token
		ORDER BY run_token
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.Token, &r.Firings); err != nil {
			return nil, fmt.Errorf("list runs: scan: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	return out, nil
}

// LatestRun returns the most recent run token, or "" when the journal is
// empty. UUIDv7 tokens make the lexicographic maximum the newest run.
func (s *Store) LatestRun(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(run_token), '') FROM firings
	`).Scan(&token)
	if err != nil {
		return "", fmt.Errorf("latest run: %w", err)
	}
	return token, nil
}
