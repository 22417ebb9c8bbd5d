package dataset

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	// registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const ledgerSchema = `CREATE TABLE IF NOT EXISTS completed_frames (
	frame_index  INTEGER PRIMARY KEY,
	run_id       TEXT NOT NULL,
	label_count  INTEGER NOT NULL,
	completed_at TEXT NOT NULL
)`

// Ledger records which frames of a project have been fully labeled, so an interrupted run can
// resume where it stopped.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens or creates the ledger database at path.
func OpenLedger(ctx context.Context, path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open progress ledger")
	}
	// a single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		return nil, errors.Wrap(multierr.Combine(err, db.Close()), "could not configure progress ledger")
	}
	if _, err := db.ExecContext(ctx, ledgerSchema); err != nil {
		return nil, errors.Wrap(multierr.Combine(err, db.Close()), "could not create progress ledger")
	}
	return &Ledger{db: db}, nil
}

// MarkDone records a frame as labeled.
func (l *Ledger) MarkDone(ctx context.Context, index int, runID string, labelCount int) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO completed_frames (frame_index, run_id, label_count, completed_at) VALUES (?, ?, ?, ?)`,
		index, runID, labelCount, time.Now().UTC().Format(time.RFC3339Nano))
	return errors.Wrapf(err, "could not record frame %d", index)
}

// IsDone returns whether a frame has been recorded.
func (l *Ledger) IsDone(ctx context.Context, index int) (bool, error) {
	var count int
	if err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM completed_frames WHERE frame_index = ?`, index).Scan(&count); err != nil {
		return false, errors.Wrapf(err, "could not look up frame %d", index)
	}
	return count > 0, nil
}

// Completed returns every recorded frame index in increasing order.
func (l *Ledger) Completed(ctx context.Context) ([]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT frame_index FROM completed_frames ORDER BY frame_index`)
	if err != nil {
		return nil, errors.Wrap(err, "could not list completed frames")
	}
	defer rows.Close() //nolint:errcheck

	var out []int
	for rows.Next() {
		var index int
		if err := rows.Scan(&index); err != nil {
			return nil, err
		}
		out = append(out, index)
	}
	return out, rows.Err()
}

// Reset forgets every recorded frame.
func (l *Ledger) Reset(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM completed_frames`)
	return errors.Wrap(err, "could not reset progress ledger")
}

// Close closes the underlying database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
