package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kmorav/gom3u8/internal/domain"
)

// HistoryEntry is one archived job result.
type HistoryEntry struct {
	JobID      string    `json:"job_id"`
	BatchID    string    `json:"batch_id"`
	URL        string    `json:"url"`
	OutputFile string    `json:"output_file"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (s *PersistentStore) SaveResult(ctx context.Context, batchID string, res domain.JobResult) error {
	query := `INSERT OR REPLACE INTO job_history (id, batch_id, url, output_file, success, message, started_at, finished_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		res.JobID,
		batchID,
		res.URL,
		res.OutputFile,
		res.Success,
		res.Message,
		res.StartedAt,
		res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}
	return nil
}

// ListResults returns the most recent entries, newest first. The job id is a
// KSUID, so sorting by it is chronological.
func (s *PersistentStore) ListResults(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, batch_id, url, output_file, success, message, started_at, finished_at
              FROM job_history ORDER BY id DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.JobID, &e.BatchID, &e.URL, &e.OutputFile, &e.Success, &e.Message, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
