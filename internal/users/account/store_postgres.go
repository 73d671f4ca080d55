// Copyright (c) 2026 Vidora. All rights reserved.

package account

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidora/vidora/internal/platform/dberr"
)

// defaultHistoryLimit bounds list queries when the caller passes no limit.
const defaultHistoryLimit = 50

// PostgresWatchHistoryRepository implements WatchHistoryRepository using pgx.
type PostgresWatchHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewWatchHistoryRepository creates a new PostgreSQL implementation of the
// WatchHistoryRepository.
func NewWatchHistoryRepository(pool *pgxpool.Pool) *PostgresWatchHistoryRepository {
	return &PostgresWatchHistoryRepository{pool: pool}
}

/*
ListByUserID returns the newest watch entries for a user.

Parameters:
  - context: context.Context
  - userID: string
  - limit: int (Non-positive values fall back to the default)

Returns:
  - []WatchEntry: Entries ordered by watch time, newest first
  - error: Execution errors
*/
func (repository *PostgresWatchHistoryRepository) ListByUserID(context context.Context, userID string, limit int) ([]WatchEntry, error) {
	const query = `
		SELECT id, userid, videoid, title, thumbnailurl, durationseconds, progressseconds, watchedat
		FROM users.watch_history
		WHERE userid = $1
		ORDER BY watchedat DESC
		LIMIT $2`

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := repository.pool.Query(context, query, userID, limit)
	if err != nil {
		return nil, dberr.Wrap(err, "WatchHistory")
	}
	defer rows.Close()

	entries := []WatchEntry{}
	for rows.Next() {
		var entry WatchEntry
		var thumbnailURL *string

		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.VideoID,
			&entry.Title,
			&thumbnailURL,
			&entry.DurationSeconds,
			&entry.ProgressSeconds,
			&entry.WatchedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "WatchHistory")
		}

		if thumbnailURL != nil {
			entry.ThumbnailURL = *thumbnailURL
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "WatchHistory")
	}

	return entries, nil
}

/*
Record upserts a watch entry, keyed on (user, video).

Description: A repeated report for the same video refreshes progress and
timestamp in place; the uniqueness constraint on (userid, videoid) drives the
conflict arm.

Parameters:
  - context: context.Context
  - entry: *WatchEntry

Returns:
  - error: Execution errors
*/
func (repository *PostgresWatchHistoryRepository) Record(context context.Context, entry *WatchEntry) error {
	const query = `
		INSERT INTO users.watch_history (
			id, userid, videoid, title, thumbnailurl, durationseconds, progressseconds, watchedat
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8)
		ON CONFLICT (userid, videoid) DO UPDATE
		SET progressseconds = EXCLUDED.progressseconds,
		    durationseconds = EXCLUDED.durationseconds,
		    watchedat = EXCLUDED.watchedat`

	_, err := repository.pool.Exec(context, query,
		entry.ID,
		entry.UserID,
		entry.VideoID,
		entry.Title,
		entry.ThumbnailURL,
		entry.DurationSeconds,
		entry.ProgressSeconds,
		entry.WatchedAt,
	)

	if err != nil {
		return dberr.Wrap(err, "WatchHistory")
	}

	return nil
}

// compile-time interface check
var _ WatchHistoryRepository = (*PostgresWatchHistoryRepository)(nil)
