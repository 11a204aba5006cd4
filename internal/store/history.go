package store

import (
	"context"
	"fmt"
	"time"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

// historyRepository is the SQLite-backed implementation of
// [ConfirmationHistory]. It executes all audit-log operations directly
// against the "confirmation_history" table using the embedded [*DB]
// connection.
type historyRepository struct {
	*DB
	logger *logger.Logger
}

// NewConfirmationHistory constructs a [ConfirmationHistory] backed by the
// provided database connection and logger.
func NewConfirmationHistory(db *DB, logger *logger.Logger) ConfirmationHistory {
	return &historyRepository{
		DB:     db,
		logger: logger,
	}
}

// RecordAction persists one resolved confirmation. A zero CreatedAt is
// replaced with the current UTC time at build stage.
func (h *historyRepository) RecordAction(ctx context.Context, entry models.ConfirmationHistoryEntry) error {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertHistoryQuery(entry)
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.RecordAction").
			Str("account_name", entry.AccountName).
			Msg("failed to create query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := h.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.RecordAction").
			Str("account_name", entry.AccountName).
			Str("confirmation_id", entry.ConfirmationID).
			Msg("failed to insert confirmation history entry")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.RecordAction").
			Msg("failed to read affected rows count")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrHistoryNotRecorded
	}

	return nil
}

// History lists recorded confirmations, newest first, optionally narrowed
// by filter. Returns an empty slice when nothing matches.
func (h *historyRepository) History(ctx context.Context, filter HistoryFilter) ([]models.ConfirmationHistoryEntry, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectHistoryQuery(filter)
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.History").
			Str("account_name", filter.AccountName).
			Msg("failed to create query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := h.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.History").
			Str("account_name", filter.AccountName).
			Msg("failed to execute query for confirmation history")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	entries := make([]models.ConfirmationHistoryEntry, 0, 50)

	for rows.Next() {
		var entry models.ConfirmationHistoryEntry

		scanErr := rows.Scan(
			&entry.ID,
			&entry.AccountName,
			&entry.ConfirmationID,
			&entry.Type,
			&entry.Headline,
			&entry.Action,
			&entry.ResultCode,
			&entry.CreatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).
				Str("func", "historyRepository.History").
				Msg("failed to scan confirmation history row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}

		entries = append(entries, entry)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).
			Str("func", "historyRepository.History").
			Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return entries, nil
}

// Purge deletes all entries recorded before the given instant and reports
// how many rows were removed.
func (h *historyRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildPurgeHistoryQuery(before)
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.Purge").
			Msg("failed to create query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := h.DB.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.Purge").
			Time("before", before).
			Msg("failed to purge confirmation history")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).
			Str("func", "historyRepository.Purge").
			Msg("failed to read affected rows count")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}
