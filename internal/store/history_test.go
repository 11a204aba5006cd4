package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhangpan-soft/steam-desktop-authenticator/internal/logger"
	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newTestHistory(t *testing.T, db *sql.DB) ConfirmationHistory {
	t.Helper()
	storeDB := &DB{DB: db, logger: logger.Nop()}
	return NewConfirmationHistory(storeDB, logger.Nop())
}

var historyRows = []string{
	"id", "account_name", "confirmation_id", "type",
	"headline", "action", "result_code", "created_at",
}

func TestRecordAction(t *testing.T) {
	entry := models.ConfirmationHistoryEntry{
		AccountName:    "hydra",
		ConfirmationID: "9001",
		Type:           models.ConfirmationTypeTrade,
		Headline:       "Trade with partner",
		Action:         "allow",
		ResultCode:     models.EResultOK,
		CreatedAt:      time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}

	t.Run("success", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		mock.ExpectExec("INSERT INTO confirmation_history").
			WithArgs(
				entry.AccountName,
				entry.ConfirmationID,
				int(entry.Type),
				entry.Headline,
				entry.Action,
				int(entry.ResultCode),
				entry.CreatedAt,
			).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.RecordAction(context.Background(), entry)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		mock.ExpectExec("INSERT INTO confirmation_history").
			WillReturnError(errors.New("disk I/O error"))

		err := repo.RecordAction(context.Background(), entry)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExecutingStatement)
	})

	t.Run("zero rows affected", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		mock.ExpectExec("INSERT INTO confirmation_history").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.RecordAction(context.Background(), entry)
		assert.ErrorIs(t, err, ErrHistoryNotRecorded)
	})
}

func TestHistory(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("returns entries newest first", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		rows := sqlmock.NewRows(historyRows).
			AddRow(2, "hydra", "9002", int(models.ConfirmationTypeMarketListing), "Market listing", "cancel", int(models.EResultOK), now).
			AddRow(1, "hydra", "9001", int(models.ConfirmationTypeTrade), "Trade with partner", "allow", int(models.EResultOK), now.Add(-time.Hour))

		mock.ExpectQuery("SELECT (.+) FROM confirmation_history").
			WithArgs("hydra").
			WillReturnRows(rows)

		entries, err := repo.History(context.Background(), HistoryFilter{AccountName: "hydra"})
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.Equal(t, int64(2), entries[0].ID)
		assert.Equal(t, "9002", entries[0].ConfirmationID)
		assert.Equal(t, models.ConfirmationTypeMarketListing, entries[0].Type)
		assert.Equal(t, "cancel", entries[0].Action)
		assert.Equal(t, models.EResultOK, entries[0].ResultCode)
		assert.Equal(t, now, entries[0].CreatedAt)

		assert.Equal(t, "9001", entries[1].ConfirmationID)
		assert.Equal(t, "allow", entries[1].Action)
	})

	t.Run("empty result", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		mock.ExpectQuery("SELECT (.+) FROM confirmation_history").
			WillReturnRows(sqlmock.NewRows(historyRows))

		entries, err := repo.History(context.Background(), HistoryFilter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		mock.ExpectQuery("SELECT (.+) FROM confirmation_history").
			WillReturnError(errors.New("database is locked"))

		_, err := repo.History(context.Background(), HistoryFilter{})
		assert.ErrorIs(t, err, ErrExecutingQuery)
	})

	t.Run("scan error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		rows := sqlmock.NewRows(historyRows).
			AddRow("not-an-id", "hydra", "9001", 2, "h", "allow", 1, now)

		mock.ExpectQuery("SELECT (.+) FROM confirmation_history").
			WillReturnRows(rows)

		_, err := repo.History(context.Background(), HistoryFilter{})
		assert.ErrorIs(t, err, ErrScanningRow)
	})
}

func TestPurge(t *testing.T) {
	before := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	t.Run("reports removed count", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		mock.ExpectExec("DELETE FROM confirmation_history").
			WithArgs(before).
			WillReturnResult(sqlmock.NewResult(0, 17))

		affected, err := repo.Purge(context.Background(), before)
		require.NoError(t, err)
		assert.Equal(t, int64(17), affected)
	})

	t.Run("exec error", func(t *testing.T) {
		db, mock := newTestDB(t)
		repo := newTestHistory(t, db)

		mock.ExpectExec("DELETE FROM confirmation_history").
			WillReturnError(errors.New("database is locked"))

		_, err := repo.Purge(context.Background(), before)
		assert.ErrorIs(t, err, ErrExecutingStatement)
	})
}
