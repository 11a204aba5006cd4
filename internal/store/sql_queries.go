package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/zhangpan-soft/steam-desktop-authenticator/models"
)

const historyTable = "confirmation_history"

var historyColumns = []string{
	"id",
	"account_name",
	"confirmation_id",
	"type",
	"headline",
	"action",
	"result_code",
	"created_at",
}

func buildInsertHistoryQuery(entry models.ConfirmationHistoryEntry) (string, []any, error) {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return sq.Insert(historyTable).
		Columns(
			"account_name",
			"confirmation_id",
			"type",
			"headline",
			"action",
			"result_code",
			"created_at",
		).
		Values(
			entry.AccountName,
			entry.ConfirmationID,
			int(entry.Type),
			entry.Headline,
			entry.Action,
			int(entry.ResultCode),
			createdAt,
		).
		ToSql()
}

func buildSelectHistoryQuery(filter HistoryFilter) (string, []any, error) {
	builder := sq.Select(historyColumns...).
		From(historyTable).
		OrderBy("created_at DESC", "id DESC")

	if filter.AccountName != "" {
		builder = builder.Where(sq.Eq{"account_name": filter.AccountName})
	}
	if filter.Action != "" {
		builder = builder.Where(sq.Eq{"action": filter.Action})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	return builder.ToSql()
}

func buildPurgeHistoryQuery(before time.Time) (string, []any, error) {
	return sq.Delete(historyTable).
		Where(sq.Lt{"created_at": before}).
		ToSql()
}
