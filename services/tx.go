package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// withTx выполняет fn в одной транзакции: любая ошибка или паника
// откатывает все изменения.
func withTx(ctx context.Context, db *sqlx.DB, logger *slog.Logger, fn func(tx *sqlx.Tx) error) (txErr error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			// отмена контекста уже откатила транзакцию
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				logger.ErrorContext(ctx, "Rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("%w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = storeErr("commit transaction", cErr)
		}
	}()

	return fn(tx)
}
