package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrContention marks a transaction aborted by lock contention; the caller may retry it.
	ErrContention = errors.New("transaction contention")
	// ErrDuplicate marks a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
	// ErrStale marks a conditional write whose row no longer matched the expected state.
	ErrStale = errors.New("record changed concurrently")
)

const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqLockNotAvailable     = "55P03"
	pqUniqueViolation      = "23505"
)

// classify tags driver errors with the package sentinels while keeping the original chain.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqSerializationFailure, pqDeadlockDetected, pqLockNotAvailable:
		return fmt.Errorf("%w: %w", ErrContention, err)
	case pqUniqueViolation:
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	default:
		return err
	}
}

// runInTx executes fn inside a transaction, rolling back when fn or commit fails.
func runInTx(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return classify(err)
	}
	if err = tx.Commit(); err != nil {
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
