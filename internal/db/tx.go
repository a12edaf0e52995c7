package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TxBeginner is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Querier is the query surface shared by *pgxpool.Pool and pgx.Tx, so helpers
// can run either standalone or inside a caller's transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SerializableTx is the isolation used for every read-then-write booking operation.
var SerializableTx = pgx.TxOptions{IsoLevel: pgx.Serializable}

// WithTx runs fn inside a single transaction and commits it when fn returns nil.
// A serialization failure or deadlock aborts the attempt and fn is run again from
// scratch, up to maxRetries extra attempts. fn must therefore not have side effects
// outside the transaction.
func WithTx(ctx context.Context, db TxBeginner, opts pgx.TxOptions, maxRetries int, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = pgx.BeginTxFunc(ctx, db, opts, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

// IsRetryable reports whether err is a transient conflict the whole transaction can be replayed for.
func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

// IsUniqueViolation reports whether err was raised by the named unique constraint.
// An empty constraint name matches any unique violation.
func IsUniqueViolation(err error, constraint string) bool {
	return hasCode(err, pgerrcode.UniqueViolation, constraint)
}

// IsExclusionViolation reports whether err was raised by the named exclusion constraint.
func IsExclusionViolation(err error, constraint string) bool {
	return hasCode(err, pgerrcode.ExclusionViolation, constraint)
}

// IsForeignKeyViolation reports whether err was raised by a foreign key constraint.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, pgerrcode.ForeignKeyViolation, "")
}

func hasCode(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
