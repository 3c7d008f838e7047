package pgdb

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hpungsan/rumors/internal/errors"
)

// mapError converts pgconn errors to RumorErrors.
// context.DeadlineExceeded and context.Canceled pass through wrapped.
func mapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return errors.NewConflict(fmt.Sprintf("%s already exists: %s", entity, id))
		case "23503": // foreign_key_violation
			return errors.NewNotFound(id)
		case "23514": // check_violation
			return errors.NewInvalidRequest(fmt.Sprintf("%s violates schema constraints: %s", entity, pgErr.ConstraintName))
		}
	}

	return errors.NewInternal(fmt.Errorf("%s %s: %w", entity, id, err))
}
