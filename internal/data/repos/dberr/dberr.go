// Package dberr folds driver-level failures into the shared error sentinels
// so services and handlers never match on Postgres error codes themselves.
package dberr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/lingobridge-backend/internal/pkg/errors"
)

// Map wraps err with op and translates well-known failures: missing rows
// become ErrNotFound, unique violations ErrConflict, broken references
// ErrInvalidArgument. Anything else passes through wrapped.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, pkgerrors.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w: %s", op, pkgerrors.ErrConflict, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w: %s", op, pkgerrors.ErrInvalidArgument, pgErr.ConstraintName)
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}
