package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MapDBError turns pgx and context errors into AppErrors: deadlines and
// cancellation keep their own codes, pgx.ErrNoRows is not found and Postgres
// errors are classified by SQLSTATE (row-level security denials become auth
// errors). Anything else is returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out. Please try again.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Request was canceled.",
			Cause:   err,
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return &AppError{
			Code:    ErrCodeNotFound,
			Message: "Meal not found",
			Cause:   err,
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return mapPgError(pgErr)
	}

	return err
}

// sqlStater is implemented by *pgconn.PgError and by REST gateway errors
// that carry a Postgres SQLSTATE.
type sqlStater interface {
	SQLState() string
}

// IsRelationMissing reports whether err means "relation does not exist": either
// SQLSTATE 42P01 anywhere in the chain, or a message naming a missing relation.
func IsRelationMissing(err error) bool {
	if err == nil {
		return false
	}
	var st sqlStater
	if errors.As(err, &st) && st.SQLState() == pgerrcode.UndefinedTable {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist")
}

// pgErrorKinds maps SQLSTATE codes to the code and message users see.
// Codes not listed become store errors.
var pgErrorKinds = map[string]struct {
	code    ErrorCode
	message string
}{
	pgerrcode.UniqueViolation:           {ErrCodeConflict, "This value already exists."},
	pgerrcode.CheckViolation:            {ErrCodeValidation, "This field has an invalid value."},
	pgerrcode.InvalidTextRepresentation: {ErrCodeValidation, "This field has an invalid value."},
	pgerrcode.NumericValueOutOfRange:    {ErrCodeValidation, "This field has an invalid value."},
	pgerrcode.NotNullViolation:          {ErrCodeValidation, "This field is required."},
	pgerrcode.InsufficientPrivilege:     {ErrCodeAuth, "You are not allowed to access this meal."},
}

func mapPgError(pgErr *pgconn.PgError) error {
	kind, ok := pgErrorKinds[pgErr.Code]
	if !ok {
		return &AppError{Code: ErrCodeStore, Message: "A database error occurred. Please try again.", Cause: pgErr}
	}
	field := pgErr.ColumnName
	if kind.code == ErrCodeAuth {
		field = ""
	}
	return &AppError{Code: kind.code, Message: kind.message, Field: field, Cause: pgErr}
}
