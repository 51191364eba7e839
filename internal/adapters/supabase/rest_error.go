package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgerrcode"
	apperrors "github.com/target/calorie-tracker/internal/errors"
)

// PostgREST reports a table missing from its schema cache with this code
// instead of the Postgres SQLSTATE.
const pgrstRelationMissing = "PGRST205"

// RESTError is a non-2xx response from the REST gateway.
type RESTError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *RESTError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("rest %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("rest %d: %s", e.Status, msg)
}

// SQLState returns the Postgres error code carried by the response, if any.
func (e *RESTError) SQLState() string {
	if e.Code == pgrstRelationMissing {
		return pgerrcode.UndefinedTable
	}
	if len(e.Code) == 5 && !strings.HasPrefix(e.Code, "PGRST") {
		return e.Code
	}
	return ""
}

func decodeRESTError(resp *http.Response, body []byte) error {
	re := &RESTError{Status: resp.StatusCode}
	if len(body) > 0 && json.Unmarshal(body, re) != nil {
		re.Message = strings.TrimSpace(string(body))
	}
	return re
}

// MapRESTError converts gateway failures into AppErrors. Errors that are not
// RESTErrors (transport, timeout) map through MapDBError's context handling
// and otherwise become store errors.
func MapRESTError(err error, message string) error {
	if err == nil {
		return nil
	}
	var re *RESTError
	if !errors.As(err, &re) {
		return apperrors.EnsureCode(apperrors.MapDBError(err), apperrors.ErrCodeStore, message)
	}

	switch {
	case re.Status == http.StatusUnauthorized || re.Status == http.StatusForbidden:
		return apperrors.Auth(re, "You are not allowed to access these meals.")
	case re.Status == http.StatusConflict:
		return apperrors.Wrap(re, apperrors.ErrCodeConflict, "This value already exists.")
	case re.Status == http.StatusBadRequest:
		switch re.SQLState() {
		case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation, pgerrcode.NumericValueOutOfRange:
			return apperrors.Wrap(re, apperrors.ErrCodeValidation, "This field has an invalid value.")
		case pgerrcode.NotNullViolation:
			return apperrors.Wrap(re, apperrors.ErrCodeValidation, "This field is required.")
		}
	}
	return apperrors.Store(re, message)
}
