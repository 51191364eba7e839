package supabase

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	apperrors "github.com/target/calorie-tracker/internal/errors"
)

func TestRESTError_SQLState(t *testing.T) {
	assert.Equal(t, "42P01", (&RESTError{Code: "42P01"}).SQLState())
	assert.Equal(t, "42P01", (&RESTError{Code: "PGRST205"}).SQLState())
	assert.Empty(t, (&RESTError{Code: "PGRST301"}).SQLState())
	assert.Empty(t, (&RESTError{}).SQLState())
}

func TestRESTError_RelationMissing(t *testing.T) {
	err := error(&RESTError{Status: http.StatusNotFound, Code: "PGRST205", Message: "Could not find the table 'public._test' in the schema cache"})
	assert.True(t, apperrors.IsRelationMissing(err))
	assert.True(t, apperrors.IsRelationMissing(MapRESTError(err, "probe")))
}

func TestRESTError_Error(t *testing.T) {
	assert.Equal(t, "rest 404 (42P01): missing", (&RESTError{Status: 404, Code: "42P01", Message: "missing"}).Error())
	assert.Equal(t, "rest 502: Bad Gateway", (&RESTError{Status: 502}).Error())
}

func TestMapRESTError_Transport(t *testing.T) {
	assert.NoError(t, MapRESTError(nil, "x"))
	err := MapRESTError(errors.New("dial tcp: connection refused"), "Failed to load meals.")
	assert.True(t, apperrors.IsStore(err))
	assert.Equal(t, "Failed to load meals.", apperrors.GetMessage(err, ""))
}
