package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/ports"
)

var testOwner = ports.Owner{UserID: "user-1", AccessToken: "user-token"}

func newTestRepo(t *testing.T, h http.HandlerFunc) *MealRepository {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	repo, err := NewMealRepository(Config{URL: srv.URL + "/", AnonKey: "anon"})
	require.NoError(t, err)
	return repo
}

func TestNewMealRepository_RequiresURL(t *testing.T) {
	_, err := NewMealRepository(Config{AnonKey: "anon"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supabase url is required")
}

func TestMealRepository_List(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/meals", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "created_at.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))

		_, _ = io.WriteString(w, `[
			{"id":"m2","food_name":"Apple","calories":95,"date":"2024-01-02","created_at":"2024-01-02T10:00:00.123456+00:00","user_id":"user-1"},
			{"id":"m1","food_name":"Toast","calories":120,"date":"2024-01-01","created_at":"2024-01-01T08:00:00+00:00","user_id":"user-1"}
		]`)
	})

	meals, err := repo.List(context.Background(), testOwner)
	require.NoError(t, err)
	require.Len(t, meals, 2)
	assert.Equal(t, "m2", meals[0].ID)
	assert.Equal(t, "Apple", meals[0].FoodName)
	assert.Equal(t, 95, meals[0].Calories)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC), meals[1].CreatedAt.UTC())
}

func TestMealRepository_List_EmptyIsNotNil(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	meals, err := repo.List(context.Background(), testOwner)
	require.NoError(t, err)
	assert.NotNil(t, meals)
	assert.Empty(t, meals)
}

func TestMealRepository_List_RequiresOwner(t *testing.T) {
	repo := newTestRepo(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("store must not be called without an owner")
	})
	_, err := repo.List(context.Background(), ports.Owner{})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestMealRepository_Create(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var rows []map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "Apple", rows[0]["food_name"])
		assert.EqualValues(t, 95, rows[0]["calories"])
		assert.Equal(t, "2024-01-02", rows[0]["date"])
		assert.Equal(t, "user-1", rows[0]["user_id"])

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":"new","food_name":"Apple","calories":95,"date":"2024-01-02","created_at":"2024-01-02T10:00:00Z","user_id":"user-1"}]`)
	})

	meal, err := repo.Create(context.Background(), testOwner, model.CreateMealRequest{FoodName: "Apple", Calories: 95, Date: "2024-01-02"})
	require.NoError(t, err)
	assert.Equal(t, "new", meal.ID)
	assert.Equal(t, 95, meal.Calories)
}

func TestMealRepository_Create_NoRowReturned(t *testing.T) {
	repo := newTestRepo(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[]`)
	})
	_, err := repo.Create(context.Background(), testOwner, model.CreateMealRequest{FoodName: "Apple", Calories: 95, Date: "2024-01-02"})
	assert.True(t, apperrors.IsStore(err))
}

func TestMealRepository_Delete(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "deleted",
			status: http.StatusOK,
			body:   `[{"id":"m1","food_name":"Toast","calories":120,"date":"2024-01-01","created_at":"2024-01-01T08:00:00Z","user_id":"user-1"}]`,
			check:  func(t *testing.T, err error) { require.NoError(t, err) },
		},
		{
			name:   "no matching row",
			status: http.StatusOK,
			body:   `[]`,
			check:  func(t *testing.T, err error) { assert.True(t, apperrors.IsNotFound(err)) },
		},
		{
			name:   "gateway failure",
			status: http.StatusInternalServerError,
			body:   `{"code":"XX000","message":"internal"}`,
			check:  func(t *testing.T, err error) { assert.True(t, apperrors.IsStore(err)) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "eq.m1", r.URL.Query().Get("id"))
				assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
				assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			tt.check(t, repo.Delete(context.Background(), testOwner, "m1"))
		})
	}
}

func TestMealRepository_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"code":"PGRST301","message":"JWT expired"}`, check: apperrors.IsAuth},
		{name: "rls forbidden", status: http.StatusForbidden, body: `{"code":"42501","message":"permission denied"}`, check: apperrors.IsAuth},
		{name: "conflict", status: http.StatusConflict, body: `{"code":"23505","message":"duplicate key"}`, check: apperrors.IsConflict},
		{name: "check violation", status: http.StatusBadRequest, body: `{"code":"23514","message":"violates check constraint"}`, check: apperrors.IsValidation},
		{name: "not null", status: http.StatusBadRequest, body: `{"code":"23502","message":"null value"}`, check: apperrors.IsValidation},
		{name: "missing table", status: http.StatusNotFound, body: `{"code":"42P01","message":"relation \"meals\" does not exist"}`, check: apperrors.IsStore},
		{name: "non json body", status: http.StatusBadGateway, body: `upstream down`, check: apperrors.IsStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := repo.List(context.Background(), testOwner)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected code %q for %v", apperrors.GetCode(err), err)
		})
	}
}

func TestMealRepository_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	repo := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := repo.List(ctx, testOwner)
	require.Error(t, err)
	assert.True(t, apperrors.IsStore(err))
	assert.True(t, apperrors.IsTimeout(err))
}
