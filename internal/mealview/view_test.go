package mealview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/calorie-tracker/internal/domain/model"
	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/mocks"
	"github.com/target/calorie-tracker/internal/ports"
	"github.com/target/calorie-tracker/internal/testutil"
	"go.uber.org/mock/gomock"
)

var testOwner = ports.Owner{UserID: "u1", AccessToken: "tok"}

func newTestView(t *testing.T) (*View, *mocks.MockMealRepository) {
	t.Helper()
	repo := mocks.NewMockMealRepository(gomock.NewController(t))
	return NewView(testOwner, ViewOptions{Store: repo, Timeout: time.Second}), repo
}

func TestView_LoadReplacesSequence(t *testing.T) {
	v, repo := newTestView(t)
	meals := testutil.Meals(3)
	repo.EXPECT().List(gomock.Any(), testOwner).Return(meals, nil)

	require.NoError(t, v.Load(context.Background()))
	assert.True(t, v.Loaded())
	assert.Equal(t, meals, v.Meals())
	assert.Equal(t, 600, v.Total())
	assert.NoError(t, v.LastLoadError())
}

func TestView_LoadFailureKeepsState(t *testing.T) {
	v, repo := newTestView(t)
	ctx := context.Background()
	meals := testutil.Meals(2)

	repo.EXPECT().List(gomock.Any(), testOwner).Return(meals, nil)
	require.NoError(t, v.Load(ctx))

	cause := apperrors.Store(errors.New("gateway timeout"), "Failed to load meals.")
	repo.EXPECT().List(gomock.Any(), testOwner).Return(nil, cause)

	err := v.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, meals, v.Meals())
	assert.ErrorIs(t, v.LastLoadError(), cause)
	assert.False(t, v.InFlight())
}

func TestView_AddPrependsWithoutRefetch(t *testing.T) {
	v, repo := newTestView(t)
	ctx := context.Background()

	repo.EXPECT().List(gomock.Any(), testOwner).Return(testutil.Meals(2), nil).Times(1)
	require.NoError(t, v.Load(ctx))

	req := model.CreateMealRequest{FoodName: "Apple", Calories: 95, Date: "2024-01-03"}
	apple := testutil.NewMeal().WithID("apple").WithFood("Apple", 95).Build()
	repo.EXPECT().Create(gomock.Any(), testOwner, req).Return(apple, nil)

	got, err := v.Add(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, apple, got)

	meals := v.Meals()
	require.Len(t, meals, 3)
	assert.Equal(t, "apple", meals[0].ID)
	assert.Equal(t, 300+95, v.Total())
}

func TestView_AddFirstMeal(t *testing.T) {
	v, repo := newTestView(t)
	ctx := context.Background()

	repo.EXPECT().List(gomock.Any(), testOwner).Return([]model.Meal{}, nil)
	require.NoError(t, v.Load(ctx))
	assert.Equal(t, 0, v.Total())

	apple := testutil.NewMeal().WithID("a").WithFood("Apple", 95).Build()
	repo.EXPECT().Create(gomock.Any(), testOwner, gomock.Any()).Return(apple, nil)
	_, err := v.Add(ctx, model.CreateMealRequest{FoodName: "Apple", Calories: 95})
	require.NoError(t, err)

	assert.Equal(t, []model.Meal{apple}, v.Meals())
	assert.Equal(t, 95, v.Total())
}

func TestView_AddFailureKeepsState(t *testing.T) {
	v, repo := newTestView(t)
	ctx := context.Background()

	repo.EXPECT().List(gomock.Any(), testOwner).Return(testutil.Meals(1), nil)
	require.NoError(t, v.Load(ctx))

	repo.EXPECT().Create(gomock.Any(), testOwner, gomock.Any()).Return(model.Meal{}, apperrors.Store(errors.New("boom"), "Failed to add meal."))
	_, err := v.Add(ctx, model.CreateMealRequest{FoodName: "Apple", Calories: 95})
	require.Error(t, err)
	assert.True(t, apperrors.IsStore(err))
	assert.Len(t, v.Meals(), 1)
}

func TestView_Delete(t *testing.T) {
	v, repo := newTestView(t)
	ctx := context.Background()

	meals := testutil.Meals(3) // meal-3, meal-2, meal-1
	repo.EXPECT().List(gomock.Any(), testOwner).Return(meals, nil)
	require.NoError(t, v.Load(ctx))

	repo.EXPECT().Delete(gomock.Any(), testOwner, "meal-2").Return(nil)
	require.NoError(t, v.Delete(ctx, "meal-2"))

	got := v.Meals()
	require.Len(t, got, 2)
	assert.Equal(t, "meal-3", got[0].ID)
	assert.Equal(t, "meal-1", got[1].ID)
	assert.Equal(t, 400, v.Total())
}

func TestView_DeleteUnknownIDSkipsStore(t *testing.T) {
	v, repo := newTestView(t)
	ctx := context.Background()

	repo.EXPECT().List(gomock.Any(), testOwner).Return(testutil.Meals(2), nil)
	require.NoError(t, v.Load(ctx))

	err := v.Delete(ctx, "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Len(t, v.Meals(), 2)
}

func TestView_DeleteFailureKeepsState(t *testing.T) {
	v, repo := newTestView(t)
	ctx := context.Background()

	repo.EXPECT().List(gomock.Any(), testOwner).Return(testutil.Meals(2), nil)
	require.NoError(t, v.Load(ctx))

	repo.EXPECT().Delete(gomock.Any(), testOwner, "meal-1").Return(apperrors.Store(errors.New("boom"), "Failed to delete meal."))
	require.Error(t, v.Delete(ctx, "meal-1"))
	assert.Len(t, v.Meals(), 2)
}

func TestView_MealsReturnsCopy(t *testing.T) {
	v, repo := newTestView(t)
	repo.EXPECT().List(gomock.Any(), testOwner).Return(testutil.Meals(1), nil)
	require.NoError(t, v.Load(context.Background()))

	m := v.Meals()
	m[0].Calories = 9999
	assert.Equal(t, 100, v.Meals()[0].Calories)
}

// blockingStore holds every call until released, so the token stays taken.
type blockingStore struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newBlockingStore() *blockingStore {
	return &blockingStore{started: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingStore) wait(ctx context.Context) error {
	b.once.Do(func() { close(b.started) })
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingStore) List(ctx context.Context, _ ports.Owner) ([]model.Meal, error) {
	return nil, b.wait(ctx)
}

func (b *blockingStore) Create(ctx context.Context, _ ports.Owner, req model.CreateMealRequest) (model.Meal, error) {
	if err := b.wait(ctx); err != nil {
		return model.Meal{}, err
	}
	return model.Meal{ID: "new", FoodName: req.FoodName, Calories: req.Calories}, nil
}

func (b *blockingStore) Delete(ctx context.Context, _ ports.Owner, _ string) error {
	return b.wait(ctx)
}

func TestView_ConcurrentMutationIsRejected(t *testing.T) {
	store := newBlockingStore()
	v := NewView(testOwner, ViewOptions{Store: store, Timeout: 5 * time.Second})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := v.Add(ctx, model.CreateMealRequest{FoodName: "Apple", Calories: 95})
		done <- err
	}()
	<-store.started

	assert.True(t, v.InFlight())

	_, err := v.Add(ctx, model.CreateMealRequest{FoodName: "Pear", Calories: 50})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, ErrBusyMessage, apperrors.GetMessage(err, ""))

	assert.True(t, apperrors.IsConflict(v.Delete(ctx, "x")))
	assert.True(t, apperrors.IsConflict(v.Load(ctx)))

	close(store.release)
	require.NoError(t, <-done)
	assert.False(t, v.InFlight())
	require.Len(t, v.Meals(), 1)
	assert.Equal(t, "Apple", v.Meals()[0].FoodName)
}

func TestView_TimeoutReleasesToken(t *testing.T) {
	store := newBlockingStore()
	v := NewView(testOwner, ViewOptions{Store: store, Timeout: 20 * time.Millisecond})

	_, err := v.Add(context.Background(), model.CreateMealRequest{FoodName: "Apple", Calories: 95})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, v.InFlight())
	assert.Empty(t, v.Meals())
}

func TestView_CancellationReleasesToken(t *testing.T) {
	store := newBlockingStore()
	v := NewView(testOwner, ViewOptions{Store: store, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- v.Load(ctx) }()
	<-store.started
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
	assert.False(t, v.InFlight())
}

func TestView_SetOwnerAppliesToNextCall(t *testing.T) {
	v, repo := newTestView(t)
	refreshed := ports.Owner{UserID: "u1", AccessToken: "fresh"}
	v.SetOwner(refreshed)

	repo.EXPECT().List(gomock.Any(), refreshed).Return(nil, nil)
	require.NoError(t, v.Load(context.Background()))
	assert.NotNil(t, v.Meals())
}
