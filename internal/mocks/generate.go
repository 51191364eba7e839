// Package mocks provides gomock implementations of the meal storage ports.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	repo := mocks.NewMockMealRepository(ctrl)
//	repo.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(meal, nil)
package mocks

// Generate mock for MealRepository interface from internal/ports package.
// This creates MockMealRepository with methods: List, Create, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=meal_repository_mock.go github.com/target/calorie-tracker/internal/ports MealRepository

// Generate mock for ConnectivityProber interface from internal/ports package.
// This creates MockConnectivityProber with methods: Probe
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=connectivity_prober_mock.go github.com/target/calorie-tracker/internal/ports ConnectivityProber
