//go:build tools

// Package tools lists the development tools used with this repository.
// They are run with `go run` or installed with `go install` and are not
// runtime dependencies.
package tools

// mockgen regenerates internal/mocks from the ports interfaces:
//
//	go generate ./internal/mocks
//
// Air reloads the server on source changes; pair it with DEV=true so
// templates and static assets are also read from disk:
//
//	go install github.com/air-verse/air@v1.63.0
//	DEV=true air --build.cmd "go build -o ./tmp/calorietracker ./cmd/calorietracker" --build.bin ./tmp/calorietracker
