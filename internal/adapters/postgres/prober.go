package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/target/calorie-tracker/internal/ports"
)

// Prober reads one row from the sentinel table "_test".
type Prober struct {
	db Querier
}

var _ ports.ConnectivityProber = (*Prober)(nil)

// NewProber creates a new Prober.
func NewProber(db Querier) *Prober {
	return &Prober{db: db}
}

// Probe returns the raw driver error so callers can tell a missing relation
// apart from a connection failure. An empty table is a success.
func (p *Prober) Probe(ctx context.Context) error {
	var one int
	err := p.db.QueryRow(ctx, "SELECT 1 FROM _test LIMIT 1").Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}
