package supabase

import (
	"context"
	"net/http"
	"net/url"

	"github.com/target/calorie-tracker/internal/ports"
)

// ProbeTable is the sentinel table read by the connectivity check. It is not
// expected to exist; a "relation does not exist" answer still proves the
// gateway is reachable and the key is accepted.
const ProbeTable = "_test"

// Prober issues a bounded read against the sentinel table with the anon key.
type Prober struct {
	c *client
}

var _ ports.ConnectivityProber = (*Prober)(nil)

// NewProber builds a Prober.
func NewProber(cfg Config) (*Prober, error) {
	c, err := newClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Prober{c: c}, nil
}

func (p *Prober) Probe(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("limit", "1")
	return p.c.do(ctx, request{method: http.MethodGet, path: "/rest/v1/" + ProbeTable, query: q}, nil, decodeRESTError)
}
