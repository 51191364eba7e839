package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/target/calorie-tracker/internal/errors"
	"github.com/target/calorie-tracker/internal/ports"
)

const (
	diagnosticSuccess = "✅ Supabase connection successful!"
	diagnosticFailure = "❌ Supabase connection failed"

	defaultProbeTimeout = 5 * time.Second
)

// ErrStoreNotConfigured is reported when no store URL is configured.
var ErrStoreNotConfigured = errors.New("SUPABASE_URL is not set")

// ProbeResult is the outcome of one connectivity check.
type ProbeResult struct {
	Healthy bool
	Message string
	Error   string
	URL     string
	KeySet  bool
}

// DiagnosticTarget describes what is being probed, for display.
type DiagnosticTarget struct {
	URL    string
	KeySet bool
}

// DiagnosticServiceOptions groups dependencies for DiagnosticService.
type DiagnosticServiceOptions struct {
	Prober  ports.ConnectivityProber // nil when the store is not configured
	Target  DiagnosticTarget
	Timeout time.Duration
}

// DiagnosticService runs the store connectivity check on demand.
type DiagnosticService struct {
	prober  ports.ConnectivityProber
	target  DiagnosticTarget
	timeout time.Duration
	logger  *slog.Logger
}

// NewDiagnosticService constructs a DiagnosticService.
func NewDiagnosticService(opts DiagnosticServiceOptions) *DiagnosticService {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &DiagnosticService{
		prober:  opts.Prober,
		target:  opts.Target,
		timeout: timeout,
		logger:  slog.Default().With("component", "diagnostic_service"),
	}
}

// Run probes the store once. A missing sentinel relation still counts as
// healthy: the gateway answered with a schema error.
func (s *DiagnosticService) Run(ctx context.Context) ProbeResult {
	res := ProbeResult{URL: s.target.URL, KeySet: s.target.KeySet}

	err := ErrStoreNotConfigured
	if s.prober != nil {
		probeCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err = s.prober.Probe(probeCtx)
		cancel()
	}

	if err == nil || apperrors.IsRelationMissing(err) {
		res.Healthy = true
		res.Message = diagnosticSuccess
		return res
	}

	s.logger.WarnContext(ctx, "connectivity probe failed", "error", err)
	res.Message = diagnosticFailure
	res.Error = err.Error()
	return res
}
