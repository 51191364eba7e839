package auth

// SessionState is the lifecycle of the session as seen by a single request.
type SessionState int

const (
	// SessionLoading means the session could not be resolved yet (for example the
	// session store timed out). Gated pages render a loader and must not redirect.
	SessionLoading SessionState = iota
	// SessionAuthenticated means a valid, unexpired session was found.
	SessionAuthenticated
	// SessionUnauthenticated means there is no usable session.
	SessionUnauthenticated
)

func (s SessionState) String() string {
	switch s {
	case SessionLoading:
		return "loading"
	case SessionAuthenticated:
		return "authenticated"
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SessionContext is the resolved session view handed to pages.
// The zero value is a loading context.
type SessionContext struct {
	State   SessionState
	Session *Session
}

// Loading returns a context whose state is not yet known.
func Loading() SessionContext { return SessionContext{State: SessionLoading} }

// Anonymous returns an unauthenticated context.
func Anonymous() SessionContext { return SessionContext{State: SessionUnauthenticated} }

// Authenticated returns a context for sess.
func Authenticated(sess Session) SessionContext {
	return SessionContext{State: SessionAuthenticated, Session: &sess}
}

// IsLoading reports whether the state is still undetermined.
func (c SessionContext) IsLoading() bool { return c.State == SessionLoading }

// IsAuthenticated reports whether a session is present.
func (c SessionContext) IsAuthenticated() bool {
	return c.State == SessionAuthenticated && c.Session != nil
}

// Identity returns the identity and true when authenticated.
func (c SessionContext) Identity() (Identity, bool) {
	if !c.IsAuthenticated() {
		return Identity{}, false
	}
	return c.Session.Identity(), true
}

// GateDecision tells a gated page what to do for a given session context.
type GateDecision int

const (
	// GateLoader renders a neutral loading indicator.
	GateLoader GateDecision = iota
	// GateRender renders the page.
	GateRender
	// GateRedirect sends the visitor to the authentication entry point.
	GateRedirect
)

// Gate maps a session context to a gated page's behavior.
func Gate(c SessionContext) GateDecision {
	switch {
	case c.IsAuthenticated():
		return GateRender
	case c.State == SessionUnauthenticated:
		return GateRedirect
	default:
		return GateLoader
	}
}
