package httpx

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/net/html"

	domainauth "github.com/target/calorie-tracker/internal/domain/auth"
	"github.com/target/calorie-tracker/internal/mealview"
	"github.com/target/calorie-tracker/internal/mocks"
	"github.com/target/calorie-tracker/internal/ports"
	"github.com/target/calorie-tracker/internal/service"
)

const (
	testSessionID = "sess-1"
	testUserID    = "user-1"
	testEmail     = "ada@example.com"
	testToken     = "access-token"
	testCSRF      = "csrf-test-token"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRenderer parses the repository templates from disk.
func newTestRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     discardLogger(),
	})
	require.NoError(t, err, "templates under %s must parse", TemplatePathFromTest)
	return tr
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func testSession() domainauth.Session {
	return domainauth.Session{
		ID:          testSessionID,
		UserID:      testUserID,
		Email:       testEmail,
		AccessToken: testToken,
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func testOwner() ports.Owner {
	return ports.Owner{UserID: testUserID, AccessToken: testToken}
}

// fakeAuth is an in-memory AuthFacade.
type fakeAuth struct {
	mu        sync.Mutex
	sessions  map[string]domainauth.Session
	lookupErr error // returned by GetSession for every id when set
	password  bool

	signIn   func(email, password string) (*domainauth.Session, error)
	signUp   func(email, password string) (*domainauth.Session, error)
	begin    func(redirectURL string) (*service.BeginLoginResult, error)
	complete func(in service.CompleteLoginInput) (*domainauth.Session, error)

	signOutErr error
	signedOut  []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{sessions: map[string]domainauth.Session{}, password: true}
}

var _ AuthFacade = (*fakeAuth)(nil)

func (f *fakeAuth) addSession(s domainauth.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
}

func (f *fakeAuth) GetSession(_ context.Context, id string) (*domainauth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	return &s, nil
}

func (f *fakeAuth) UsesPassword() bool { return f.password }

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*domainauth.Session, error) {
	if f.signIn == nil {
		return nil, errors.New("sign in not configured")
	}
	return f.signIn(email, password)
}

func (f *fakeAuth) SignUp(_ context.Context, email, password string) (*domainauth.Session, error) {
	if f.signUp == nil {
		return nil, errors.New("sign up not configured")
	}
	return f.signUp(email, password)
}

func (f *fakeAuth) BeginLogin(_ context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if f.begin != nil {
		return f.begin(redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example.com/authorize?state=test-state",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (f *fakeAuth) CompleteLogin(_ context.Context, in service.CompleteLoginInput) (*domainauth.Session, error) {
	if f.complete != nil {
		return f.complete(in)
	}
	s := testSession()
	return &s, nil
}

func (f *fakeAuth) SignOut(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedOut = append(f.signedOut, id)
	delete(f.sessions, id)
	return f.signOutErr
}

type fakeDiagnostics struct {
	result service.ProbeResult
}

func (f fakeDiagnostics) Run(context.Context) service.ProbeResult { return f.result }

// testApp is the full router over fakes and a mocked meal repository.
type testApp struct {
	t       *testing.T
	handler http.Handler
	auth    *fakeAuth
	repo    *mocks.MockMealRepository
	views   *mealview.Registry
}

type appOption func(*RouterServices)

func withDiagnostics(d Diagnostics) appOption {
	return func(s *RouterServices) { s.Diagnostics = d }
}

func withClock(now func() time.Time) appOption {
	return func(s *RouterServices) { s.Clock = now }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	repo := mocks.NewMockMealRepository(gomock.NewController(t))
	views := mealview.NewRegistry(mealview.RegistryOptions{
		View: mealview.ViewOptions{Store: repo, Timeout: time.Second, Logger: discardLogger()},
	})
	auth := newFakeAuth()

	services := RouterServices{
		Auth:       auth,
		Views:      views,
		Query:      service.NewMealQuery(nil),
		TemplateFS: os.DirFS(TemplatePathFromTest),
		StaticFS:   os.DirFS("../../frontend/static"),
		Logger:     discardLogger(),
	}
	for _, opt := range opts {
		opt(&services)
	}
	h, err := NewRouter(services)
	require.NoError(t, err)

	return &testApp{t: t, handler: h, auth: auth, repo: repo, views: views}
}

// signIn registers the test session with the fake auth service.
func (a *testApp) signIn() *testApp {
	a.auth.addSession(testSession())
	return a
}

// view returns the meal view the router uses for the test session.
func (a *testApp) view() *mealview.View {
	return a.views.Get(testSessionID, testOwner())
}

type reqOpts struct {
	htmx     bool
	target   string
	form     url.Values
	json     string
	anon     bool // omit the session cookie
	noCSRF   bool
	accept   string
	modifier func(*http.Request)
}

func (a *testApp) do(method, target string, o reqOpts) *httptest.ResponseRecorder {
	a.t.Helper()
	var body io.Reader
	switch {
	case o.form != nil:
		body = strings.NewReader(o.form.Encode())
	case o.json != "":
		body = strings.NewReader(o.json)
	}
	req := httptest.NewRequest(method, target, body)
	switch {
	case o.form != nil:
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case o.json != "":
		req.Header.Set("Content-Type", "application/json")
	}
	if o.htmx {
		req.Header.Set("HX-Request", "true")
	}
	if o.target != "" {
		req.Header.Set("HX-Target", o.target)
	}
	if o.accept != "" {
		req.Header.Set("Accept", o.accept)
	}
	if !o.anon {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: testSessionID})
	}
	if !o.noCSRF {
		req.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRF})
		if method != http.MethodGet && method != http.MethodHead {
			req.Header.Set(DefaultCSRFHeaderName, testCSRF)
		}
	}
	if o.modifier != nil {
		o.modifier(req)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(target string, o reqOpts) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(http.MethodGet, target, o)
}

func (a *testApp) post(target string, o reqOpts) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(http.MethodPost, target, o)
}

func mealForm(food, calories, date string) url.Values {
	return url.Values{"food_name": {food}, "calories": {calories}, "date": {date}}
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func parseHTML(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func findByID(n *html.Node, id string) *html.Node {
	nodes := findAll(n, func(n *html.Node) bool {
		v, _ := attr(n, "id")
		return v == id
	})
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
