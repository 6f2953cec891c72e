package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/client/config"
	"github.com/dmitrijs2005/postplanner/internal/client/services"
	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

var errBoom = errors.New("boom")

var testNow = time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)

// syncBuffer is written to by view callbacks while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeAuth struct {
	user     *models.Identity
	userErr  error
	pingErr  error
	loginErr error
	regErr   error

	email      string
	password   string
	registered bool
	signedOut  bool
}

func (f *fakeAuth) CurrentUser(context.Context) (*models.Identity, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}
	if f.user == nil {
		return nil, schedule.ErrUnauthenticated
	}
	return f.user, nil
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signedOut = true
	f.user = nil
	return nil
}

func (f *fakeAuth) Register(_ context.Context, email string, password []byte) error {
	f.registered = true
	f.email = email
	clear(password)
	return f.regErr
}

func (f *fakeAuth) Login(_ context.Context, email string, password []byte) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.email = email
	f.password = string(password)
	clear(password)
	f.user = &models.Identity{UserID: "u1", Email: email}
	return nil
}

func (f *fakeAuth) Restore(context.Context) (bool, error) { return f.user != nil, nil }

func (f *fakeAuth) Ping(context.Context) error { return f.pingErr }

type fakeWorkspaces struct {
	list    []models.Workspace
	created []string
}

func (f *fakeWorkspaces) List(context.Context) ([]models.Workspace, error) {
	return f.list, nil
}

func (f *fakeWorkspaces) Create(_ context.Context, name string) (*models.Workspace, error) {
	f.created = append(f.created, name)
	ws := models.Workspace{ID: "ws-new", UserID: "u1", Name: name}
	f.list = append(f.list, ws)
	return &ws, nil
}

func (f *fakeWorkspaces) Home(context.Context) (*models.Workspace, []models.Workspace, error) {
	if len(f.list) == 1 {
		return &f.list[0], f.list, nil
	}
	return nil, f.list, nil
}

func (f *fakeWorkspaces) Resolve(_ context.Context, ref string) (*models.Workspace, error) {
	for i := range f.list {
		if f.list[i].ID == ref || strings.EqualFold(f.list[i].Name, ref) {
			return &f.list[i], nil
		}
	}
	return nil, errors.New("workspace not found")
}

type fakeUploads struct {
	forms []services.UploadForm
	err   error
}

func (f *fakeUploads) Schedule(_ context.Context, form services.UploadForm) (*models.ScheduledItem, error) {
	f.forms = append(f.forms, form)
	if f.err != nil {
		return nil, f.err
	}
	at, err := services.ScheduledAt(form.Date, form.Time, time.UTC)
	if err != nil {
		return nil, err
	}
	return &models.ScheduledItem{
		ID:          "new",
		WorkspaceID: form.WorkspaceID,
		Title:       form.Title,
		ScheduledAt: at,
		Status:      models.StatusScheduled,
		Targets:     form.Targets,
	}, nil
}

type fakeConnections struct {
	connected    map[string]bool
	openBrowser  bool
	completed    *services.CompleteResult
	connectCalls []string
	disconnected []string
}

func (f *fakeConnections) Connect(_ context.Context, workspaceID string, platform models.Platform) (*services.ConnectResult, error) {
	f.connectCalls = append(f.connectCalls, workspaceID+"/"+string(platform))
	return &services.ConnectResult{URL: "https://auth.example/" + workspaceID, Opened: f.openBrowser}, nil
}

func (f *fakeConnections) Complete(context.Context) (*services.CompleteResult, error) {
	if f.completed == nil {
		return nil, services.ErrNoPendingConnection
	}
	return f.completed, nil
}

func (f *fakeConnections) Disconnect(_ context.Context, workspaceID string, platform models.Platform) error {
	f.disconnected = append(f.disconnected, workspaceID+"/"+string(platform))
	delete(f.connected, workspaceID)
	return nil
}

func (f *fakeConnections) Status(_ context.Context, workspaceID string, _ models.Platform) (bool, error) {
	return f.connected[workspaceID], nil
}

type memSub struct {
	ch   chan schedule.ChangeEvent
	once sync.Once
}

func (s *memSub) Events() <-chan schedule.ChangeEvent { return s.ch }

func (s *memSub) Close() error {
	s.once.Do(func() { close(s.ch) })
	return nil
}

// memStore is an in-memory RecordStore that notifies subscribers on insert.
type memStore struct {
	mu        sync.Mutex
	items     []models.ScheduledItem
	conns     map[string]int64
	deleteErr error
	listErr   error
	lists     int
	subs      []*memSub
}

func (m *memStore) ListItems(_ context.Context, q schedule.Query) ([]models.ScheduledItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.ScheduledItem
	for _, it := range m.items {
		if q.Matches(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memStore) InsertItem(_ context.Context, item *models.ScheduledItem) (*models.ScheduledItem, error) {
	m.mu.Lock()
	m.items = append(m.items, *item)
	subs := slices.Clone(m.subs)
	m.mu.Unlock()

	for _, s := range subs {
		select {
		case s.ch <- schedule.ChangeEvent{Type: schedule.EventInsert, Table: schedule.TableItems, RecordID: item.ID, UserID: item.UserID, WorkspaceID: item.WorkspaceID}:
		default:
		}
	}
	return item, nil
}

func (m *memStore) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.items = slices.DeleteFunc(m.items, func(it models.ScheduledItem) bool { return it.ID == id })
	return nil
}

func (m *memStore) CountConnections(_ context.Context, scope schedule.ConnectionScope) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conns[scope.WorkspaceID], nil
}

func (m *memStore) DeleteConnections(_ context.Context, scope schedule.ConnectionScope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.conns, scope.WorkspaceID)
	return nil
}

func (m *memStore) Subscribe(context.Context, schedule.Scope) (schedule.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &memSub{ch: make(chan schedule.ChangeEvent, 8)}
	m.subs = append(m.subs, s)
	return s, nil
}

func (m *memStore) has(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.ContainsFunc(m.items, func(it models.ScheduledItem) bool { return it.ID == id })
}

func (m *memStore) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

type harness struct {
	auth   *fakeAuth
	ws     *fakeWorkspaces
	up     *fakeUploads
	conn   *fakeConnections
	store  *memStore
	out    *syncBuffer
	errOut *syncBuffer
	cfg    *config.Config
	closed bool
}

func newItem(id, ws string, at time.Time, status models.Status) models.ScheduledItem {
	return models.ScheduledItem{
		ID:          id,
		UserID:      "u1",
		WorkspaceID: ws,
		Title:       "Video " + id,
		ScheduledAt: at,
		Status:      status,
		Targets:     models.Targets{YouTube: true},
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Chdir(t.TempDir())

	return &harness{
		auth: &fakeAuth{user: &models.Identity{UserID: "u1", Email: "ann@example.com"}},
		ws: &fakeWorkspaces{list: []models.Workspace{
			{ID: "ws1", UserID: "u1", Name: "Main"},
		}},
		up:     &fakeUploads{},
		conn:   &fakeConnections{connected: map[string]bool{}},
		store:  &memStore{conns: map[string]int64{}},
		out:    &syncBuffer{},
		errOut: &syncBuffer{},
	}
}

func (h *harness) app(in string) *App {
	return NewApp(
		WithIO(strings.NewReader(in), h.out, h.errOut),
		WithLocation(time.UTC),
		WithClock(func() time.Time { return testNow }),
		WithDeps(func(_ context.Context, cfg *config.Config, _ logging.Logger) (*Deps, error) {
			h.cfg = cfg
			return &Deps{
				Auth:        h.auth,
				Workspaces:  h.ws,
				Uploads:     h.up,
				Connections: h.conn,
				Store:       h.store,
				Close:       func() error { h.closed = true; return nil },
			}, nil
		}),
	)
}

func (h *harness) run(ctx context.Context, in string, args ...string) error {
	return h.app(in).Run(ctx, args)
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
