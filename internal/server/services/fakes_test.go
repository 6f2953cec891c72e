package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/dbx"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	sm "github.com/dmitrijs2005/postplanner/internal/server/models"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/connections"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/items"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/users"
	"github.com/dmitrijs2005/postplanner/internal/server/repositories/workspaces"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeUsersRepo struct {
	created   *sm.User
	createErr error
	byEmail   map[string]*sm.User
	getErr    error
}

func (f *fakeUsersRepo) Create(_ context.Context, u *sm.User) (*sm.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *u
	out.ID = "u-new"
	out.CreatedAt = time.Now()
	f.created = &out
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*sm.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*sm.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeRefreshRepo struct {
	findOut   *sm.RefreshToken
	findErr   error
	delErr    error
	createErr error

	created []string
	deleted []string
}

func (f *fakeRefreshRepo) Create(_ context.Context, _ string, token string, _ time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*sm.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(context.Context, time.Time) (int64, error) { return 0, nil }

type fakeWorkspacesRepo struct {
	byID      map[string]models.Workspace
	createErr error
	listErr   error
}

func (f *fakeWorkspacesRepo) Create(_ context.Context, ws *models.Workspace) (*models.Workspace, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	out := *ws
	out.ID = "w-new"
	return &out, nil
}

func (f *fakeWorkspacesRepo) ListByUser(_ context.Context, userID string) ([]models.Workspace, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Workspace
	for _, ws := range f.byID {
		if ws.UserID == userID {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (f *fakeWorkspacesRepo) Get(_ context.Context, userID, id string) (*models.Workspace, error) {
	ws, ok := f.byID[id]
	if !ok || ws.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &ws, nil
}

type fakeItemsRepo struct {
	list      []models.ScheduledItem
	listErr   error
	lastQuery schedule.Query

	inserted  *models.ScheduledItem
	insertErr error

	byID      map[string]models.ScheduledItem
	deleteErr error
	deleted   []string
}

func (f *fakeItemsRepo) Insert(_ context.Context, it *models.ScheduledItem) (*models.ScheduledItem, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	out := *it
	out.ID = "i-new"
	f.inserted = &out
	return &out, nil
}

func (f *fakeItemsRepo) List(_ context.Context, q schedule.Query) ([]models.ScheduledItem, error) {
	f.lastQuery = q
	return f.list, f.listErr
}

func (f *fakeItemsRepo) Get(_ context.Context, userID, id string) (*models.ScheduledItem, error) {
	it, ok := f.byID[id]
	if !ok || it.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return &it, nil
}

func (f *fakeItemsRepo) Delete(_ context.Context, _ string, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeConnectionsRepo struct {
	count     int64
	countErr  error
	removed   int64
	deleteErr error
	lastScope schedule.ConnectionScope
}

func (f *fakeConnectionsRepo) Count(_ context.Context, scope schedule.ConnectionScope) (int64, error) {
	f.lastScope = scope
	return f.count, f.countErr
}

func (f *fakeConnectionsRepo) Delete(_ context.Context, scope schedule.ConnectionScope) (int64, error) {
	f.lastScope = scope
	return f.removed, f.deleteErr
}

type fakeRepoManager struct {
	u  *fakeUsersRepo
	r  *fakeRefreshRepo
	w  *fakeWorkspacesRepo
	it *fakeItemsRepo
	c  *fakeConnectionsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Workspaces(dbx.DBTX) workspaces.Repository       { return m.w }
func (m *fakeRepoManager) Items(dbx.DBTX) items.Repository                 { return m.it }
func (m *fakeRepoManager) Connections(dbx.DBTX) connections.Repository     { return m.c }

type recordingNotifier struct {
	mu     sync.Mutex
	events []schedule.ChangeEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev schedule.ChangeEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}
