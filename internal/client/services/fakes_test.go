package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/postplanner/internal/api"
	"github.com/dmitrijs2005/postplanner/internal/client/client"
	"github.com/dmitrijs2005/postplanner/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/models"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newMeta(t *testing.T) metadata.Repository {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return client.NewRepositories(db).Metadata
}

func readMeta(t *testing.T, m metadata.Repository, key string) string {
	t.Helper()
	v, err := metadata.GetString(context.Background(), m, key)
	require.NoError(t, err)
	return v
}

type fakeClient struct {
	mu sync.Mutex

	hook            client.TokenHook
	access, refresh string

	registered  []string
	registerErr error
	loginErr    error
	logoutErr   error
	logoutCalls int
	identity    *models.Identity
	whoErr      error
	healthErr   error

	ticket     *api.UploadTicketResponse
	ticketErr  error
	ticketReqs [][2]string
	inserted   []models.ScheduledItem
	insertErr  error

	count     int64
	countErr  error
	counted   []schedule.ConnectionScope
	deleted   []schedule.ConnectionScope
	deleteErr error
	authURL   string
	authErr   error

	workspaces []models.Workspace
	createErr  error
}

func (f *fakeClient) Register(_ context.Context, email, _ string) (string, error) {
	if f.registerErr != nil {
		return "", f.registerErr
	}
	f.registered = append(f.registered, email)
	return "u1", nil
}

func (f *fakeClient) Login(ctx context.Context, _, _ string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	f.SetTokens("A", "R")
	return f.hook(ctx, "A", "R")
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.logoutCalls++
	f.SetTokens("", "")
	_ = f.hook(ctx, "", "")
	return f.logoutErr
}

func (f *fakeClient) WhoAmI(context.Context) (*models.Identity, error) {
	if f.whoErr != nil {
		return nil, f.whoErr
	}
	return f.identity, nil
}

func (f *fakeClient) Healthy(context.Context) error { return f.healthErr }

func (f *fakeClient) SetTokens(a, r string) {
	f.mu.Lock()
	f.access, f.refresh = a, r
	f.mu.Unlock()
}

func (f *fakeClient) OnTokens(fn client.TokenHook) { f.hook = fn }

func (f *fakeClient) CreateUploadTicket(_ context.Context, filename, contentType string) (*api.UploadTicketResponse, error) {
	f.ticketReqs = append(f.ticketReqs, [2]string{filename, contentType})
	if f.ticketErr != nil {
		return nil, f.ticketErr
	}
	return f.ticket, nil
}

func (f *fakeClient) InsertItem(_ context.Context, item *models.ScheduledItem) (*models.ScheduledItem, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	out := *item
	out.ID = "i-new"
	out.UserID = "u1"
	out.Status = models.StatusScheduled
	f.inserted = append(f.inserted, out)
	return &out, nil
}

func (f *fakeClient) CountConnections(_ context.Context, scope schedule.ConnectionScope) (int64, error) {
	f.counted = append(f.counted, scope)
	return f.count, f.countErr
}

func (f *fakeClient) DeleteConnections(_ context.Context, scope schedule.ConnectionScope) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, scope)
	f.count = 0
	return nil
}

func (f *fakeClient) AuthURL(_ context.Context, workspaceID string, platform models.Platform) (string, error) {
	if f.authErr != nil {
		return "", f.authErr
	}
	return f.authURL + "?ws=" + workspaceID + "&p=" + string(platform), nil
}

func (f *fakeClient) ListWorkspaces(context.Context) ([]models.Workspace, error) {
	return f.workspaces, nil
}

func (f *fakeClient) CreateWorkspace(_ context.Context, name string) (*models.Workspace, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	ws := models.Workspace{ID: "w-new", UserID: "u1", Name: name}
	f.workspaces = append(f.workspaces, ws)
	return &ws, nil
}

func (f *fakeClient) GetWorkspace(_ context.Context, id string) (*models.Workspace, error) {
	for i := range f.workspaces {
		if f.workspaces[i].ID == id {
			return &f.workspaces[i], nil
		}
	}
	return nil, common.ErrorNotFound
}

type fakeSession struct {
	user *models.Identity
	err  error
}

func (s fakeSession) CurrentUser(context.Context) (*models.Identity, error) {
	return s.user, s.err
}

func (s fakeSession) SignOut(context.Context) error { return nil }
