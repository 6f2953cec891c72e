package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/models"
)

type fakeSession struct {
	user *models.Identity
	err  error
}

func (f *fakeSession) CurrentUser(context.Context) (*models.Identity, error) {
	return f.user, f.err
}

func (f *fakeSession) SignOut(context.Context) error {
	f.user = nil
	return nil
}

type fakeSub struct {
	ch     chan ChangeEvent
	once   sync.Once
	closed chan struct{}
}

func newFakeSub() *fakeSub {
	return &fakeSub{ch: make(chan ChangeEvent, 8), closed: make(chan struct{})}
}

func (s *fakeSub) Events() <-chan ChangeEvent { return s.ch }

func (s *fakeSub) Close() error {
	s.once.Do(func() {
		close(s.closed)
		close(s.ch)
	})
	return nil
}

// fakeStore is an in-memory RecordStore. Hooks let tests hold calls open.
type fakeStore struct {
	mu    sync.Mutex
	items []models.ScheduledItem
	conns []models.PlatformConnection

	listErr      error
	deleteErr    error
	subscribeErr error

	// listHook runs after the result is computed, outside the lock.
	listHook   func(call int)
	listCalls  int
	deleteGate chan struct{}
	deleted    []string
	subs       []*fakeSub
}

func (f *fakeStore) ListItems(_ context.Context, q Query) ([]models.ScheduledItem, error) {
	f.mu.Lock()
	f.listCalls++
	call, hook, err := f.listCalls, f.listHook, f.listErr
	var out []models.ScheduledItem
	for _, it := range f.items {
		if q.Matches(it) {
			out = append(out, it)
		}
	}
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return Sort(out, q.Order), nil
}

func (f *fakeStore) InsertItem(_ context.Context, item *models.ScheduledItem) (*models.ScheduledItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *item
	cp.CreatedAt = time.Now()
	f.items = append(f.items, cp)
	return &cp, nil
}

func (f *fakeStore) DeleteItem(_ context.Context, id string) error {
	f.mu.Lock()
	gate := f.deleteGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	for i, it := range f.items {
		if it.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) CountConnections(_ context.Context, s ConnectionScope) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.conns {
		if c.UserID == s.UserID && c.WorkspaceID == s.WorkspaceID && c.Platform == s.Platform {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DeleteConnections(_ context.Context, s ConnectionScope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.conns[:0]
	for _, c := range f.conns {
		if c.UserID == s.UserID && c.WorkspaceID == s.WorkspaceID && c.Platform == s.Platform {
			continue
		}
		kept = append(kept, c)
	}
	f.conns = kept
	return nil
}

func (f *fakeStore) Subscribe(context.Context, Scope) (Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return nil, f.subscribeErr
	}
	s := newFakeSub()
	f.subs = append(f.subs, s)
	return s, nil
}

func (f *fakeStore) lastSub() *fakeSub {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.subs) == 0 {
		return nil
	}
	return f.subs[len(f.subs)-1]
}

func (f *fakeStore) setListHook(h func(call int)) {
	f.mu.Lock()
	f.listHook = h
	f.mu.Unlock()
}

func (f *fakeStore) add(items ...models.ScheduledItem) {
	f.mu.Lock()
	f.items = append(f.items, items...)
	f.mu.Unlock()
}

func mustTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func item(id, user, ws, at string) models.ScheduledItem {
	return models.ScheduledItem{
		ID:          id,
		UserID:      user,
		WorkspaceID: ws,
		Title:       "video " + id,
		MediaURL:    "https://media.example.com/" + id + ".mp4",
		ScheduledAt: mustTime(at),
		Status:      models.StatusScheduled,
		Targets:     models.Targets{YouTube: true},
	}
}

func ids(items []models.ScheduledItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
