package schedule

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/dmitrijs2005/postplanner/internal/models"
)

var (
	ErrItemNotFound = errors.New("item not in view")
	ErrNotOpen      = errors.New("view is not open")
	ErrAlreadyOpen  = errors.New("view is already open")
	ErrNoWorkspace  = errors.New("view is not scoped to a workspace")
)

// Kind selects the fetch policy of a View.
type Kind int

const (
	KindUpcoming Kind = iota
	KindHistory
	KindWorkspace
)

func (k Kind) String() string {
	switch k {
	case KindHistory:
		return "history"
	case KindWorkspace:
		return "workspace"
	default:
		return "upcoming"
	}
}

// Options configures a View.
type Options struct {
	Kind        Kind
	WorkspaceID string
	// Platform whose connection status is tracked by workspace views.
	// Defaults to YouTube.
	Platform models.Platform
	// Now is the clock used to compute the start of the current day.
	Now    func() time.Time
	Logger logging.Logger
	// OneShot views load a single snapshot and skip the change stream.
	OneShot bool
}

// View owns the in-memory collection of one user/workspace scope and keeps
// its grouped presentation in sync with the record store.
//
// Every change to the collection regroups it wholesale. Snapshots fetched by
// Refresh replace the collection; a fetch that completes after a later one
// was already applied is discarded.
//
// Deletes are optimistic: the item disappears immediately, and if the store
// rejects the delete it is put back and the error is returned to the caller.
type View struct {
	store   RecordStore
	session SessionProvider
	opts    Options
	log     logging.Logger

	mu        sync.Mutex
	user      *models.Identity
	items     []models.ScheduledItem
	grouped   GroupedSchedule
	connected bool
	pending   map[string]struct{}
	issued    uint64
	applied   uint64
	onChange  func(GroupedSchedule)
	closed    bool

	sub    Subscription
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewView builds a closed view. Call Open to start it.
func NewView(store RecordStore, session SessionProvider, opts Options) *View {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Platform == "" {
		opts.Platform = models.PlatformYouTube
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	return &View{
		store:   store,
		session: session,
		opts:    opts,
		log:     opts.Logger.With("module", "schedule", "view", opts.Kind.String()),
		grouped: GroupedSchedule{Buckets: map[string][]models.ScheduledItem{}},
		pending: make(map[string]struct{}),
	}
}

// Open resolves the session user, loads the first snapshot, derives the
// connection status for workspace views and subscribes to the change stream
// of the scope. It returns ErrUnauthenticated when nobody is signed in.
//
// Fetch and subscribe failures are logged and leave the view open with
// whatever it has. A OneShot view returns the fetch error instead and never
// subscribes.
func (v *View) Open(ctx context.Context) error {
	if v.opts.Kind == KindWorkspace && v.opts.WorkspaceID == "" {
		return ErrNoWorkspace
	}

	v.mu.Lock()
	if v.done != nil || v.closed {
		v.mu.Unlock()
		return ErrAlreadyOpen
	}
	done := make(chan struct{})
	v.done = done
	v.mu.Unlock()

	user, err := v.session.CurrentUser(ctx)
	if err == nil && user == nil {
		err = ErrUnauthenticated
	}
	if err != nil {
		v.mu.Lock()
		v.done = nil
		v.mu.Unlock()
		close(done)
		return fmt.Errorf("resolve session: %w", err)
	}

	v.mu.Lock()
	v.user = user
	v.mu.Unlock()

	fetchErr := v.Refresh(ctx)
	if v.opts.Kind == KindWorkspace {
		v.refreshConnection(ctx)
	}

	if v.opts.OneShot {
		close(done)
		return fetchErr
	}

	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub, err := v.store.Subscribe(loopCtx, v.query().Scope())
	if err != nil {
		cancel()
		close(done)
		v.log.Warn(ctx, "subscribe failed, live updates disabled", "error", err)
		return nil
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		cancel()
		_ = sub.Close()
		close(done)
		return nil
	}
	v.sub = sub
	v.cancel = cancel
	v.mu.Unlock()

	go v.loop(loopCtx, sub, done)
	return nil
}

func (v *View) loop(ctx context.Context, sub Subscription, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			v.log.Debug(ctx, "change received", "type", ev.Type, "table", ev.Table, "id", ev.RecordID)
			if ev.Table == TableConnections {
				if v.opts.Kind == KindWorkspace {
					v.refreshConnection(ctx)
				}
				continue
			}
			_ = v.Refresh(ctx)
		}
	}
}

// Close stops the change subscription and waits for the event loop to
// finish. No callbacks fire after Close returns. It is safe to call more
// than once.
func (v *View) Close() error {
	var err error
	v.once.Do(func() {
		v.mu.Lock()
		v.closed = true
		sub, cancel, done := v.sub, v.cancel, v.done
		v.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if sub != nil {
			err = sub.Close()
		}
		if done != nil {
			<-done
		}
	})
	return err
}

// Refresh fetches the scope and replaces the collection with the result.
// On error the current snapshot is kept and the error is returned.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.user == nil {
		v.mu.Unlock()
		return ErrNotOpen
	}
	v.issued++
	seq := v.issued
	q := v.queryLocked()
	v.mu.Unlock()

	items, err := v.store.ListItems(ctx, q)
	if err != nil {
		v.log.Error(ctx, "fetch failed, keeping previous snapshot", "error", err)
		return fmt.Errorf("list items: %w", err)
	}

	v.mu.Lock()
	if v.closed || seq < v.applied {
		v.mu.Unlock()
		v.log.Debug(ctx, "discarding stale snapshot", "seq", seq)
		return nil
	}
	v.applied = seq
	v.items = slices.DeleteFunc(items, func(it models.ScheduledItem) bool {
		_, pending := v.pending[it.ID]
		return pending
	})
	cb, g := v.regroupLocked()
	v.mu.Unlock()

	v.notify(cb, g)
	return nil
}

// Delete removes the item from the view, then from the store. If the store
// fails the item is restored and the error returned.
func (v *View) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	idx := slices.IndexFunc(v.items, func(it models.ScheduledItem) bool { return it.ID == id })
	if idx < 0 {
		v.mu.Unlock()
		return ErrItemNotFound
	}
	removed := v.items[idx]
	v.items = slices.Delete(slices.Clone(v.items), idx, idx+1)
	v.pending[id] = struct{}{}
	cb, g := v.regroupLocked()
	v.mu.Unlock()
	v.notify(cb, g)

	err := v.store.DeleteItem(ctx, id)

	v.mu.Lock()
	delete(v.pending, id)
	if err == nil {
		v.mu.Unlock()
		return nil
	}
	if !slices.ContainsFunc(v.items, func(it models.ScheduledItem) bool { return it.ID == id }) {
		v.items = append(v.items, removed)
	}
	cb, g = v.regroupLocked()
	v.mu.Unlock()
	v.notify(cb, g)

	v.log.Warn(ctx, "delete failed, item restored", "id", id, "error", err)
	return fmt.Errorf("delete item %s: %w", id, err)
}

// Disconnect removes every connection of the workspace to the platform.
func (v *View) Disconnect(ctx context.Context) error {
	if v.opts.Kind != KindWorkspace {
		return ErrNoWorkspace
	}
	scope, err := v.connectionScope()
	if err != nil {
		return err
	}
	if err := v.store.DeleteConnections(ctx, scope); err != nil {
		return fmt.Errorf("disconnect %s: %w", scope.Platform, err)
	}

	v.mu.Lock()
	v.connected = false
	cb, g := v.onChange, v.grouped.clone()
	v.mu.Unlock()
	v.notify(cb, g)
	return nil
}

// Grouped returns a copy of the current grouped presentation.
func (v *View) Grouped() GroupedSchedule {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.grouped.clone()
}

// Items returns the current collection in view order.
func (v *View) Items() []models.ScheduledItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.items)
}

// Connected is the platform connection flag of a workspace view.
func (v *View) Connected() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connected
}

// User is the identity the view was opened for.
func (v *View) User() *models.Identity {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.user
}

// OnChange registers fn to be called with the new grouping after every
// change. fn runs on the goroutine that made the change.
func (v *View) OnChange(fn func(GroupedSchedule)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

func (v *View) refreshConnection(ctx context.Context) {
	scope, err := v.connectionScope()
	if err != nil {
		return
	}
	ok, err := ConnectionStatus(ctx, v.store, scope)
	if err != nil {
		v.log.Error(ctx, "connection status failed", "error", err)
		return
	}

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	changed := v.connected != ok
	v.connected = ok
	cb, g := v.onChange, v.grouped.clone()
	v.mu.Unlock()

	if changed {
		v.notify(cb, g)
	}
}

func (v *View) connectionScope() (ConnectionScope, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.user == nil {
		return ConnectionScope{}, ErrNotOpen
	}
	return ConnectionScope{
		UserID:      v.user.UserID,
		WorkspaceID: v.opts.WorkspaceID,
		Platform:    v.opts.Platform,
	}, nil
}

func (v *View) query() Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.queryLocked()
}

func (v *View) queryLocked() Query {
	now := v.opts.Now()
	switch v.opts.Kind {
	case KindHistory:
		return HistoryQuery(v.user.UserID, now)
	case KindWorkspace:
		return WorkspaceQuery(v.user.UserID, v.opts.WorkspaceID, now)
	default:
		return UpcomingQuery(v.user.UserID, now)
	}
}

func (v *View) direction() Direction {
	if v.opts.Kind == KindHistory {
		return Descending
	}
	return Ascending
}

// regroupLocked rebuilds the grouping from v.items and returns the callback
// to fire once the lock is released.
func (v *View) regroupLocked() (func(GroupedSchedule), GroupedSchedule) {
	v.grouped = Group(v.items, v.direction())
	v.items = v.grouped.Flatten()
	if v.closed {
		return nil, GroupedSchedule{}
	}
	return v.onChange, v.grouped.clone()
}

func (v *View) notify(cb func(GroupedSchedule), g GroupedSchedule) {
	if cb != nil {
		cb(g)
	}
}
