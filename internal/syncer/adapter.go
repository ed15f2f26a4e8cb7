package syncer

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/highlowbuffalo/internal/engagement"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
	"github.com/mmynk/highlowbuffalo/internal/visibility"
)

// Adapter is the caller's view of reflections, written through to a Backend.
//
// Create, update and delete change the view only after the backend confirms.
// Reactions and flags are applied to the view first and undone if the backend
// rejects them. Deleted IDs are remembered so that a response arriving after
// the delete cannot bring the record back.
//
// confirmed counts, per ID, how many backend records have replaced the cached
// one. A failed toggle is undone only if that count has not moved since the
// toggle was applied; otherwise the cached record already came from the
// backend and no longer carries the failed toggle.
type Adapter struct {
	backend  Backend
	observer Observer
	viewerID string

	mu         sync.Mutex
	own        map[string]*models.Reflection
	feed       map[string]*models.Reflection
	tombstones map[string]struct{}
	confirmed  map[string]uint64
}

// New creates an adapter for viewerID. A nil observer discards events.
func New(backend Backend, viewerID string, observer Observer) *Adapter {
	if observer == nil {
		observer = ObserverFunc(func(Event) {})
	}
	return &Adapter{
		backend:    backend,
		observer:   observer,
		viewerID:   viewerID,
		own:        make(map[string]*models.Reflection),
		feed:       make(map[string]*models.Reflection),
		tombstones: make(map[string]struct{}),
		confirmed:  make(map[string]uint64),
	}
}

func (a *Adapter) emit(op Op, id string, state State, err error) {
	a.observer.Observe(Event{Op: op, ID: id, State: state, Err: err})
}

// Load fetches own reflections and the feed concurrently and replaces the view.
// On error the previous view is kept.
func (a *Adapter) Load(ctx context.Context) error {
	a.emit(OpLoad, "", StatePending, nil)

	var own, feed []*models.Reflection
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		own, err = a.backend.ListReflections(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		feed, err = a.backend.Feed(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		a.emit(OpLoad, "", StateFailed, err)
		return err
	}

	a.mu.Lock()
	a.own = a.index(own)
	a.feed = a.index(feed)
	for id := range a.own {
		a.confirmed[id]++
	}
	for id := range a.feed {
		a.confirmed[id]++
	}
	a.mu.Unlock()

	a.emit(OpLoad, "", StateConfirmed, nil)
	return nil
}

// index builds a lookup keyed by ID, skipping tombstoned records.
// Callers must hold a.mu.
func (a *Adapter) index(rs []*models.Reflection) map[string]*models.Reflection {
	m := make(map[string]*models.Reflection, len(rs))
	for _, r := range rs {
		if _, dead := a.tombstones[r.ID]; dead {
			continue
		}
		m[r.ID] = r.Clone()
	}
	return m
}

// Create persists a new reflection and adds it to the view once confirmed.
func (a *Adapter) Create(ctx context.Context, draft reflection.Draft) (*models.Reflection, error) {
	a.emit(OpCreate, "", StatePending, nil)

	created, err := a.backend.CreateReflection(ctx, draft)
	if err != nil {
		a.emit(OpCreate, "", StateFailed, err)
		return nil, err
	}

	a.mu.Lock()
	a.confirm(created)
	a.mu.Unlock()

	a.emit(OpCreate, created.ID, StateConfirmed, nil)
	return created.Clone(), nil
}

// Update applies patch on the backend and replaces the record with the
// confirmed version.
func (a *Adapter) Update(ctx context.Context, id string, patch reflection.Patch) (*models.Reflection, error) {
	a.emit(OpUpdate, id, StatePending, nil)

	updated, err := a.backend.UpdateReflection(ctx, id, patch)
	if err != nil {
		a.emit(OpUpdate, id, StateFailed, err)
		return nil, err
	}

	a.mu.Lock()
	a.confirm(updated)
	a.mu.Unlock()

	a.emit(OpUpdate, id, StateConfirmed, nil)
	return updated.Clone(), nil
}

// Delete removes the reflection on the backend, then from the view.
func (a *Adapter) Delete(ctx context.Context, id string) error {
	a.emit(OpDelete, id, StatePending, nil)

	if err := a.backend.DeleteReflection(ctx, id); err != nil {
		a.emit(OpDelete, id, StateFailed, err)
		return err
	}

	a.mu.Lock()
	delete(a.own, id)
	delete(a.feed, id)
	a.tombstones[id] = struct{}{}
	a.mu.Unlock()

	a.emit(OpDelete, id, StateConfirmed, nil)
	return nil
}

// ToggleReaction toggles the viewer's reaction of kind. The view reflects the
// toggle immediately; if the backend fails the toggle is undone and the
// error returned.
func (a *Adapter) ToggleReaction(ctx context.Context, id, kind string) (*models.Reflection, error) {
	toggle := func(r *models.Reflection) { engagement.ToggleReaction(r, a.viewerID, kind) }
	return a.optimistic(ctx, OpReact, id, toggle, func(ctx context.Context) (*models.Reflection, error) {
		return a.backend.ToggleReaction(ctx, id, kind)
	})
}

// ToggleFlag toggles the follow-up flag, optimistically like ToggleReaction.
func (a *Adapter) ToggleFlag(ctx context.Context, id string) (*models.Reflection, error) {
	toggle := func(r *models.Reflection) { engagement.ToggleFollowUpFlag(r) }
	return a.optimistic(ctx, OpFlag, id, toggle, func(ctx context.Context) (*models.Reflection, error) {
		return a.backend.ToggleFlag(ctx, id)
	})
}

// optimistic applies toggle to the cached record, calls the backend and then
// either stores the canonical record or undoes the toggle. Both toggles are
// involutions, so undoing by re-applying keeps other in-flight toggles on the
// same record. If a backend record replaced the cache in the meantime there is
// nothing left to undo.
func (a *Adapter) optimistic(
	ctx context.Context,
	op Op,
	id string,
	toggle func(*models.Reflection),
	call func(context.Context) (*models.Reflection, error),
) (*models.Reflection, error) {
	a.mu.Lock()
	seen := a.confirmed[id]
	if r := a.lookup(id); r != nil {
		next := r.Clone()
		toggle(next)
		a.store(next)
	}
	a.mu.Unlock()
	a.emit(op, id, StatePending, nil)

	canonical, err := call(ctx)
	if err != nil {
		a.mu.Lock()
		if r := a.lookup(id); r != nil && a.confirmed[id] == seen {
			prev := r.Clone()
			toggle(prev)
			a.store(prev)
		}
		a.mu.Unlock()
		a.emit(op, id, StateFailed, err)
		return nil, err
	}

	a.mu.Lock()
	a.confirm(canonical)
	a.mu.Unlock()
	a.emit(op, id, StateConfirmed, nil)
	return canonical.Clone(), nil
}

// lookup finds a cached record. Callers must hold a.mu.
func (a *Adapter) lookup(id string) *models.Reflection {
	if r, ok := a.own[id]; ok {
		return r
	}
	return a.feed[id]
}

// store puts r in whichever list it belongs to, unless it was deleted.
// Callers must hold a.mu.
func (a *Adapter) store(r *models.Reflection) {
	if _, dead := a.tombstones[r.ID]; dead {
		return
	}
	if r.AuthorID == a.viewerID || a.own[r.ID] != nil {
		a.own[r.ID] = r.Clone()
		return
	}
	a.feed[r.ID] = r.Clone()
}

// confirm stores a record returned by the backend. Callers must hold a.mu.
func (a *Adapter) confirm(r *models.Reflection) {
	a.store(r)
	a.confirmed[r.ID]++
}

// Get returns a copy of the cached record, if present.
func (a *Adapter) Get(id string) (*models.Reflection, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.lookup(id)
	if r == nil {
		return nil, false
	}
	return r.Clone(), true
}

// View returns the viewer's own reflections matching selector, newest first.
func (a *Adapter) View(selector string) []*models.Reflection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return snapshot(a.own, selector)
}

// Feed returns other authors' reflections matching selector, newest first.
func (a *Adapter) Feed(selector string) []*models.Reflection {
	a.mu.Lock()
	defer a.mu.Unlock()
	return snapshot(a.feed, selector)
}

// FollowUps returns own and feed reflections that need follow-up, newest first.
func (a *Adapter) FollowUps() []*models.Reflection {
	a.mu.Lock()
	defer a.mu.Unlock()
	all := append(snapshot(a.own, visibility.All), snapshot(a.feed, visibility.All)...)
	out := visibility.FollowUps(all)
	visibility.NewestFirst(out)
	return out
}

func snapshot(m map[string]*models.Reflection, selector string) []*models.Reflection {
	rs := make([]*models.Reflection, 0, len(m))
	for _, r := range m {
		rs = append(rs, r.Clone())
	}
	rs = visibility.Filter(rs, selector)
	visibility.NewestFirst(rs)
	return rs
}
