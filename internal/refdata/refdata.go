// Package refdata caches the reference data a client needs to label and
// pick sharing scopes: settings, friends and herds. Nothing refreshes
// implicitly; callers decide when to call Refresh.
package refdata

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/highlowbuffalo/internal/identity"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

// Source supplies reference data. Both the local and remote backends implement it.
type Source interface {
	GetSettings(ctx context.Context) (models.UserSettings, error)
	ListFriends(ctx context.Context) ([]models.Friend, error)
	ListHerds(ctx context.Context) ([]*models.Herd, error)
}

// Option is one entry in a share-with picker.
type Option struct {
	ScopeID string
	Label   string
}

// Cache holds the last successfully fetched reference data.
type Cache struct {
	source Source

	mu       sync.RWMutex
	settings models.UserSettings
	friends  []models.Friend
	herds    []models.Herd
}

// New returns an empty cache. Until the first Refresh only "self" is known.
func New(source Source) *Cache {
	return &Cache{source: source}
}

// Refresh fetches settings, friends and herds concurrently. If any fetch
// fails the cache keeps its previous contents.
func (c *Cache) Refresh(ctx context.Context) error {
	var (
		settings models.UserSettings
		friends  []models.Friend
		herds    []*models.Herd
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		settings, err = c.source.GetSettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		friends, err = c.source.ListFriends(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		herds, err = c.source.ListHerds(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	values := make([]models.Herd, 0, len(herds))
	for _, h := range herds {
		values = append(values, *h)
	}

	c.mu.Lock()
	c.settings = settings
	c.friends = friends
	c.herds = values
	c.mu.Unlock()
	return nil
}

func (c *Cache) Settings() models.UserSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

func (c *Cache) Friends() []models.Friend {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Friend(nil), c.friends...)
}

func (c *Cache) Herds() []models.Herd {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Herd(nil), c.herds...)
}

// HerdIDs returns the IDs of every cached herd.
func (c *Cache) HerdIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, len(c.herds))
	for i, h := range c.herds {
		ids[i] = h.ID
	}
	return ids
}

// Label resolves scopeID against the cached friends and herds.
func (c *Cache) Label(scopeID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return identity.LabelFor(scopeID, c.friends, c.herds)
}

// Options lists the scopes a new reflection can be shared with: "self"
// first, then friends, then herds.
func (c *Cache) Options() []Option {
	c.mu.RLock()
	defer c.mu.RUnlock()

	opts := []Option{{ScopeID: models.ScopeSelf, Label: identity.SelfLabel}}
	for _, f := range c.friends {
		opts = append(opts, Option{ScopeID: f.ID, Label: f.Label()})
	}
	for _, h := range c.herds {
		opts = append(opts, Option{ScopeID: h.ID, Label: h.Name})
	}
	return opts
}
