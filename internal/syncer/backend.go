// Package syncer keeps an in-memory view of the caller's reflections and
// feed consistent with a backend, applying reactions and follow-up flags
// optimistically.
package syncer

import (
	"context"

	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
)

// Backend is the store the adapter writes through to: the single-device
// local store or the remote REST service.
type Backend interface {
	// ListReflections returns the caller's own reflections.
	ListReflections(ctx context.Context) ([]*models.Reflection, error)
	// Feed returns other authors' reflections visible to the caller.
	Feed(ctx context.Context) ([]*models.Reflection, error)

	CreateReflection(ctx context.Context, draft reflection.Draft) (*models.Reflection, error)
	UpdateReflection(ctx context.Context, id string, patch reflection.Patch) (*models.Reflection, error)
	DeleteReflection(ctx context.Context, id string) error

	// ToggleReaction and ToggleFlag return the canonical record after the toggle.
	ToggleReaction(ctx context.Context, id, kind string) (*models.Reflection, error)
	ToggleFlag(ctx context.Context, id string) (*models.Reflection, error)
}
