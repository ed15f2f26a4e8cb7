package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/engagement"
	"github.com/mmynk/highlowbuffalo/internal/metrics"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/reflection"
	"github.com/mmynk/highlowbuffalo/internal/storage"
	"github.com/mmynk/highlowbuffalo/internal/visibility"
)

// ReflectionService manages reflections, the feed and engagement.
type ReflectionService struct {
	store  storage.Store
	logger *slog.Logger
	now    Clock
}

// NewReflectionService creates a ReflectionService. A nil logger uses slog.Default().
func NewReflectionService(store storage.Store, logger *slog.Logger) *ReflectionService {
	return &ReflectionService{store: store, logger: orDefault(logger), now: systemClock}
}

// List returns the user's own reflections matching scope, newest first.
func (s *ReflectionService) List(ctx context.Context, userID, scope string) ([]*models.Reflection, error) {
	s.logger.Info("ListReflections request received", "user_id", userID, "scope", scope)

	rs, err := s.store.ListReflectionsByAuthor(ctx, userID)
	if err != nil {
		s.logger.Error("ListReflections failed", "user_id", userID, "error", err)
		return nil, storeErr(err, "failed to list reflections")
	}
	rs = visibility.Filter(rs, scope)
	visibility.NewestFirst(rs)
	return rs, nil
}

// Feed returns other authors' reflections shared with the user directly or
// through one of the user's herds, optionally narrowed to scope.
func (s *ReflectionService) Feed(ctx context.Context, userID, scope string) ([]*models.Reflection, error) {
	s.logger.Info("Feed request received", "user_id", userID, "scope", scope)

	herdIDs, err := herdIDsFor(ctx, s.store, userID)
	if err != nil {
		s.logger.Error("Feed failed - could not list herds", "user_id", userID, "error", err)
		return nil, storeErr(err, "failed to load feed")
	}

	candidates, err := s.store.ListReflectionsSharedWith(ctx, append([]string{userID}, herdIDs...), userID)
	if err != nil {
		s.logger.Error("Feed failed", "user_id", userID, "error", err)
		return nil, storeErr(err, "failed to load feed")
	}

	rs := visibility.Filter(visibility.Feed(candidates, userID, herdIDs), scope)
	visibility.NewestFirst(rs)

	s.logger.Info("Feed successful", "user_id", userID, "count", len(rs))
	return rs, nil
}

// FollowUps returns own and feed reflections that are flagged or have reactions.
func (s *ReflectionService) FollowUps(ctx context.Context, userID string) ([]*models.Reflection, error) {
	own, err := s.List(ctx, userID, visibility.All)
	if err != nil {
		return nil, err
	}
	feed, err := s.Feed(ctx, userID, visibility.All)
	if err != nil {
		return nil, err
	}
	rs := visibility.FollowUps(append(own, feed...))
	visibility.NewestFirst(rs)
	return rs, nil
}

// Create validates the draft and persists a new reflection authored by userID.
func (s *ReflectionService) Create(ctx context.Context, userID string, draft reflection.Draft) (*models.Reflection, error) {
	s.logger.Info("CreateReflection request received",
		"user_id", userID,
		"scopes", len(draft.SharedWith),
	)

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error("CreateReflection failed - unknown author", "user_id", userID, "error", err)
		return nil, storeErr(err, "failed to create reflection")
	}

	r, err := reflection.NewFromDraft(draft, reflection.Author{ID: user.ID, DisplayName: user.DisplayName}, s.now())
	if err != nil {
		s.logger.Warn("CreateReflection rejected", "user_id", userID, "error", err)
		return nil, err
	}

	if err := s.store.CreateReflection(ctx, r); err != nil {
		s.logger.Error("CreateReflection failed", "user_id", userID, "error", err)
		return nil, storeErr(err, "failed to create reflection")
	}
	metrics.ReflectionsCreated.Inc()

	s.logger.Info("Reflection created", "reflection_id", r.ID, "user_id", userID)
	return r, nil
}

// Update merges patch into one of the user's reflections.
func (s *ReflectionService) Update(ctx context.Context, userID, id string, patch reflection.Patch) (*models.Reflection, error) {
	s.logger.Info("UpdateReflection request received", "reflection_id", id, "user_id", userID)

	r, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := reflection.ApplyPatch(r, patch, s.now()); err != nil {
		s.logger.Warn("UpdateReflection rejected", "reflection_id", id, "error", err)
		return nil, err
	}
	fields := storage.ReflectionFields{
		Scopes:    patch.SharedWith != nil,
		Reactions: patch.CuriosityReactions != nil,
		Flag:      patch.IsFlaggedForFollowUp != nil,
	}
	if err := s.store.UpdateReflection(ctx, r, fields); err != nil {
		s.logger.Error("UpdateReflection failed", "reflection_id", id, "error", err)
		return nil, storeErr(err, "failed to update reflection")
	}

	s.logger.Info("Reflection updated", "reflection_id", id)
	return s.reload(ctx, id, "failed to update reflection")
}

// Delete removes one of the user's reflections. Reflections the user does
// not own, or that do not exist, are reported as NotFound.
func (s *ReflectionService) Delete(ctx context.Context, userID, id string) error {
	s.logger.Info("DeleteReflection request received", "reflection_id", id, "user_id", userID)

	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.DeleteReflection(ctx, id); err != nil {
		s.logger.Error("DeleteReflection failed", "reflection_id", id, "error", err)
		return storeErr(err, "failed to delete reflection")
	}

	s.logger.Info("Reflection deleted", "reflection_id", id)
	return nil
}

// ToggleReaction toggles userID's reaction of kind on a reflection the user can see.
func (s *ReflectionService) ToggleReaction(ctx context.Context, userID, id, kind string) (*models.Reflection, error) {
	kind = engagement.NormalizeKind(kind)
	s.logger.Info("ToggleReaction request received", "reflection_id", id, "user_id", userID, "kind", kind)

	if _, err := s.visible(ctx, userID, id); err != nil {
		return nil, err
	}

	reacted, err := s.store.ToggleReaction(ctx, id, kind, userID)
	if err != nil {
		s.logger.Error("ToggleReaction failed", "reflection_id", id, "error", err)
		return nil, storeErr(err, "failed to save reaction")
	}

	direction := "removed"
	if reacted {
		direction = "added"
	}
	metrics.ReactionsToggled.WithLabelValues(kind, direction).Inc()

	r, err := s.reload(ctx, id, "failed to save reaction")
	if err != nil {
		return nil, err
	}
	s.logger.Info("Reaction toggled", "reflection_id", id, "reacted", reacted, "count", engagement.ReactionCount(r, kind))
	return r, nil
}

// ToggleFlag toggles the follow-up flag on a reflection the user can see.
func (s *ReflectionService) ToggleFlag(ctx context.Context, userID, id string) (*models.Reflection, error) {
	s.logger.Info("ToggleFlag request received", "reflection_id", id, "user_id", userID)

	if _, err := s.visible(ctx, userID, id); err != nil {
		return nil, err
	}

	flagged, err := s.store.ToggleFlag(ctx, id)
	if err != nil {
		s.logger.Error("ToggleFlag failed", "reflection_id", id, "error", err)
		return nil, storeErr(err, "failed to save flag")
	}
	metrics.FlagsToggled.Inc()

	s.logger.Info("Follow-up flag toggled", "reflection_id", id, "flagged", flagged)
	return s.reload(ctx, id, "failed to save flag")
}

// reload reads back the stored record after a write.
func (s *ReflectionService) reload(ctx context.Context, id, msg string) (*models.Reflection, error) {
	r, err := s.store.GetReflection(ctx, id)
	if err != nil {
		s.logger.Error("GetReflection failed", "reflection_id", id, "error", err)
		return nil, storeErr(err, msg)
	}
	return r, nil
}

// owned loads id and checks userID is its author.
func (s *ReflectionService) owned(ctx context.Context, userID, id string) (*models.Reflection, error) {
	r, err := s.store.GetReflection(ctx, id)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			s.logger.Error("GetReflection failed", "reflection_id", id, "error", err)
		}
		return nil, storeErr(err, "failed to load reflection")
	}
	if r.AuthorID != userID {
		return nil, apperr.NotFound("reflection not found: %s", id)
	}
	return r, nil
}

// visible loads id and checks userID can see it.
func (s *ReflectionService) visible(ctx context.Context, userID, id string) (*models.Reflection, error) {
	r, err := s.store.GetReflection(ctx, id)
	if err != nil {
		return nil, storeErr(err, "failed to load reflection")
	}
	herdIDs, err := herdIDsFor(ctx, s.store, userID)
	if err != nil {
		return nil, storeErr(err, "failed to load herds")
	}
	if !visibility.CanView(r, userID, herdIDs) {
		return nil, apperr.NotFound("reflection not found: %s", id)
	}
	return r, nil
}
