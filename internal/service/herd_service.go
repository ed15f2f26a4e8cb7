package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/auth"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/storage"
)

// HerdService manages herds and their membership.
type HerdService struct {
	store  storage.Store
	logger *slog.Logger
	now    Clock
}

// NewHerdService creates a HerdService. A nil logger uses slog.Default().
func NewHerdService(store storage.Store, logger *slog.Logger) *HerdService {
	return &HerdService{store: store, logger: orDefault(logger), now: systemClock}
}

// HerdInput carries the editable fields of a herd.
type HerdInput struct {
	Name        string
	Description *string
}

// Create makes a new herd owned by userID, who becomes its first member.
func (s *HerdService) Create(ctx context.Context, userID string, in HerdInput) (*models.Herd, error) {
	s.logger.Info("CreateHerd request received", "user_id", userID, "name", in.Name)

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name must not be empty")
	}

	owner, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "failed to create herd")
	}

	now := s.now()
	herd := &models.Herd{
		ID:        models.NewID(),
		Name:      name,
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
		Members: []models.HerdMember{{
			UserID:      owner.ID,
			Email:       owner.Email,
			DisplayName: owner.DisplayName,
			JoinedAt:    now,
			Role:        models.RoleOwner,
		}},
	}
	if in.Description != nil {
		herd.Description = strings.TrimSpace(*in.Description)
	}

	if err := s.store.CreateHerd(ctx, herd); err != nil {
		s.logger.Error("CreateHerd failed", "error", err)
		return nil, storeErr(err, "failed to create herd")
	}

	s.logger.Info("Herd created", "herd_id", herd.ID)
	return herd, nil
}

// List returns the herds userID belongs to.
func (s *HerdService) List(ctx context.Context, userID string) ([]*models.Herd, error) {
	herds, err := s.store.ListHerdsForMember(ctx, userID)
	if err != nil {
		s.logger.Error("ListHerds failed", "user_id", userID, "error", err)
		return nil, storeErr(err, "failed to list herds")
	}
	s.logger.Info("ListHerds successful", "user_id", userID, "count", len(herds))
	return herds, nil
}

// Get returns a herd the user belongs to. Non-members get Forbidden.
func (s *HerdService) Get(ctx context.Context, userID, herdID string) (*models.Herd, error) {
	herd, err := s.load(ctx, herdID)
	if err != nil {
		return nil, err
	}
	if !herd.IsMember(userID) {
		return nil, apperr.Forbidden("not authorized to access this herd")
	}
	return herd, nil
}

// Update changes the herd's name or description. Owner only.
func (s *HerdService) Update(ctx context.Context, userID, herdID string, in HerdInput) (*models.Herd, error) {
	s.logger.Info("UpdateHerd request received", "herd_id", herdID, "user_id", userID)

	herd, err := s.ownedBy(ctx, userID, herdID, "update")
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		herd.Name = strings.TrimSpace(in.Name)
		if herd.Name == "" {
			return nil, apperr.Validation("name must not be empty")
		}
	}
	if in.Description != nil {
		herd.Description = strings.TrimSpace(*in.Description)
	}
	herd.UpdatedAt = s.now()

	if err := s.store.UpdateHerd(ctx, herd); err != nil {
		s.logger.Error("UpdateHerd failed", "herd_id", herdID, "error", err)
		return nil, storeErr(err, "failed to update herd")
	}

	s.logger.Info("Herd updated", "herd_id", herdID)
	return herd, nil
}

// Delete removes the herd. Owner only. Reflections shared with it keep the
// stale ID and simply stop matching anyone.
func (s *HerdService) Delete(ctx context.Context, userID, herdID string) error {
	s.logger.Info("DeleteHerd request received", "herd_id", herdID, "user_id", userID)

	if _, err := s.ownedBy(ctx, userID, herdID, "delete"); err != nil {
		return err
	}
	if err := s.store.DeleteHerd(ctx, herdID); err != nil {
		s.logger.Error("DeleteHerd failed", "herd_id", herdID, "error", err)
		return storeErr(err, "failed to delete herd")
	}

	s.logger.Info("Herd deleted", "herd_id", herdID)
	return nil
}

// AddMember adds the user registered under email. Owner only.
func (s *HerdService) AddMember(ctx context.Context, userID, herdID, email string) (*models.Herd, error) {
	email = auth.NormalizeEmail(email)
	s.logger.Info("AddHerdMember request received", "herd_id", herdID, "user_id", userID, "email", email)

	herd, err := s.ownedBy(ctx, userID, herdID, "add members to")
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.NotFound("user with this email not found")
	}
	if err != nil {
		return nil, storeErr(err, "failed to look up user")
	}
	if herd.IsMember(user.ID) {
		return nil, apperr.Conflict("user is already a member of this herd")
	}

	member := models.HerdMember{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		JoinedAt:    s.now(),
		Role:        models.RoleMember,
	}
	if err := s.store.AddHerdMember(ctx, herdID, member); err != nil {
		return nil, storeErr(err, "failed to add member")
	}

	s.logger.Info("Herd member added", "herd_id", herdID, "member_id", user.ID)
	return s.load(ctx, herdID)
}

// RemoveMember removes memberID. The owner may remove anyone but themselves;
// any other member may only remove themselves (leave).
func (s *HerdService) RemoveMember(ctx context.Context, userID, herdID, memberID string) (*models.Herd, error) {
	s.logger.Info("RemoveHerdMember request received", "herd_id", herdID, "user_id", userID, "member_id", memberID)

	herd, err := s.load(ctx, herdID)
	if err != nil {
		return nil, err
	}

	isOwner := herd.OwnerID == userID
	if !isOwner && userID != memberID {
		return nil, apperr.Forbidden("not authorized to remove this member")
	}
	if memberID == herd.OwnerID {
		return nil, apperr.Validation("owner cannot leave the herd, delete the herd instead")
	}
	if !herd.IsMember(memberID) {
		return nil, apperr.NotFound("member not found in herd")
	}

	if err := s.store.RemoveHerdMember(ctx, herdID, memberID); err != nil {
		return nil, storeErr(err, "failed to remove member")
	}

	s.logger.Info("Herd member removed", "herd_id", herdID, "member_id", memberID)
	return s.load(ctx, herdID)
}

func (s *HerdService) load(ctx context.Context, herdID string) (*models.Herd, error) {
	herd, err := s.store.GetHerd(ctx, herdID)
	if err != nil {
		return nil, storeErr(err, "failed to load herd")
	}
	return herd, nil
}

func (s *HerdService) ownedBy(ctx context.Context, userID, herdID, action string) (*models.Herd, error) {
	herd, err := s.load(ctx, herdID)
	if err != nil {
		return nil, err
	}
	if herd.OwnerID != userID {
		return nil, apperr.Forbidden("only the owner can %s the herd", action)
	}
	return herd, nil
}
