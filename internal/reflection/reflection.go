// Package reflection enforces the record invariants of a reflection: draft
// validation on create, partial merges on update, and the image size cap.
//
// Both the server store and the on-device store build records through this
// package, so the two backends agree on what a valid reflection is.
package reflection

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/engagement"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

// MaxImageBytes caps the decoded image payload at ingestion.
const MaxImageBytes = 5 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// Draft is the input to create.
type Draft struct {
	High       string   `json:"high" validate:"required"`
	Low        string   `json:"low" validate:"required"`
	Buffalo    string   `json:"buffalo" validate:"required"`
	SharedWith []string `json:"sharedWith" validate:"omitempty,dive,required"`
	Image      string   `json:"image,omitempty"`
}

// Patch is the input to update. Nil fields are left unchanged.
type Patch struct {
	High                 *string             `json:"high,omitempty"`
	Low                  *string             `json:"low,omitempty"`
	Buffalo              *string             `json:"buffalo,omitempty"`
	Image                *string             `json:"image,omitempty"`
	SharedWith           []string            `json:"sharedWith,omitempty"`
	CuriosityReactions   map[string][]string `json:"curiosityReactions,omitempty"`
	IsFlaggedForFollowUp *bool               `json:"isFlaggedForFollowUp,omitempty"`
}

// Author identifies who is creating a reflection.
type Author struct {
	ID          string
	DisplayName string
}

// NewFromDraft validates the draft and builds a new record with a fresh ID
// and timestamp, zero reactions and the flag cleared.
func NewFromDraft(d Draft, author Author, now time.Time) (*models.Reflection, error) {
	d.High = strings.TrimSpace(d.High)
	d.Low = strings.TrimSpace(d.Low)
	d.Buffalo = strings.TrimSpace(d.Buffalo)
	d.SharedWith = normalizeScopes(d.SharedWith)

	if err := validate.Struct(d); err != nil {
		return nil, validationError(err)
	}
	if err := ValidateImage(d.Image); err != nil {
		return nil, err
	}

	sharedWith := d.SharedWith
	if len(sharedWith) == 0 {
		sharedWith = []string{models.ScopeSelf}
	}

	return &models.Reflection{
		ID:                 models.NewID(),
		High:               d.High,
		Low:                d.Low,
		Buffalo:            d.Buffalo,
		Image:              d.Image,
		Timestamp:          now.UTC(),
		SharedWith:         sharedWith,
		CuriosityReactions: map[string][]string{},
		AuthorID:           author.ID,
		AuthorDisplayName:  author.DisplayName,
	}, nil
}

// ApplyPatch merges p into r in place. The timestamp is refreshed to now only
// when high, low or buffalo actually change. Validation happens before any
// field is touched, so a rejected patch leaves r unmodified.
func ApplyPatch(r *models.Reflection, p Patch, now time.Time) error {
	content := []struct {
		name  string
		value *string
	}{{"high", p.High}, {"low", p.Low}, {"buffalo", p.Buffalo}}
	for _, c := range content {
		if c.value != nil && strings.TrimSpace(*c.value) == "" {
			return apperr.Validation("%s must not be empty", c.name)
		}
	}
	if p.SharedWith != nil && len(normalizeScopes(p.SharedWith)) == 0 {
		return apperr.Validation("sharedWith must name at least one scope")
	}
	if p.Image != nil {
		if err := ValidateImage(*p.Image); err != nil {
			return err
		}
	}

	changed := false
	set := func(field *string, v *string) {
		if v == nil {
			return
		}
		trimmed := strings.TrimSpace(*v)
		if *field != trimmed {
			*field = trimmed
			changed = true
		}
	}
	set(&r.High, p.High)
	set(&r.Low, p.Low)
	set(&r.Buffalo, p.Buffalo)
	if changed {
		r.Timestamp = now.UTC()
	}

	if p.Image != nil {
		r.Image = *p.Image
	}
	if p.SharedWith != nil {
		r.SharedWith = normalizeScopes(p.SharedWith)
	}
	if p.CuriosityReactions != nil {
		r.CuriosityReactions = engagement.Sanitize(p.CuriosityReactions)
	}
	if p.IsFlaggedForFollowUp != nil {
		r.IsFlaggedForFollowUp = *p.IsFlaggedForFollowUp
	}
	return nil
}

// ValidateImage rejects image payloads larger than MaxImageBytes once decoded.
// Data URIs are measured by their base64 body; anything else by raw length.
func ValidateImage(image string) error {
	if image == "" {
		return nil
	}
	if imageSize(image) > MaxImageBytes {
		return apperr.Validation("image exceeds %d MiB", MaxImageBytes>>20)
	}
	return nil
}

func imageSize(image string) int {
	if !strings.HasPrefix(image, "data:") {
		return len(image)
	}
	header, body, ok := strings.Cut(image, ",")
	if !ok {
		return len(image)
	}
	if !strings.HasSuffix(header, ";base64") {
		return len(body)
	}
	body = strings.TrimRight(body, "=")
	return base64.RawStdEncoding.DecodedLen(len(body))
}

// normalizeScopes trims, drops blanks and removes duplicates, keeping order.
func normalizeScopes(scopes []string) []string {
	if scopes == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(scopes))
	out := make([]string, 0, len(scopes))
	for _, s := range scopes {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperr.Validation("invalid reflection: %v", err)
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, strings.ToLower(fe.Field()))
	}
	return apperr.Validation("%s must not be empty", strings.Join(names, ", "))
}
