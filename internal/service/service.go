// Package service implements the server-side use cases behind the REST API.
// Every method takes the authenticated user ID explicitly and returns
// apperr errors that the API layer maps to HTTP statuses.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/storage"
)

// Clock returns the current time. Services truncate to milliseconds, the
// resolution timestamps are stored at.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func orDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// herdIDsFor returns the IDs of every herd userID belongs to.
func herdIDsFor(ctx context.Context, store storage.HerdStore, userID string) ([]string, error) {
	herds, err := store.ListHerdsForMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(herds))
	for i, h := range herds {
		ids[i] = h.ID
	}
	return ids, nil
}

// storeErr wraps storage failures that are not already application errors.
func storeErr(err error, msg string) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(err, "%s", msg)
}
