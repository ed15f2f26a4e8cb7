package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

// AddFriendship records userID and friendID as friends of each other.
func (s *SQLiteStore) AddFriendship(ctx context.Context, userID, friendID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := toMillis(time.Now())
	for _, pair := range [][2]string{{userID, friendID}, {friendID, userID}} {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO friendships (user_id, friend_id, created_at) VALUES (?, ?, ?)",
			pair[0], pair[1], now,
		)
		if isUniqueViolation(err) {
			return apperr.Conflict("already friends")
		}
		if err != nil {
			return fmt.Errorf("failed to add friendship: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// RemoveFriendship deletes both directions of the friendship.
func (s *SQLiteStore) RemoveFriendship(ctx context.Context, userID, friendID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships
		 WHERE (user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)`,
		userID, friendID, friendID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("friend not found: %s", friendID)
	}
	return nil
}

// ListFriends returns userID's friends ordered by when they were added.
func (s *SQLiteStore) ListFriends(ctx context.Context, userID string) ([]models.Friend, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.display_name
		 FROM friendships f JOIN users u ON u.id = f.friend_id
		 WHERE f.user_id = ?
		 ORDER BY f.created_at, u.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []models.Friend{}
	for rows.Next() {
		var f models.Friend
		if err := rows.Scan(&f.ID, &f.Email, &f.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}
	return friends, nil
}
