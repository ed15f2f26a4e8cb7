package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
	"github.com/mmynk/highlowbuffalo/internal/storage"
)

const reflectionColumns = "id, author_id, author_display_name, high, low, buffalo, image, timestamp, is_flagged"

// CreateReflection persists a new reflection with its scopes and reactions.
func (s *SQLiteStore) CreateReflection(ctx context.Context, r *models.Reflection) error {
	if r.ID == "" {
		r.ID = models.NewID()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO reflections ("+reflectionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.AuthorID, r.AuthorDisplayName, r.High, r.Low, r.Buffalo, nullString(r.Image), toMillis(r.Timestamp), r.IsFlaggedForFollowUp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert reflection: %w", err)
	}

	if err := insertScopes(ctx, tx, r); err != nil {
		return err
	}
	if err := insertReactions(ctx, tx, r); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReflection retrieves a reflection by ID, including scopes and reactions.
func (s *SQLiteStore) GetReflection(ctx context.Context, id string) (*models.Reflection, error) {
	rs, err := s.queryReflections(ctx,
		"SELECT "+reflectionColumns+" FROM reflections WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(rs) == 0 {
		return nil, apperr.NotFound("reflection not found: %s", id)
	}
	return rs[0], nil
}

// UpdateReflection saves the content columns and, when selected, replaces
// scopes, reactions and the flag. Unselected parts keep whatever concurrent
// toggles wrote.
func (s *SQLiteStore) UpdateReflection(ctx context.Context, r *models.Reflection, fields storage.ReflectionFields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE reflections SET high = ?, low = ?, buffalo = ?, image = ?, timestamp = ? WHERE id = ?",
		r.High, r.Low, r.Buffalo, nullString(r.Image), toMillis(r.Timestamp), r.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reflection: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("reflection not found: %s", r.ID)
	}

	if fields.Flag {
		if _, err := tx.ExecContext(ctx,
			"UPDATE reflections SET is_flagged = ? WHERE id = ?", r.IsFlaggedForFollowUp, r.ID,
		); err != nil {
			return fmt.Errorf("failed to update flag: %w", err)
		}
	}
	if fields.Scopes {
		if _, err := tx.ExecContext(ctx, "DELETE FROM reflection_scopes WHERE reflection_id = ?", r.ID); err != nil {
			return fmt.Errorf("failed to clear scopes: %w", err)
		}
		if err := insertScopes(ctx, tx, r); err != nil {
			return err
		}
	}
	if fields.Reactions {
		if _, err := tx.ExecContext(ctx, "DELETE FROM reflection_reactions WHERE reflection_id = ?", r.ID); err != nil {
			return fmt.Errorf("failed to clear reactions: %w", err)
		}
		if err := insertReactions(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ToggleReaction removes userID's reaction of kind if present, otherwise
// appends it after the existing reactors. Both happen in one transaction.
func (s *SQLiteStore) ToggleReaction(ctx context.Context, id, kind, userID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM reflections WHERE id = ?", id).Scan(&exists)
	if isNoRows(err) {
		return false, apperr.NotFound("reflection not found: %s", id)
	}
	if err != nil {
		return false, fmt.Errorf("failed to get reflection: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"DELETE FROM reflection_reactions WHERE reflection_id = ? AND kind = ? AND user_id = ?",
		id, kind, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove reaction: %w", err)
	}
	removed, _ := res.RowsAffected()

	if removed == 0 {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO reflection_reactions (reflection_id, kind, user_id, position)
			 SELECT ?, ?, ?, COALESCE(MAX(position) + 1, 0)
			 FROM reflection_reactions WHERE reflection_id = ? AND kind = ?`,
			id, kind, userID, id, kind,
		)
		if err != nil {
			return false, fmt.Errorf("failed to add reaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return removed == 0, nil
}

// ToggleFlag flips is_flagged in a single statement.
func (s *SQLiteStore) ToggleFlag(ctx context.Context, id string) (bool, error) {
	var flagged bool
	err := s.db.QueryRowContext(ctx,
		"UPDATE reflections SET is_flagged = NOT is_flagged WHERE id = ? RETURNING is_flagged", id,
	).Scan(&flagged)
	if isNoRows(err) {
		return false, apperr.NotFound("reflection not found: %s", id)
	}
	if err != nil {
		return false, fmt.Errorf("failed to toggle flag: %w", err)
	}
	return flagged, nil
}

// DeleteReflection removes a reflection. Missing IDs are ignored.
func (s *SQLiteStore) DeleteReflection(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM reflections WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete reflection: %w", err)
	}
	return nil
}

// ListReflectionsByAuthor returns the author's reflections, newest first.
func (s *SQLiteStore) ListReflectionsByAuthor(ctx context.Context, authorID string) ([]*models.Reflection, error) {
	return s.queryReflections(ctx,
		"SELECT "+reflectionColumns+" FROM reflections WHERE author_id = ? ORDER BY timestamp DESC, id",
		authorID)
}

// ListReflectionsSharedWith returns other authors' reflections scoped to any of scopeIDs.
func (s *SQLiteStore) ListReflectionsSharedWith(ctx context.Context, scopeIDs []string, excludeAuthorID string) ([]*models.Reflection, error) {
	if len(scopeIDs) == 0 {
		return nil, nil
	}
	args := append(stringArgs(scopeIDs), excludeAuthorID)
	return s.queryReflections(ctx,
		`SELECT `+reflectionColumns+` FROM reflections
		 WHERE id IN (SELECT reflection_id FROM reflection_scopes WHERE scope_id IN (`+placeholders(len(scopeIDs))+`))
		   AND author_id != ?
		 ORDER BY timestamp DESC, id`,
		args...)
}

// CountReflectionsSince counts the author's reflections at or after since.
func (s *SQLiteStore) CountReflectionsSince(ctx context.Context, authorID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reflections WHERE author_id = ? AND timestamp >= ?",
		authorID, toMillis(since),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count reflections: %w", err)
	}
	return count, nil
}

// queryReflections runs a base query and fills in scopes and reactions for every row.
func (s *SQLiteStore) queryReflections(ctx context.Context, query string, args ...any) ([]*models.Reflection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reflections: %w", err)
	}

	var out []*models.Reflection
	for rows.Next() {
		r := &models.Reflection{CuriosityReactions: map[string][]string{}}
		var image sql.NullString
		var ts int64
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.AuthorDisplayName, &r.High, &r.Low, &r.Buffalo, &image, &ts, &r.IsFlaggedForFollowUp); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan reflection: %w", err)
		}
		r.Image = image.String
		r.Timestamp = fromMillis(ts)
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reflections: %w", err)
	}

	for _, r := range out {
		if err := s.loadEngagement(ctx, r); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) loadEngagement(ctx context.Context, r *models.Reflection) error {
	scopeRows, err := s.db.QueryContext(ctx,
		"SELECT scope_id FROM reflection_scopes WHERE reflection_id = ? ORDER BY position", r.ID)
	if err != nil {
		return fmt.Errorf("failed to get reflection scopes: %w", err)
	}
	for scopeRows.Next() {
		var scope string
		if err := scopeRows.Scan(&scope); err != nil {
			scopeRows.Close()
			return fmt.Errorf("failed to scan scope: %w", err)
		}
		r.SharedWith = append(r.SharedWith, scope)
	}
	scopeRows.Close()
	if err := scopeRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate scopes: %w", err)
	}

	reactionRows, err := s.db.QueryContext(ctx,
		"SELECT kind, user_id FROM reflection_reactions WHERE reflection_id = ? ORDER BY kind, position", r.ID)
	if err != nil {
		return fmt.Errorf("failed to get reactions: %w", err)
	}
	defer reactionRows.Close()
	for reactionRows.Next() {
		var kind, userID string
		if err := reactionRows.Scan(&kind, &userID); err != nil {
			return fmt.Errorf("failed to scan reaction: %w", err)
		}
		r.CuriosityReactions[kind] = append(r.CuriosityReactions[kind], userID)
	}
	if err := reactionRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate reactions: %w", err)
	}
	return nil
}

func insertScopes(ctx context.Context, tx *sql.Tx, r *models.Reflection) error {
	for i, scope := range r.SharedWith {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO reflection_scopes (reflection_id, position, scope_id) VALUES (?, ?, ?)",
			r.ID, i, scope,
		); err != nil {
			return fmt.Errorf("failed to insert scope: %w", err)
		}
	}
	return nil
}

func insertReactions(ctx context.Context, tx *sql.Tx, r *models.Reflection) error {
	for kind, reactors := range r.CuriosityReactions {
		for i, userID := range reactors {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO reflection_reactions (reflection_id, kind, user_id, position) VALUES (?, ?, ?, ?)",
				r.ID, kind, userID, i,
			); err != nil {
				return fmt.Errorf("failed to insert reaction: %w", err)
			}
		}
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// isNoRows hides the sql.ErrNoRows comparison used across files.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
