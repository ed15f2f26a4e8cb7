package sqlite

import (
	"context"
	"fmt"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
	"github.com/mmynk/highlowbuffalo/internal/models"
)

// CreateHerd inserts the herd and its initial members in one transaction.
func (s *SQLiteStore) CreateHerd(ctx context.Context, herd *models.Herd) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO herds (id, name, description, owner_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		herd.ID, herd.Name, herd.Description, herd.OwnerID, toMillis(herd.CreatedAt), toMillis(herd.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert herd: %w", err)
	}

	for _, m := range herd.Members {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO herd_members (herd_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
			herd.ID, m.UserID, string(m.Role), toMillis(m.JoinedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert herd member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetHerd retrieves a herd with its members, ordered by join time.
func (s *SQLiteStore) GetHerd(ctx context.Context, id string) (*models.Herd, error) {
	herd := &models.Herd{}
	var created, updated int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, owner_id, created_at, updated_at FROM herds WHERE id = ?", id,
	).Scan(&herd.ID, &herd.Name, &herd.Description, &herd.OwnerID, &created, &updated)
	if isNoRows(err) {
		return nil, apperr.NotFound("herd not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get herd: %w", err)
	}
	herd.CreatedAt = fromMillis(created)
	herd.UpdatedAt = fromMillis(updated)

	members, err := s.listHerdMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	herd.Members = members
	return herd, nil
}

// UpdateHerd saves the herd's name, description and updated_at.
func (s *SQLiteStore) UpdateHerd(ctx context.Context, herd *models.Herd) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE herds SET name = ?, description = ?, updated_at = ? WHERE id = ?",
		herd.Name, herd.Description, toMillis(herd.UpdatedAt), herd.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update herd: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("herd not found: %s", herd.ID)
	}
	return nil
}

// DeleteHerd removes the herd; memberships cascade.
func (s *SQLiteStore) DeleteHerd(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM herds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete herd: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("herd not found: %s", id)
	}
	return nil
}

// ListHerdsForMember returns every herd userID belongs to, oldest first.
func (s *SQLiteStore) ListHerdsForMember(ctx context.Context, userID string) ([]*models.Herd, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT h.id FROM herds h JOIN herd_members m ON m.herd_id = h.id
		 WHERE m.user_id = ?
		 ORDER BY h.created_at, h.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list herds: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan herd id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating herds: %w", err)
	}

	herds := make([]*models.Herd, 0, len(ids))
	for _, id := range ids {
		herd, err := s.GetHerd(ctx, id)
		if err != nil {
			return nil, err
		}
		herds = append(herds, herd)
	}
	return herds, nil
}

// AddHerdMember adds a member. Returns Conflict if they already belong.
func (s *SQLiteStore) AddHerdMember(ctx context.Context, herdID string, member models.HerdMember) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO herd_members (herd_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		herdID, member.UserID, string(member.Role), toMillis(member.JoinedAt),
	)
	if isUniqueViolation(err) {
		return apperr.Conflict("user is already a member of this herd")
	}
	if err != nil {
		return fmt.Errorf("failed to add herd member: %w", err)
	}
	return nil
}

// RemoveHerdMember removes a member. Returns NotFound if they do not belong.
func (s *SQLiteStore) RemoveHerdMember(ctx context.Context, herdID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM herd_members WHERE herd_id = ? AND user_id = ?", herdID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove herd member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("member not found: %s", userID)
	}
	return nil
}

func (s *SQLiteStore) listHerdMembers(ctx context.Context, herdID string) ([]models.HerdMember, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.user_id, u.email, u.display_name, m.role, m.joined_at
		 FROM herd_members m JOIN users u ON u.id = m.user_id
		 WHERE m.herd_id = ?
		 ORDER BY m.joined_at, CASE m.role WHEN 'owner' THEN 0 ELSE 1 END, m.user_id`,
		herdID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get herd members: %w", err)
	}
	defer rows.Close()

	members := []models.HerdMember{}
	for rows.Next() {
		var m models.HerdMember
		var role string
		var joined int64
		if err := rows.Scan(&m.UserID, &m.Email, &m.DisplayName, &role, &joined); err != nil {
			return nil, fmt.Errorf("failed to scan herd member: %w", err)
		}
		m.Role = models.Role(role)
		m.JoinedAt = fromMillis(joined)
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating herd members: %w", err)
	}
	return members, nil
}
