// Package postgres implements the PostgreSQL persistence layer for Schedule Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GROUP REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GroupRepository implements schedule.GroupRepository for PostgreSQL.
type GroupRepository struct {
	conn *Connection
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(conn *Connection) *GroupRepository {
	return &GroupRepository{conn: conn}
}

// Save creates or updates a subgroup profile. The subgroup token is the
// natural key: saving an existing subgroup updates its search parameters.
func (r *GroupRepository) Save(ctx context.Context, profile *schedule.GroupProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	query := `
		INSERT INTO groups (id, subgroup, speciality, course_number, group_stream, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (subgroup) DO UPDATE SET
			speciality = EXCLUDED.speciality,
			course_number = EXCLUDED.course_number,
			group_stream = EXCLUDED.group_stream,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.conn.Exec(ctx, query,
		profile.ID,
		profile.Subgroup.String(),
		profile.Speciality,
		profile.CourseNumber,
		profile.GroupStream,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save group %s: %w", profile.Subgroup, err)
	}

	return nil
}

// GetBySubgroup returns a profile by its canonical subgroup token.
func (r *GroupRepository) GetBySubgroup(ctx context.Context, subgroup string) (*schedule.GroupProfile, error) {
	canonical, err := shared.NewSubgroup(subgroup)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, subgroup, speciality, course_number, group_stream, created_at, updated_at
		FROM groups
		WHERE subgroup = $1
	`

	var profile schedule.GroupProfile
	var token string
	err = r.conn.QueryRow(ctx, query, canonical.String()).Scan(
		&profile.ID,
		&token,
		&profile.Speciality,
		&profile.CourseNumber,
		&profile.GroupStream,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.WrapError("schedule", "GetBySubgroup",
				shared.ErrNotFound, fmt.Sprintf("group %s not found", canonical), err)
		}
		return nil, fmt.Errorf("failed to get group %s: %w", canonical, err)
	}

	profile.Subgroup = shared.Subgroup(token)
	return &profile, nil
}

// List returns all profiles ordered by subgroup. The background refresher
// iterates over this list.
func (r *GroupRepository) List(ctx context.Context) ([]*schedule.GroupProfile, error) {
	query := `
		SELECT id, subgroup, speciality, course_number, group_stream, created_at, updated_at
		FROM groups
		ORDER BY subgroup
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var profiles []*schedule.GroupProfile
	for rows.Next() {
		var profile schedule.GroupProfile
		var token string
		if err := rows.Scan(
			&profile.ID,
			&token,
			&profile.Speciality,
			&profile.CourseNumber,
			&profile.GroupStream,
			&profile.CreatedAt,
			&profile.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		profile.Subgroup = shared.Subgroup(token)
		profiles = append(profiles, &profile)
	}

	return profiles, rows.Err()
}
