// Package postgres implements the PostgreSQL persistence layer for Schedule Hub.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SnapshotRepository implements schedule.SnapshotRepository for PostgreSQL.
// Snapshots are immutable: a refresh inserts a new snapshot with its lessons
// in one transaction.
type SnapshotRepository struct {
	conn *Connection
}

// NewSnapshotRepository creates a new SnapshotRepository.
func NewSnapshotRepository(conn *Connection) *SnapshotRepository {
	return &SnapshotRepository{conn: conn}
}

// Save stores a snapshot together with its lessons.
func (r *SnapshotRepository) Save(ctx context.Context, snapshot *schedule.ScheduleSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = time.Now().UTC()
	}

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		insertSnapshot := `
			INSERT INTO schedule_snapshots (id, subgroup, season, academic_year, taken_at, skipped_count)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.Exec(ctx, insertSnapshot,
			snapshot.ID,
			snapshot.Subgroup.String(),
			string(snapshot.Season),
			string(snapshot.AcademicYear),
			snapshot.TakenAt,
			snapshot.SkippedCount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		insertLesson := `
			INSERT INTO snapshot_lessons (
				snapshot_id, position, subject, lesson_type, teacher, room, subgroup,
				week_number, day_of_week, lesson_date,
				slot_category, slot_sequence, slot_start, slot_end, source_id
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`
		for i, lesson := range snapshot.Lessons {
			_, err := tx.Exec(ctx, insertLesson,
				snapshot.ID,
				i,
				lesson.Subject,
				string(lesson.Type),
				lesson.Teacher,
				lesson.Room,
				lesson.Subgroup.String(),
				int(lesson.Week),
				int(lesson.Day),
				lesson.Date,
				string(lesson.Slot.Category),
				lesson.Slot.Sequence,
				lesson.Slot.Start.String(),
				lesson.Slot.End.String(),
				lesson.SourceID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert snapshot lesson %d: %w", i, err)
			}
		}

		return nil
	})
}

// Latest returns the most recent snapshot of a subgroup with its lessons.
func (r *SnapshotRepository) Latest(ctx context.Context, subgroup string) (*schedule.ScheduleSnapshot, error) {
	canonical, err := shared.NewSubgroup(subgroup)
	if err != nil {
		return nil, err
	}

	headQuery := `
		SELECT id, subgroup, season, academic_year, taken_at, skipped_count
		FROM schedule_snapshots
		WHERE subgroup = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`

	var snapshot schedule.ScheduleSnapshot
	var token, season, year string
	err = r.conn.QueryRow(ctx, headQuery, canonical.String()).Scan(
		&snapshot.ID,
		&token,
		&season,
		&year,
		&snapshot.TakenAt,
		&snapshot.SkippedCount,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.WrapError("schedule", "Latest",
				shared.ErrNotFound, fmt.Sprintf("no snapshots for %s", canonical), err)
		}
		return nil, fmt.Errorf("failed to get latest snapshot for %s: %w", canonical, err)
	}

	snapshot.Subgroup = shared.Subgroup(token)
	snapshot.Season = schedule.Season(season)
	snapshot.AcademicYear = shared.AcademicYear(year)

	lessons, err := r.loadLessons(ctx, snapshot.ID)
	if err != nil {
		return nil, err
	}
	snapshot.Lessons = lessons

	return &snapshot, nil
}

// loadLessons loads the lessons of a snapshot in canonical order.
func (r *SnapshotRepository) loadLessons(ctx context.Context, snapshotID string) ([]schedule.Lesson, error) {
	query := `
		SELECT subject, lesson_type, teacher, room, subgroup,
			   week_number, day_of_week, lesson_date,
			   slot_category, slot_sequence, slot_start, slot_end, source_id
		FROM snapshot_lessons
		WHERE snapshot_id = $1
		ORDER BY position
	`

	rows, err := r.conn.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot lessons: %w", err)
	}
	defer rows.Close()

	var lessons []schedule.Lesson
	for rows.Next() {
		var (
			lesson               schedule.Lesson
			lessonType, subgroup string
			week, day, sequence  int
			category             string
			startStr, endStr     string
		)
		if err := rows.Scan(
			&lesson.Subject,
			&lessonType,
			&lesson.Teacher,
			&lesson.Room,
			&subgroup,
			&week,
			&day,
			&lesson.Date,
			&category,
			&sequence,
			&startStr,
			&endStr,
			&lesson.SourceID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot lesson: %w", err)
		}

		start, err := shared.ParseClock(startStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt slot start %q: %w", startStr, err)
		}
		end, err := shared.ParseClock(endStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt slot end %q: %w", endStr, err)
		}

		lesson.Type = schedule.LessonType(lessonType)
		lesson.Subgroup = shared.Subgroup(subgroup)
		lesson.Week = shared.WeekNumber(week)
		lesson.Day = shared.Weekday(day)
		lesson.Slot = schedule.TimeSlot{
			Category: schedule.Category(category),
			Sequence: sequence,
			Start:    start,
			End:      end,
		}
		lessons = append(lessons, lesson)
	}

	return lessons, rows.Err()
}
