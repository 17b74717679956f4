// Package postgres implements the PostgreSQL persistence layer for Schedule Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE GROUPS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create groups table
-- Version: 001

-- Subgroup profiles: the search parameters used to find a subgroup's
-- schedule feeds in the university API.
CREATE TABLE IF NOT EXISTS groups (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    subgroup VARCHAR(30) NOT NULL UNIQUE,
    speciality VARCHAR(120) NOT NULL DEFAULT '',
    course_number VARCHAR(10) NOT NULL DEFAULT '',
    group_stream VARCHAR(10) NOT NULL DEFAULT '',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT subgroup_not_blank CHECK (length(trim(subgroup)) > 0)
);

CREATE INDEX IF NOT EXISTS idx_groups_subgroup ON groups(subgroup);
`

const migration001Down = `
DROP TABLE IF EXISTS groups;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE SNAPSHOTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create schedule snapshots
-- Version: 002

-- Immutable snapshots of unified schedules. A refresh inserts a new
-- snapshot; old ones are kept for history and as a fallback when the
-- upstream feed is unavailable.
CREATE TABLE IF NOT EXISTS schedule_snapshots (
    id UUID PRIMARY KEY,
    subgroup VARCHAR(30) NOT NULL,
    season VARCHAR(10) NOT NULL,
    academic_year VARCHAR(9) NOT NULL,
    taken_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    skipped_count INTEGER NOT NULL DEFAULT 0,

    CONSTRAINT valid_season CHECK (season IN ('autumn', 'spring'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_subgroup_taken
    ON schedule_snapshots(subgroup, taken_at DESC);

-- Lessons of a snapshot, one row per lesson in canonical order.
CREATE TABLE IF NOT EXISTS snapshot_lessons (
    id SERIAL PRIMARY KEY,
    snapshot_id UUID NOT NULL REFERENCES schedule_snapshots(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    subject VARCHAR(200) NOT NULL,
    lesson_type VARCHAR(20) NOT NULL,
    teacher VARCHAR(120) NOT NULL DEFAULT '',
    room VARCHAR(120) NOT NULL DEFAULT '',
    subgroup VARCHAR(30) NOT NULL,
    week_number INTEGER NOT NULL,
    day_of_week INTEGER NOT NULL,
    lesson_date DATE NOT NULL,
    slot_category VARCHAR(10) NOT NULL,
    slot_sequence INTEGER NOT NULL,
    slot_start VARCHAR(5) NOT NULL,
    slot_end VARCHAR(5) NOT NULL,
    source_id VARCHAR(30) NOT NULL,

    UNIQUE(snapshot_id, position),

    CONSTRAINT valid_week CHECK (week_number > 0),
    CONSTRAINT valid_day CHECK (day_of_week BETWEEN 1 AND 7)
);

CREATE INDEX IF NOT EXISTS idx_snapshot_lessons_snapshot
    ON snapshot_lessons(snapshot_id, position);
`

const migration002Down = `
DROP TABLE IF EXISTS snapshot_lessons;
DROP TABLE IF EXISTS schedule_snapshots;
`
