package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

func writeRingsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRings_EmptyPathUsesDefaults(t *testing.T) {
	table, classifier, err := LoadRings("")
	require.NoError(t, err)
	require.NotNil(t, table)
	require.NotNil(t, classifier)

	assert.Len(t, table.Slots(schedule.CategoryLecture), 5)
	assert.Len(t, table.Slots(schedule.CategorySeminar), 4)
	assert.Equal(t, schedule.TypeLecture, classifier.Classify("лекционного"))
}

func TestLoadRings_FromYAML(t *testing.T) {
	path := writeRingsFile(t, `
rings:
  lecture:
    - start: "10.55"
      end: "12.30"
    - start: "09:00"
      end: "10:35"
  seminar:
    - start: "09:00"
      end: "10:30"
lesson_types:
  lecture: ["vorlesung"]
  seminar: ["übung"]
`)

	table, classifier, err := LoadRings(path)
	require.NoError(t, err)

	// Slots get sorted by start time and renumbered.
	lectures := table.Slots(schedule.CategoryLecture)
	require.Len(t, lectures, 2)
	assert.Equal(t, 0, lectures[0].Sequence)
	assert.Equal(t, shared.Clock(9, 0), lectures[0].Start)
	assert.Equal(t, shared.Clock(10, 55), lectures[1].Start)

	assert.Equal(t, schedule.TypeLecture, classifier.Classify("Vorlesung"))
	assert.Equal(t, schedule.TypeSeminar, classifier.Classify("Übung"))
	assert.Equal(t, schedule.TypeOther, classifier.Classify("лекционного"))
}

func TestLoadRings_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadRings(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("unknown category", func(t *testing.T) {
		path := writeRingsFile(t, `
rings:
  colloquium:
    - start: "09:00"
      end: "10:30"
`)
		_, _, err := LoadRings(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "colloquium")
	})

	t.Run("malformed clock", func(t *testing.T) {
		path := writeRingsFile(t, `
rings:
  lecture:
    - start: "nine"
      end: "10:30"
`)
		_, _, err := LoadRings(path)
		assert.Error(t, err)
	})

	t.Run("inverted slot", func(t *testing.T) {
		path := writeRingsFile(t, `
rings:
  lecture:
    - start: "12:00"
      end: "10:30"
`)
		_, _, err := LoadRings(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not before")
	})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "schedule-hub", cfg.App.Name)
	assert.Equal(t, "https://frsview.szgmu.ru", cfg.SZGMU.BaseURL)
	assert.True(t, cfg.IsDevelopment())
	assert.NotEmpty(t, cfg.Worker.RefreshCron)
}

func TestLoad_ProductionRequiresDatabase(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
