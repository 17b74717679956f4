package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
)

// RingsFile is the YAML shape of the bell/ring registry. Example:
//
//	rings:
//	  lecture:
//	    - start: "09:00"
//	      end: "10:35"
//	  seminar:
//	    - start: "09:00"
//	      end: "10:30"
//	lesson_types:
//	  lecture: ["лекцион", "lecture"]
//	  seminar: ["семинар", "seminar"]
type RingsFile struct {
	Rings       map[string][]RingEntry `yaml:"rings"`
	LessonTypes map[string][]string    `yaml:"lesson_types"`
}

// RingEntry is one slot in a category's bell grid.
type RingEntry struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// LoadRings reads the ring registry and lesson-type vocabulary from a YAML
// file. An empty path returns the built-in SZGMU defaults.
func LoadRings(path string) (*schedule.RingTable, *schedule.TypeClassifier, error) {
	if path == "" {
		return schedule.DefaultRingTable(), schedule.DefaultTypeClassifier(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read rings config %s: %w", path, err)
	}

	var file RingsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse rings config %s: %w", path, err)
	}

	table, err := file.ringTable()
	if err != nil {
		return nil, nil, fmt.Errorf("rings config %s: %w", path, err)
	}

	return table, file.classifier(), nil
}

func (f *RingsFile) ringTable() (*schedule.RingTable, error) {
	if len(f.Rings) == 0 {
		return schedule.DefaultRingTable(), nil
	}

	rings := make(map[schedule.Category][]schedule.TimeSlot, len(f.Rings))
	for name, entries := range f.Rings {
		category, err := parseCategory(name)
		if err != nil {
			return nil, err
		}
		slots := make([]schedule.TimeSlot, 0, len(entries))
		for i, entry := range entries {
			start, err := shared.ParseClock(entry.Start)
			if err != nil {
				return nil, fmt.Errorf("category %q slot %d: start %q: %w", name, i, entry.Start, err)
			}
			end, err := shared.ParseClock(entry.End)
			if err != nil {
				return nil, fmt.Errorf("category %q slot %d: end %q: %w", name, i, entry.End, err)
			}
			if !start.Before(end) {
				return nil, fmt.Errorf("category %q slot %d: start %s is not before end %s", name, i, start, end)
			}
			slots = append(slots, schedule.TimeSlot{Start: start, End: end})
		}
		rings[category] = slots
	}
	return schedule.NewRingTable(rings), nil
}

func (f *RingsFile) classifier() *schedule.TypeClassifier {
	if len(f.LessonTypes) == 0 {
		return schedule.DefaultTypeClassifier()
	}

	rules := make(map[schedule.LessonType][]string, len(f.LessonTypes))
	for name, substrings := range f.LessonTypes {
		rules[schedule.LessonType(name)] = substrings
	}
	return schedule.NewTypeClassifier(rules)
}

func parseCategory(name string) (schedule.Category, error) {
	switch schedule.Category(name) {
	case schedule.CategoryLecture, schedule.CategorySeminar, schedule.CategoryOther:
		return schedule.Category(name), nil
	default:
		return "", fmt.Errorf("unknown ring category %q", name)
	}
}
