package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
)

// FileWriter materializes export artifacts on disk, one file pair per
// subgroup: <dir>/<subgroup>.ics and <dir>/<subgroup>.xlsx.
type FileWriter struct {
	dir    string
	ical   *ICalExporter
	excel  *ExcelExporter
	logger *slog.Logger
}

// NewFileWriter creates a writer rooted at dir. The directory is created on
// first write.
func NewFileWriter(dir string, logger *slog.Logger) *FileWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileWriter{
		dir:    dir,
		ical:   NewICalExporter(),
		excel:  NewExcelExporter(),
		logger: logger.With(slog.String("component", "export")),
	}
}

// WriteAll writes both the calendar and the workbook for the schedule and
// returns the written paths. An empty schedule produces no files.
func (w *FileWriter) WriteAll(s *schedule.UnifiedSchedule) ([]string, error) {
	if s == nil || s.IsEmpty() {
		w.logger.Warn("nothing to export, schedule is empty")
		return nil, nil
	}

	icsPath, err := w.WriteICal(s)
	if err != nil {
		return nil, err
	}
	xlsxPath, err := w.WriteExcel(s)
	if err != nil {
		return nil, err
	}
	return []string{icsPath, xlsxPath}, nil
}

// WriteICal writes the iCalendar file and returns its path.
func (w *FileWriter) WriteICal(s *schedule.UnifiedSchedule) (string, error) {
	body, err := w.ical.Export(s)
	if err != nil {
		return "", err
	}

	path, err := w.artifactPath(s, "ics")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write calendar file: %w", err)
	}

	w.logger.Info("calendar exported",
		slog.String("path", path),
		slog.Int("lessons", len(s.Lessons)))
	return path, nil
}

// WriteExcel writes the XLSX workbook and returns its path.
func (w *FileWriter) WriteExcel(s *schedule.UnifiedSchedule) (string, error) {
	f, err := w.excel.Export(s)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path, err := w.artifactPath(s, "xlsx")
	if err != nil {
		return "", err
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("write workbook file: %w", err)
	}

	w.logger.Info("workbook exported",
		slog.String("path", path),
		slog.Int("lessons", len(s.Lessons)))
	return path, nil
}

func (w *FileWriter) artifactPath(s *schedule.UnifiedSchedule, ext string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return filepath.Join(w.dir, sanitizeName(s.Subgroup.String())+"."+ext), nil
}

// sanitizeName strips path separators from a subgroup name so it is safe as
// a file name component.
func sanitizeName(name string) string {
	cleaned := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "schedule"
	}
	return cleaned
}
