package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/szgmu-hub/schedule-hub/internal/domain/schedule"
	"github.com/szgmu-hub/schedule-hub/internal/domain/shared"
	"github.com/szgmu-hub/schedule-hub/pkg/timeutil"
)

const (
	sheetName = "Schedule"

	fillLecture = "FFF2CC"
	fillSeminar = "D9EAD3"
	fillHeader  = "D9EAD3"

	fontFamily = "Roboto"

	// excelize border style indices: 1 = thin, 5 = thick.
	borderNone  = 0
	borderThin  = 1
	borderThick = 5

	firstDataRow = 3
)

// columnWidths are tuned for an A4 printout: wide subject column, narrow
// ordinal columns.
var columnWidths = [...]float64{8, 12, 4, 4, 16, 4, 20}

var headerRow = [...]string{"Week", "Date", "Day", "№", "Time", "Type", "Subject"}

// ExcelExporter renders a unified schedule into a styled XLSX workbook.
// Lessons of one day share merged date cells, weeks are separated by a thick
// border, and lecture rows are tinted differently from seminar rows.
type ExcelExporter struct{}

// NewExcelExporter creates an Excel exporter.
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Export builds the workbook for the given schedule. The caller owns the
// returned file and is responsible for closing it.
func (e *ExcelExporter) Export(s *schedule.UnifiedSchedule) (*excelize.File, error) {
	if s == nil {
		return nil, shared.NewDomainError("export", "Export", shared.ErrInvalidInput, "nil schedule")
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	styles := newStyleCache(f)

	if err := e.writeHeader(f, styles, s.Subgroup); err != nil {
		return nil, err
	}
	if err := e.writeLessons(f, styles, s.Lessons); err != nil {
		return nil, err
	}

	for i, width := range columnWidths {
		col := string(rune('A' + i))
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	return f, nil
}

func (e *ExcelExporter) writeHeader(f *excelize.File, styles *styleCache, subgroup shared.Subgroup) error {
	title := fmt.Sprintf("Schedule for %s. Generated by Schedule Hub", subgroup)
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	if err := f.MergeCell(sheetName, "A1", "G1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	titleStyle, err := styles.id(cellStyle{size: 14, center: true})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "G1", titleStyle); err != nil {
		return fmt.Errorf("style title: %w", err)
	}

	headerStyle, err := styles.id(cellStyle{size: 14, fill: fillHeader, center: true, boxed: true, bottom: borderThick})
	if err != nil {
		return err
	}
	for i, label := range headerRow {
		cell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, label); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("style header: %w", err)
		}
	}
	return nil
}

func (e *ExcelExporter) writeLessons(f *excelize.File, styles *styleCache, lessons []schedule.Lesson) error {
	weekStart, dateStart := firstDataRow, firstDataRow

	for i, lesson := range lessons {
		row := firstDataRow + i

		lastOfWeek := i == len(lessons)-1 || lessons[i+1].Week != lesson.Week
		lastOfDate := lastOfWeek || !timeutil.SameDate(lessons[i+1].Date, lesson.Date)
		bottom := borderNone
		switch {
		case lastOfWeek:
			bottom = borderThick
		case lastOfDate:
			bottom = borderThin
		}

		if err := e.writeLessonRow(f, styles, row, lesson, bottom); err != nil {
			return err
		}

		// Lessons of one day share the date and day cells; lessons of one
		// week share the week cell.
		if lastOfDate {
			if dateStart < row {
				if err := f.MergeCell(sheetName, fmt.Sprintf("B%d", dateStart), fmt.Sprintf("B%d", row)); err != nil {
					return fmt.Errorf("merge date cells: %w", err)
				}
				if err := f.MergeCell(sheetName, fmt.Sprintf("C%d", dateStart), fmt.Sprintf("C%d", row)); err != nil {
					return fmt.Errorf("merge day cells: %w", err)
				}
			}
			dateStart = row + 1
		}
		if lastOfWeek {
			if weekStart < row {
				if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", weekStart), fmt.Sprintf("A%d", row)); err != nil {
					return fmt.Errorf("merge week cells: %w", err)
				}
			}
			weekStart = row + 1
		}
	}
	return nil
}

func (e *ExcelExporter) writeLessonRow(f *excelize.File, styles *styleCache, row int, lesson schedule.Lesson, bottom int) error {
	fill := fillSeminar
	if lesson.Type == schedule.TypeLecture {
		fill = fillLecture
	}

	timeRange := lesson.Slot.Start.String() + "-" + lesson.Slot.End.String()
	values := []any{
		lesson.Week.Int(),
		lesson.Date.Format("02.01.2006"),
		lesson.Day.FullRU(),
		lesson.Slot.Label(),
		timeRange,
		lesson.Type.ShortRU(),
		lesson.Subject,
	}
	// Columns A-C carry no fill; the subject column keeps default alignment
	// so long names stay left-aligned.
	rowStyles := []cellStyle{
		{size: 28, bold: true, center: true, bottom: bottom},
		{size: 12, center: true, bottom: bottom},
		{size: 12, bold: true, center: true, bottom: bottom},
		{size: 12, center: true, fill: fill, bottom: bottom},
		{size: 12, center: true, fill: fill, bottom: bottom},
		{size: 12, center: true, fill: fill, bottom: bottom},
		{size: 12, fill: fill, bottom: bottom},
	}

	for col := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, values[col]); err != nil {
			return fmt.Errorf("write lesson cell: %w", err)
		}
		styleID, err := styles.id(rowStyles[col])
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, styleID); err != nil {
			return fmt.Errorf("style lesson cell: %w", err)
		}
	}
	return nil
}

// cellStyle is a flat description of a cell's appearance, used as a cache key
// so each distinct combination is registered in the workbook only once.
type cellStyle struct {
	size   float64
	bold   bool
	fill   string
	center bool
	boxed  bool // thin border on top/left/right
	bottom int  // excelize border style index, 0 = none
}

type styleCache struct {
	f   *excelize.File
	ids map[cellStyle]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, ids: make(map[cellStyle]int)}
}

func (c *styleCache) id(cs cellStyle) (int, error) {
	if id, ok := c.ids[cs]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Font: &excelize.Font{Family: fontFamily, Size: cs.size, Bold: cs.bold},
	}
	if cs.center {
		style.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	}
	if cs.fill != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{cs.fill}}
	}
	if cs.boxed {
		style.Border = append(style.Border,
			excelize.Border{Type: "top", Color: "000000", Style: borderThin},
			excelize.Border{Type: "left", Color: "000000", Style: borderThin},
			excelize.Border{Type: "right", Color: "000000", Style: borderThin},
		)
	}
	if cs.bottom != borderNone {
		style.Border = append(style.Border, excelize.Border{Type: "bottom", Color: "000000", Style: cs.bottom})
	}

	id, err := c.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("register cell style: %w", err)
	}
	c.ids[cs] = id
	return id, nil
}
