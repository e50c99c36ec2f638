// Package export renders the working record as a spreadsheet download.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/mrsl-intake/internal/domain/classcode"
	"github.com/garyjia/mrsl-intake/internal/domain/entity"
	"github.com/garyjia/mrsl-intake/internal/review"
)

// SheetName is the name of the single worksheet
const SheetName = "Extraction"

// ContentType is the media type of the generated workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Writer produces one-sheet workbooks with field/value rows
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a new spreadsheet writer
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// WriteRecord writes the record, its source filename and the export time to w.
// Null fields are left blank.
func (wr *Writer) WriteRecord(w io.Writer, record entity.ExtractionRecord, filename string, at time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	wr.setCell(f, "A1", "Field")
	wr.setCell(f, "B1", "Value")
	wr.setCell(f, "C1", "Key")

	row := 2
	for _, field := range entity.Fields {
		value, _ := record.Get(field)
		if field == entity.FieldClassCode && value != "" {
			value = classcode.Describe(value)
		}
		wr.setCell(f, cell(1, row), review.Label(field))
		wr.setCell(f, cell(2, row), value)
		wr.setCell(f, cell(3, row), field.String())
		row++
	}

	row++
	wr.setCell(f, cell(1, row), "Source File")
	wr.setCell(f, cell(2, row), filename)
	wr.setCell(f, cell(3, row), "source_filename")
	row++
	wr.setCell(f, cell(1, row), "Exported At")
	wr.setCell(f, cell(2, row), at.UTC().Format(entity.ExtractedAtLayout))

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(SheetName, "A1", "C1", style)
	}
	_ = f.SetColWidth(SheetName, "A", "A", 22)
	_ = f.SetColWidth(SheetName, "B", "B", 48)
	_ = f.SetColWidth(SheetName, "C", "C", 22)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	wr.logger.Debug("Record exported", zap.String("source_filename", filename))
	return nil
}

func (wr *Writer) setCell(f *excelize.File, axis string, value string) {
	if err := f.SetCellValue(SheetName, axis, value); err != nil {
		wr.logger.Warn("Failed to set cell value",
			zap.String("cell", axis),
			zap.Error(err))
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
