package xlsx

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ngwafranklin/docintake/internal/core/domain"
)

// Exporter renders batch extraction results into an XLSX workbook, one row
// per document and one column per vocabulary field.
type Exporter struct {
	logger *slog.Logger
}

func NewExporter(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

const sheet = "Documents"

// Export returns the workbook bytes for a set of processed documents. Field
// values are joined with "; " inside their cell.
func (e *Exporter) Export(results []domain.DocumentResult) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	if index, err := f.GetSheetIndex(sheet); err == nil {
		f.SetActiveSheet(index)
	}
	_ = f.DeleteSheet("Sheet1")

	headers := append([]string{
		"File Name",
		"Document Name",
		"Document Type",
		"Valid",
		"Validation Messages",
		"Recommended Engine",
		"Error",
	}, domain.FieldVocabulary()...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx, result := range results {
		row := rowIdx + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, result.FileName)
		if result.Metadata != nil {
			write(2, result.Metadata.DocumentName)
			write(3, result.Metadata.DocumentType)
		}
		write(4, result.Validation.IsValid)
		write(5, strings.Join(result.Validation.Messages, "; "))
		write(6, result.RecommendedEngine)
		write(7, result.Error)

		if result.Metadata != nil {
			for i, name := range domain.FieldVocabulary() {
				if values := result.Metadata.Field(name); len(values) > 0 {
					write(8+i, strings.Join(values, "; "))
				}
			}
		}
	}

	_ = f.SetColWidth(sheet, "A", "C", 28)
	_ = f.SetColWidth(sheet, "D", "D", 8)
	_ = f.SetColWidth(sheet, "E", "E", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export.xlsx_ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
