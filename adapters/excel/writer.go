package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"

	"godoe/domain/design"
	"godoe/internal"

	"github.com/xuri/excelize/v2"
)

// DataWriter writes run sheets and factor state tables as xlsx or csv.
type DataWriter struct {
	filePath string
	fileType string
	logger   *internal.Logger
}

// NewDataWriter picks the format from the file extension.
func NewDataWriter(filePath string, logger *internal.Logger) *DataWriter {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataWriter{filePath: filePath, fileType: fileTypeOf(filePath), logger: logger}
}

// WriteSheet writes a design sheet, appending empty columns (typically the
// responses) for the operator to fill in.
func (w *DataWriter) WriteSheet(sheet *design.Sheet, blankColumns ...string) error {
	headers := append(sheet.Columns(), blankColumns...)
	rows := make([][]interface{}, 0, sheet.Rows()+1)
	rows = append(rows, toCells(headers))
	for _, cells := range sheet.Cells() {
		row := make([]interface{}, len(headers))
		for c, v := range cells {
			if f, ok := v.(float64); ok && math.IsNaN(f) {
				v = ""
			}
			row[c] = v
		}
		for c := len(cells); c < len(headers); c++ {
			row[c] = ""
		}
		rows = append(rows, row)
	}
	if err := w.writeRows(rows); err != nil {
		return err
	}
	w.logger.Debug("[DataWriter] wrote %d runs to %s", sheet.Rows(), w.filePath)
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func (w *DataWriter) writeRows(rows [][]interface{}) error {
	if w.fileType == "csv" {
		return w.writeCSV(rows)
	}
	return w.writeExcel(rows)
}

func (w *DataWriter) writeExcel(rows [][]interface{}) error {
	f := excelize.NewFile()
	defer f.Close()

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(DefaultSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}
	if err := f.SaveAs(w.filePath); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}
	return nil
}

func (w *DataWriter) writeCSV(rows [][]interface{}) error {
	file, err := os.Create(w.filePath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV file: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(v)
}
