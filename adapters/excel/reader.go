package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"godoe/domain/core"
	"godoe/domain/design"
	"godoe/internal"

	"github.com/xuri/excelize/v2"
)

// DefaultSheet is the worksheet used for design and response tables.
const DefaultSheet = "Sheet1"

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataReader{filePath: filePath, fileType: fileTypeOf(filePath), logger: logger}
}

func fileTypeOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return "csv"
	}
	return "xlsx"
}

// ReadTable reads the raw header and data rows.
func (r *DataReader) ReadTable() (*RawTable, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s file %s", core.ErrNotFound, strings.ToUpper(r.fileType), r.filePath)
	}

	start := time.Now()
	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows(DefaultSheet)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("%w: %s has no header row", core.ErrShapeMismatch, r.filePath)
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", r.filePath,
		float64(time.Since(start).Nanoseconds())/1e6, len(rows))
	return processRows(rows), nil
}

// readExcelRows reads every row of one worksheet
func (r *DataReader) readExcelRows(sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	return rows, nil
}

// readCSVRows reads every CSV record
func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows trims cells and pads short rows; trailing blank rows are dropped
func processRows(rows [][]string) *RawTable {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}

	t := &RawTable{Headers: headers}
	for _, row := range rows[1:] {
		cells := make([]string, len(headers))
		blank := true
		for j := range cells {
			if j < len(row) {
				cells[j] = strings.TrimSpace(row[j])
			}
			if cells[j] != "" {
				blank = false
			}
		}
		if !blank {
			t.Rows = append(t.Rows, cells)
		}
	}
	return t
}

// ReadSheet reads a file into a design sheet. A column is numeric when every
// non-empty cell parses as a number, unless it is listed in labelColumns;
// empty numeric cells become NaN, marking runs that produced no measurement.
func (r *DataReader) ReadSheet(labelColumns ...string) (*design.Sheet, error) {
	table, err := r.ReadTable()
	if err != nil {
		return nil, err
	}
	return ToSheet(table, labelColumns...)
}

// ToSheet converts a raw table.
func ToSheet(t *RawTable, labelColumns ...string) (*design.Sheet, error) {
	sheet := design.NewSheet(len(t.Rows))
	for c, name := range t.Headers {
		if name == "" {
			return nil, fmt.Errorf("%w: column %d has no header", core.ErrShapeMismatch, c+1)
		}
		if sheet.HasColumn(name) {
			return nil, fmt.Errorf("%w: duplicate column %q", core.ErrShapeMismatch, name)
		}
		labels := make([]string, len(t.Rows))
		for r, row := range t.Rows {
			labels[r] = row[c]
		}
		if values, ok := parseNumbers(labels); ok && !slices.Contains(labelColumns, name) {
			if err := sheet.SetNumeric(name, values); err != nil {
				return nil, err
			}
			continue
		}
		if err := sheet.SetLabels(name, labels); err != nil {
			return nil, err
		}
	}
	return sheet, nil
}

func parseNumbers(cells []string) ([]float64, bool) {
	values := make([]float64, len(cells))
	for i, cell := range cells {
		if cell == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

// Split separates a filled-in run sheet into its factor and response parts.
func Split(sheet *design.Sheet, factors, responses []string) (*design.Sheet, *design.Sheet, error) {
	designPart, err := sheet.Select(factors...)
	if err != nil {
		return nil, nil, fmt.Errorf("design columns: %w", err)
	}
	for _, name := range responses {
		if sheet.HasColumn(name) && !sheet.IsNumeric(name) {
			return nil, nil, fmt.Errorf("%w: response %q is not numeric", core.ErrShapeMismatch, name)
		}
	}
	responsePart, err := sheet.Select(responses...)
	if err != nil {
		return nil, nil, fmt.Errorf("response columns: %w", err)
	}
	return designPart, responsePart, nil
}
