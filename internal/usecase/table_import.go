package usecase

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"

	"github.com/eslsoft/wordladder/internal/entity"
)

// TableRow is one word line from a spreadsheet or CSV file:
// word, translations separated by ';', optional disposition.
type TableRow struct {
	Line         int
	Word         string
	Translations []string
	Disposition  string
}

// TableImportReport summarizes an import run.
type TableImportReport struct {
	Rows   int      `json:"rows" yaml:"rows"`
	Added  int      `json:"added" yaml:"added"`
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ReadTableFile reads rows from an .xlsx file (first sheet unless sheet is
// set) or from CSV for any other extension.
func ReadTableFile(path, sheet string) ([]TableRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSX(path, sheet)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func readXLSX(path, sheet string) ([]TableRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return tableRows(rows), nil
}

// ReadCSV reads rows from CSV. Rows may have a varying number of fields.
func ReadCSV(r io.Reader) ([]TableRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var raw [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		raw = append(raw, row)
	}
	return tableRows(raw), nil
}

func tableRows(raw [][]string) []TableRow {
	var out []TableRow
	for i, cells := range raw {
		cells = lo.Map(cells, func(c string, _ int) string { return strings.TrimSpace(c) })
		if len(cells) == 0 || cells[0] == "" {
			continue
		}
		if i == 0 && strings.EqualFold(cells[0], "word") {
			continue
		}
		row := TableRow{Line: i + 1, Word: cells[0]}
		if len(cells) > 1 {
			row.Translations = lo.Filter(lo.Map(strings.Split(cells[1], ";"), func(t string, _ int) string {
				return strings.TrimSpace(t)
			}), func(t string, _ int) bool { return t != "" })
		}
		if len(cells) > 2 {
			row.Disposition = strings.ToLower(cells[2])
		}
		out = append(out, row)
	}
	return out
}

// ToDisposition converts the row into a word disposition. An empty disposition
// means "learn".
func (r TableRow) ToDisposition() (entity.Disposition, error) {
	switch r.Disposition {
	case "", "learn", "to_learn":
		return entity.DispositionLearn(r.Translations, nil), nil
	case "learned":
		return entity.DispositionLearn(nil, r.Translations), nil
	case "known":
		return entity.DispositionKnown(), nil
	case "trash":
		return entity.DispositionTrash(), nil
	default:
		return entity.Disposition{}, fmt.Errorf("%w: %q", entity.ErrInvalidDisposition, r.Disposition)
	}
}

// ImportRows adds every row to the store. Bad rows are reported and skipped.
func ImportRows(store *entity.WordStore, rows []TableRow, today entity.Day, day *entity.DayStatistics) TableImportReport {
	report := TableImportReport{Rows: len(rows)}
	for _, row := range rows {
		d, err := row.ToDisposition()
		if err == nil {
			err = store.Add(row.Word, d, today, day)
		}
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", row.Line, err))
			continue
		}
		report.Added++
	}
	return report
}
