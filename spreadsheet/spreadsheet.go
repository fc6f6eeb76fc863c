// Package spreadsheet exports employees to xlsx and reads employee import
// sheets, using excelize.
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Skryldev/employee-payroll/models"
)

const SheetName = "Employees"

var (
	ExportHeader = []string{"ID", "Name", "Email", "Net Salary", "Age", "Worked Hours"}
	ImportHeader = []string{"Name", "Email", "Base Salary", "Age", "Worked Hours"}
)

// RowError points at the sheet row (1-based, header included) and column
// of a malformed import cell.
type RowError struct {
	Row    int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("spreadsheet: row %d, %s: %v", e.Row, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// WriteEmployees streams employees as one xlsx workbook to w.
func WriteEmployees(w io.Writer, employees []*models.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("spreadsheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("spreadsheet: stream writer: %w", err)
	}
	if err := sw.SetColWidth(2, 3, 28); err != nil {
		return fmt.Errorf("spreadsheet: %w", err)
	}
	if err := writeHeader(f, sw, ExportHeader); err != nil {
		return err
	}

	for i, e := range employees {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{e.ID, e.Name, e.Email, e.NetSalary, e.Age, e.WorkedHours}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("spreadsheet: row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("spreadsheet: flush: %w", err)
	}
	return f.Write(w)
}

// WriteImportTemplate writes an empty import sheet holding only the header.
func WriteImportTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("spreadsheet: %w", err)
	}
	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("spreadsheet: stream writer: %w", err)
	}
	if err := writeHeader(f, sw, ImportHeader); err != nil {
		return err
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("spreadsheet: flush: %w", err)
	}
	return f.Write(w)
}

func writeHeader(f *excelize.File, sw *excelize.StreamWriter, header []string) error {
	sid, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("spreadsheet: header style: %w", err)
	}
	cells := make([]interface{}, len(header))
	for i, h := range header {
		cells[i] = excelize.Cell{Value: h, StyleID: sid}
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("spreadsheet: header: %w", err)
	}
	return nil
}

// ReadEmployees parses an import workbook. The first row must be
// ImportHeader (case and surrounding spaces ignored); blank rows are
// skipped. The Employees sheet is read when present, otherwise the first
// sheet.
func ReadEmployees(r io.Reader) ([]models.CreateEmployeeParams, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: open: %w", err)
	}
	defer f.Close()

	sheet := SheetName
	if idx, _ := f.GetSheetIndex(SheetName); idx < 0 {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("spreadsheet: workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet: read %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet: sheet %s is empty", sheet)
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	out := make([]models.CreateEmployeeParams, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		p, err := parseRow(i+2, row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func checkHeader(row []string) error {
	for i, want := range ImportHeader {
		got := ""
		if i < len(row) {
			got = strings.TrimSpace(row[i])
		}
		if !strings.EqualFold(got, want) {
			return fmt.Errorf("spreadsheet: column %d header is %q, want %q", i+1, got, want)
		}
	}
	return nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(n int, row []string) (models.CreateEmployeeParams, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	p := models.CreateEmployeeParams{Name: cell(0), Email: cell(1)}

	base, err := strconv.ParseFloat(cell(2), 64)
	if err != nil {
		return p, &RowError{Row: n, Column: ImportHeader[2], Err: err}
	}
	age, err := strconv.Atoi(cell(3))
	if err != nil {
		return p, &RowError{Row: n, Column: ImportHeader[3], Err: err}
	}
	hours, err := strconv.ParseFloat(cell(4), 64)
	if err != nil {
		return p, &RowError{Row: n, Column: ImportHeader[4], Err: err}
	}

	p.BaseSalary, p.Age, p.WorkedHours = base, age, hours
	return p, nil
}
