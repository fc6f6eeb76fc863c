package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Skryldev/employee-payroll/models"
)

// workbook builds an xlsx with the given rows on sheet.
func workbook(t *testing.T, sheet string, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestWriteEmployees(t *testing.T) {
	employees := []*models.Employee{
		{ID: 1, Name: "Jane Doe", Email: "jane@x.com", NetSalary: 546.25, Age: 30, WorkedHours: 45},
		{ID: 2, Name: "John Roe", Email: "john@x.com", NetSalary: 276, Age: 41, WorkedHours: 20},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteEmployees(&buf, employees))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, ExportHeader, rows[0])
	assert.Equal(t, []string{"1", "Jane Doe", "jane@x.com", "546.25", "30", "45"}, rows[1])
	assert.Equal(t, "john@x.com", rows[2][2])
}

func TestWriteEmployees_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteEmployees(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadEmployees(t *testing.T) {
	buf := workbook(t, SheetName, [][]interface{}{
		{"Name", "Email", "Base Salary", "Age", "Worked Hours"},
		{"Jane Doe", "jane@x.com", 500, 30, 45},
		{},
		{" John Roe ", "john@x.com", "600", "41", "20.5"},
	})

	got, err := ReadEmployees(buf)
	require.NoError(t, err)
	assert.Equal(t, []models.CreateEmployeeParams{
		{Name: "Jane Doe", Email: "jane@x.com", BaseSalary: 500, Age: 30, WorkedHours: 45},
		{Name: "John Roe", Email: "john@x.com", BaseSalary: 600, Age: 41, WorkedHours: 20.5},
	}, got)
}

func TestReadEmployees_FirstSheetFallback(t *testing.T) {
	buf := workbook(t, "Import", [][]interface{}{
		{"name", "EMAIL", "base salary", "Age", "worked hours"},
		{"Ann", "ann@x.com", 300, 22, 40},
	})

	got, err := ReadEmployees(buf)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ann", got[0].Name)
}

func TestReadEmployees_MalformedNumber(t *testing.T) {
	buf := workbook(t, SheetName, [][]interface{}{
		{"Name", "Email", "Base Salary", "Age", "Worked Hours"},
		{"Jane Doe", "jane@x.com", 500, 30, 45},
		{"John Roe", "john@x.com", 600, "forty", 20},
	})

	_, err := ReadEmployees(buf)
	var re *RowError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 3, re.Row)
	assert.Equal(t, "Age", re.Column)
}

func TestReadEmployees_BadHeader(t *testing.T) {
	buf := workbook(t, SheetName, [][]interface{}{
		{"ID", "Name", "Email", "Net Salary", "Age", "Worked Hours"},
	})

	_, err := ReadEmployees(buf)
	assert.ErrorContains(t, err, "header")
}

func TestWriteImportTemplate_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteImportTemplate(&buf))

	got, err := ReadEmployees(&buf)
	require.NoError(t, err)
	assert.Empty(t, got)
}
