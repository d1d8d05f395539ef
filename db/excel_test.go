package db

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"asistencia-server-go/models"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImportStudentsFromExcel(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, s.AddProgram(ctx, SeedPrograms[0]))

	file := workbook(t, [][]interface{}{
		{"Matrícula", "Nombre"},
		{"A1", "Ana"},
		{"", "Sin matrícula"},
		{" B2 ", " Beto "},
	})

	n, err := s.ImportStudentsFromExcel(ctx, file, testProgram, testGroup)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	students, err := s.GetStudents(ctx, testProgram, testGroup, "")
	require.NoError(t, err)
	assert.Equal(t, []models.Student{
		{ID: 1, Enrollment: "A1", Name: "Ana"},
		{ID: 2, Enrollment: "B2", Name: "Beto"},
	}, students)
}

func TestImportStudentsFromExcel_unknownProgram(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.ImportStudentsFromExcel(context.Background(), workbook(t, nil), "mecanica", testGroup)
	assert.Error(t, err)
}

func TestImportStudentsFromExcel_notAWorkbook(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, s.AddProgram(ctx, SeedPrograms[0]))

	_, err := s.ImportStudentsFromExcel(ctx, bytes.NewBufferString("matricula,nombre"), testProgram, testGroup)
	assert.Error(t, err)
}

func TestExportRecordToExcel(t *testing.T) {
	record := models.AttendanceRecord{
		ID:        1,
		ProgramID: testProgram,
		Group:     testGroup,
		Date:      testDate,
		Students: []models.Student{
			{ID: 1, Enrollment: "A1", Name: "Ana", Present: true},
			{ID: 2, Enrollment: "B2", Name: "Beto"},
		},
		Summary: models.Summary{Present: 1, Total: 2, Percentage: 50},
	}

	data, err := ExportRecordToExcel(record, "Ingeniería en Software")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Carrera", "Ingeniería en Software"}, rows[0])
	assert.Equal(t, []string{"Presentes", "1/2 (50%)"}, rows[3])
	assert.Equal(t, []string{"1", "A1", "Ana", "Presente"}, rows[6])
	assert.Equal(t, []string{"2", "B2", "Beto", "Ausente"}, rows[7])
}
