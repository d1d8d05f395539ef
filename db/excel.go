package db

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"asistencia-server-go/models"
)

const exportSheet = "Asistencia"

// ImportStudentsFromExcel reads an Excel stream and adds its students to the roster.
// Column A is the enrollment code, column B the name; the first row is a header.
func (s *RedisService) ImportStudentsFromExcel(ctx context.Context, file io.Reader, programID, group string) (int, error) {
	exists, err := s.ProgramExists(ctx, programID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, fmt.Errorf("program %s does not exist", programID)
	}

	f, err := excelize.OpenReader(file)
	if err != nil {
		return 0, errors.Wrap(err, "open excel file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return 0, errors.New("excel file does not contain any sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, errors.Wrapf(err, "get rows from sheet %s", sheetName)
	}

	imported := 0
	for i, row := range rows {
		if i == 0 {
			continue // header
		}

		var enrollment, name string
		if len(row) > 0 {
			enrollment = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			name = strings.TrimSpace(row[1])
		}
		if enrollment == "" || name == "" {
			log.Printf("Skipping row %d due to missing enrollment or name (matricula: '%s', nombre: '%s')", i+1, enrollment, name)
			continue
		}

		if _, err := s.AddStudent(ctx, programID, group, models.Student{Enrollment: enrollment, Name: name}); err != nil {
			log.Printf("Error adding student %s (%s) during import: %v", name, enrollment, err)
			continue
		}
		imported++
	}

	log.Printf("Successfully imported %d students into %s/%s", imported, programID, group)
	return imported, nil
}

// ExportRecordToExcel writes a saved session as an .xlsx workbook
func ExportRecordToExcel(record models.AttendanceRecord, programName string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, errors.Wrap(err, "rename sheet")
	}

	header := [][]interface{}{
		{"Carrera", programName},
		{"Grupo", record.Group},
		{"Fecha", record.Date},
		{"Presentes", fmt.Sprintf("%d/%d (%d%%)", record.Summary.Present, record.Summary.Total, record.Summary.Percentage)},
		{},
		{"#", "Matrícula", "Nombre", "Asistencia"},
	}
	for i, values := range header {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, errors.Wrapf(err, "write header row %d", i+1)
		}
	}

	for i, student := range record.Students {
		status := "Ausente"
		if student.Present {
			status = "Presente"
		}
		values := []interface{}{i + 1, student.Enrollment, student.Name, status}
		cell, _ := excelize.CoordinatesToCellName(1, len(header)+i+1)
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, errors.Wrapf(err, "write student row %d", i+1)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "write workbook")
	}
	return buf.Bytes(), nil
}
