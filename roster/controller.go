// Package roster implements the attendance-taking page: the roster of a group,
// per-student attendance for one date, the save summary and the session history.
package roster

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"

	"asistencia-server-go/models"
)

const dateLayout = "2006-01-02"

// Errors reported to the user by the roster page.
var (
	// ErrMissingFields rejects a student without enrollment or name.
	ErrMissingFields = errors.New("Por favor completa todos los campos")
	// ErrNotConfirmed leaves the roster untouched when a delete is not confirmed.
	ErrNotConfirmed = errors.New("eliminación no confirmada")
	// ErrDateRangeRequired rejects a history filter missing either bound.
	ErrDateRangeRequired = errors.New("Por favor selecciona ambas fechas")
	// ErrStudentNotFound is returned when deleting an ID not on the roster.
	ErrStudentNotFound = errors.New("alumno no encontrado")
	// ErrHistoryNotFound is returned for a session not saved for this group.
	ErrHistoryNotFound = errors.New("registro de asistencia no encontrado")
	// ErrLoadStudentsFailed is shown when the roster cannot be read.
	ErrLoadStudentsFailed = errors.New("Error al cargar la lista de alumnos")
	// ErrEmptyObservation rejects a blank note.
	ErrEmptyObservation = errors.New("Escribe una observación")
)

const observationLayout = "2006-01-02 15:04:05"

// knownPrograms names programs the store may not know about.
var knownPrograms = map[string]string{
	"software":    "Ingeniería en Software",
	"manufactura": "Ingeniería en Manufactura",
	"mecanica":    "Ingeniería Mecánica",
}

// Store is the backend the roster reads from and writes through to.
type Store interface {
	GetProgram(ctx context.Context, programID string) (*models.Program, error)
	GetStudents(ctx context.Context, programID, group, date string) ([]models.Student, error)
	AddStudent(ctx context.Context, programID, group string, student models.Student) (models.Student, error)
	DeleteStudent(ctx context.Context, programID, group string, studentID int) (bool, error)
	SetAttendance(ctx context.Context, programID, group, date string, studentID int, present bool) error
	SaveAttendance(ctx context.Context, record models.AttendanceRecord) error
	GetHistory(ctx context.Context, programID, group string) ([]models.HistoryEntry, error)
	GetRecord(ctx context.Context, programID, group string, id int64) (*models.AttendanceRecord, error)
	AddObservation(ctx context.Context, programID, group string, obs models.Observation) error
	GetObservations(ctx context.Context, programID, group string) ([]models.Observation, error)
}

// Controller owns the state of one roster page view.
type Controller struct {
	store Store

	Query       Query
	ProgramName string
	Students    []models.Student
	History      []models.HistoryEntry
	Observations []models.Observation
	Messages     []string // user-facing load failures
}

// New creates a controller for q. Call Load before using its state.
func New(store Store, q Query) *Controller {
	return &Controller{store: store, Query: q, ProgramName: q.ProgramID}
}

// Load fetches the program name, the roster and the history.
// Each part fails independently; failures are logged and never retried.
func (c *Controller) Load(ctx context.Context) {
	c.ProgramName = c.programName(ctx)

	students, err := c.store.GetStudents(ctx, c.Query.ProgramID, c.Query.Group, c.Query.Date)
	if err != nil {
		log.Printf("Error loading students for %s/%s: %v", c.Query.ProgramID, c.Query.Group, err)
		c.Messages = append(c.Messages, ErrLoadStudentsFailed.Error())
		c.Students = []models.Student{}
	} else {
		c.Students = students
	}

	history, err := c.store.GetHistory(ctx, c.Query.ProgramID, c.Query.Group)
	if err != nil {
		log.Printf("Error loading history for %s/%s: %v", c.Query.ProgramID, c.Query.Group, err)
		c.History = []models.HistoryEntry{}
	} else {
		c.History = history
	}

	observations, err := c.store.GetObservations(ctx, c.Query.ProgramID, c.Query.Group)
	if err != nil {
		log.Printf("Error loading observations for %s/%s: %v", c.Query.ProgramID, c.Query.Group, err)
		c.Observations = []models.Observation{}
	} else {
		c.Observations = observations
	}
}

func (c *Controller) programName(ctx context.Context) string {
	program, err := c.store.GetProgram(ctx, c.Query.ProgramID)
	if err != nil {
		log.Printf("Error loading program %s: %v", c.Query.ProgramID, err)
	}
	if program != nil && program.Name != "" {
		return program.Name
	}
	if name, ok := knownPrograms[c.Query.ProgramID]; ok {
		return name
	}
	return c.Query.ProgramID
}

// AddStudent validates the form fields and appends a new student with the next ID.
func (c *Controller) AddStudent(ctx context.Context, enrollment, name string) (models.Student, error) {
	enrollment = strings.TrimSpace(enrollment)
	name = strings.TrimSpace(name)
	if enrollment == "" || name == "" {
		return models.Student{}, ErrMissingFields
	}

	student, err := c.store.AddStudent(ctx, c.Query.ProgramID, c.Query.Group, models.Student{Enrollment: enrollment, Name: name})
	if err != nil {
		return models.Student{}, err
	}
	c.Students = append(c.Students, student)
	return student, nil
}

// DeleteStudent removes a student. Nothing changes unless confirmed is true.
func (c *Controller) DeleteStudent(ctx context.Context, id int, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}

	deleted, err := c.store.DeleteStudent(ctx, c.Query.ProgramID, c.Query.Group, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrStudentNotFound
	}

	kept := c.Students[:0]
	for _, s := range c.Students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	c.Students = kept
	return nil
}

// SetAttendance updates one student's flag. Unknown IDs are ignored.
func (c *Controller) SetAttendance(ctx context.Context, id int, present bool) error {
	for i := range c.Students {
		if c.Students[i].ID != id {
			continue
		}
		if err := c.store.SetAttendance(ctx, c.Query.ProgramID, c.Query.Group, c.Query.Date, id, present); err != nil {
			return err
		}
		c.Students[i].Present = present
		return nil
	}
	return nil
}

// Save computes the summary, stores the session and prepends it to the history.
func (c *Controller) Save(ctx context.Context, now time.Time) (models.Summary, error) {
	summary := Summarize(c.Students)
	record := models.AttendanceRecord{
		ID:        now.UnixMilli(),
		ProgramID: c.Query.ProgramID,
		Group:     c.Query.Group,
		Date:      c.Query.Date,
		Students:  append([]models.Student(nil), c.Students...),
		Summary:   summary,
	}

	log.Printf("Saving attendance: carrera=%s grupo=%s fecha=%s alumnos=%d resumen=%+v",
		record.ProgramID, record.Group, record.Date, len(record.Students), summary)

	if err := c.store.SaveAttendance(ctx, record); err != nil {
		return models.Summary{}, err
	}
	c.History = append([]models.HistoryEntry{record.Entry()}, c.History...)
	return summary, nil
}

// FilterHistory returns the entries dated within [from, to], both inclusive.
func (c *Controller) FilterHistory(from, to string) ([]models.HistoryEntry, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return nil, ErrDateRangeRequired
	}

	filtered := make([]models.HistoryEntry, 0, len(c.History))
	for _, entry := range c.History {
		if entry.Date >= from && entry.Date <= to {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// HistoryEntry finds an entry of the loaded history by ID.
func (c *Controller) HistoryEntry(id int64) (models.HistoryEntry, error) {
	for _, entry := range c.History {
		if entry.ID == id {
			return entry, nil
		}
	}
	return models.HistoryEntry{}, ErrHistoryNotFound
}

// Record returns the stored session behind a history entry.
func (c *Controller) Record(ctx context.Context, id int64) (models.AttendanceRecord, error) {
	record, err := c.store.GetRecord(ctx, c.Query.ProgramID, c.Query.Group, id)
	if err != nil {
		return models.AttendanceRecord{}, err
	}
	if record == nil {
		return models.AttendanceRecord{}, ErrHistoryNotFound
	}
	return *record, nil
}

// AddObservation stores a note for the group, stamped with now.
func (c *Controller) AddObservation(ctx context.Context, text string, now time.Time) (models.Observation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Observation{}, ErrEmptyObservation
	}

	obs := models.Observation{Text: text, Date: now.Format(observationLayout)}
	if err := c.store.AddObservation(ctx, c.Query.ProgramID, c.Query.Group, obs); err != nil {
		return models.Observation{}, err
	}
	c.Observations = append([]models.Observation{obs}, c.Observations...)
	return obs, nil
}

// Summarize counts present students.
func Summarize(students []models.Student) models.Summary {
	present := 0
	for _, s := range students {
		if s.Present {
			present++
		}
	}
	return models.Summary{
		Present:    present,
		Total:      len(students),
		Percentage: Percentage(present, len(students)),
	}
}

// Percentage is round(100*present/total), 0 when total is 0.
func Percentage(present, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(present) / float64(total)))
}

// DefaultHistoryRange is the window the history view opens with: one month back to today.
func DefaultHistoryRange(now time.Time) (from, to string) {
	return now.AddDate(0, -1, 0).Format(dateLayout), now.Format(dateLayout)
}

// SaveMessage reports a saved session to the user.
func SaveMessage(s models.Summary) string {
	return fmt.Sprintf("Asistencia guardada correctamente\nPresentes: %d/%d (%d%%)", s.Present, s.Total, s.Percentage)
}

// DetailMessage describes a history entry.
func DetailMessage(e models.HistoryEntry) string {
	return fmt.Sprintf("Detalles de asistencia del %s\nPresentes: %d/%d (%d%%)", e.Date, e.Present, e.Total, e.Percentage)
}

// FilterMessage describes the history window being shown.
func FilterMessage(from, to string) string {
	return fmt.Sprintf("Mostrando asistencias entre %s y %s", from, to)
}
