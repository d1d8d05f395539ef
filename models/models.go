package models

// Program represents an academic program (carrera)
type Program struct {
	ID     string   `json:"id"`     // Unique program ID (e.g., "software")
	Name   string   `json:"nombre"` // Display name
	Icon   string   `json:"icono"`  // Font Awesome icon class
	Groups []string `json:"grupos"` // Ordered group names
}

// Group represents a class section within a program
type Group struct {
	ID   string `json:"id"`
	Name string `json:"nombre"`
}

// Student represents a roster row
type Student struct {
	ID         int    `json:"id"`         // Sequential, unique within a roster
	Enrollment string `json:"matricula"`  // Enrollment code
	Name       string `json:"nombre"`     // Student name
	Present    bool   `json:"asistencia"` // Attendance flag for the session date
}

// Summary is the present/total/percentage result of a save
type Summary struct {
	Present    int `json:"presentes"`
	Total      int `json:"total"`
	Percentage int `json:"porcentaje"`
}

// HistoryEntry is one saved attendance session
type HistoryEntry struct {
	ID         int64  `json:"id"` // Unix milliseconds of the save
	Date       string `json:"fecha"`
	ProgramID  string `json:"carrera"`
	Group      string `json:"grupo"`
	Present    int    `json:"presentes"`
	Total      int    `json:"total"`
	Percentage int    `json:"porcentaje"`
}

// AttendanceRecord is the full payload of a save, kept for detail and export
type AttendanceRecord struct {
	ID        int64     `json:"id"`
	ProgramID string    `json:"carrera"`
	Group     string    `json:"grupo"`
	Date      string    `json:"fecha"`
	Students  []Student `json:"alumnos"`
	Summary   Summary   `json:"resumen"`
}

// Entry returns the history row describing the record
func (r AttendanceRecord) Entry() HistoryEntry {
	return HistoryEntry{
		ID:         r.ID,
		Date:       r.Date,
		ProgramID:  r.ProgramID,
		Group:      r.Group,
		Present:    r.Summary.Present,
		Total:      r.Summary.Total,
		Percentage: r.Summary.Percentage,
	}
}

// Observation is a free-text note kept for a group
type Observation struct {
	Text string `json:"texto"`
	Date string `json:"fecha"` // "2006-01-02 15:04:05"
}
