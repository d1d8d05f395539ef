package db

import (
	"context"
	"log"

	"asistencia-server-go/models"
)

// SeedPrograms are the programs loaded into an empty database
var SeedPrograms = []models.Program{
	{
		ID:   "software",
		Name: "Ingeniería en Software",
		Icon: "fa-laptop-code",
		Groups: []string{
			"1925° IS - INGENIERÍA DE SOFTWARE",
			"2925° IS - INGENIERÍA DE SOFTWARE",
		},
	},
	{
		ID:   "manufactura",
		Name: "Ingeniería en Manufactura",
		Icon: "fa-industry",
		Groups: []string{
			"1625° ITM - Ingeniería en Manufactura",
		},
	},
}

var (
	seedStudents = []models.Student{
		{Enrollment: "A12345", Name: "Juan Pérez"},
		{Enrollment: "A67890", Name: "María García"},
	}
	seedHistory = []models.HistoryEntry{
		{ID: 1, Date: "2024-05-01", Present: 15, Total: 20, Percentage: 75},
		{ID: 2, Date: "2024-04-28", Present: 18, Total: 20, Percentage: 90},
	}
)

// SeedData adds the initial programs, a sample roster and a sample history per group.
// Errors are logged and do not stop the remaining inserts.
func (s *RedisService) SeedData(ctx context.Context) {
	log.Println("Seeding initial data...")

	for _, program := range SeedPrograms {
		if err := s.AddProgram(ctx, program); err != nil {
			log.Printf("Error adding seed program %s: %v", program.ID, err)
			continue
		}
		for _, group := range program.Groups {
			for _, student := range seedStudents {
				if _, err := s.AddStudent(ctx, program.ID, group, student); err != nil {
					log.Printf("Error adding seed student %s to %s: %v", student.Enrollment, group, err)
				}
			}
			for _, entry := range seedHistory {
				entry.ProgramID = program.ID
				entry.Group = group
				if err := s.AppendHistory(ctx, entry); err != nil {
					log.Printf("Error adding seed history %s to %s: %v", entry.Date, group, err)
				}
			}
		}
	}

	log.Println("Seeding complete.")
}

// SeedIfEmpty seeds only when no program exists yet
func (s *RedisService) SeedIfEmpty(ctx context.Context) (bool, error) {
	count, err := s.CountPrograms(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		log.Printf("Found %d existing programs (key: '%s'). Skipping seed data.", count, programsKey)
		return false, nil
	}
	log.Printf("No programs found (key: '%s'). Adding seed data...", programsKey)
	s.SeedData(ctx)
	return true, nil
}
