package handlers

import (
	"context"
	"io"
	"time"

	"asistencia-server-go/catalog"
	"asistencia-server-go/logger"
	"asistencia-server-go/models"
	"asistencia-server-go/roster"
)

// Store is the backend the handlers need; *db.RedisService implements it.
type Store interface {
	catalog.Source
	roster.Store
	AddProgram(ctx context.Context, program models.Program) error
	ProgramExists(ctx context.Context, programID string) (bool, error)
	ImportStudentsFromExcel(ctx context.Context, file io.Reader, programID, group string) (int, error)
}

// Deps holds what both the API and the page handlers depend on.
type Deps struct {
	Store    Store
	Log      *logger.Logger
	UserName string
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}
