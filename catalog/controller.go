// Package catalog implements the program catalog page: filterable program
// cards, expandable group lists and the hand-off to the roster page.
package catalog

import (
	"context"
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"asistencia-server-go/models"
)

const (
	// Path is the catalog page.
	Path = "/asistencia"
	// RosterPath is where "Tomar lista" navigates to.
	RosterPath = "/lista-asistencia"

	dateLayout = "2006-01-02"
)

var (
	// ErrDateRequired blocks taking the roster without a session date.
	ErrDateRequired = errors.New("Por favor selecciona una fecha")
	// ErrNoGroup is returned when no program and group were picked.
	ErrNoGroup = errors.New("selecciona una carrera y un grupo")

	// LoadErrorMessage is shown inline when the program list cannot be fetched.
	LoadErrorMessage = "No se pudieron cargar las carreras"

	// Fallback is rendered when the program list cannot be fetched.
	Fallback = models.Program{
		ID:     "software",
		Name:   "Ingeniería en Software",
		Icon:   "fa-laptop-code",
		Groups: []string{"1925° IS - INGENIERÍA DE SOFTWARE"},
	}
)

// Source provides the programs and, for programs listed without them, their groups.
type Source interface {
	GetAllPrograms(ctx context.Context) ([]models.Program, error)
	GetGroups(ctx context.Context, programID string) ([]string, error)
}

// Options carries the page state encoded in the catalog URL.
type Options struct {
	Search   string
	Date     string
	Expanded []string
	Now      time.Time
}

// Controller owns the state of one catalog page view.
type Controller struct {
	source Source

	Programs []models.Program
	Error    string
	Search   string
	Date     string

	expanded map[string]bool
}

// New creates a controller. Date defaults to the current day.
func New(source Source, opts Options) *Controller {
	c := &Controller{
		source:   source,
		Search:   strings.TrimSpace(opts.Search),
		Date:     strings.TrimSpace(opts.Date),
		expanded: map[string]bool{},
	}
	if c.Date == "" {
		now := opts.Now
		if now.IsZero() {
			now = time.Now()
		}
		c.Date = now.Format(dateLayout)
	}
	for _, id := range opts.Expanded {
		if id != "" {
			c.expanded[id] = true
		}
	}
	return c
}

// Load fetches the program list. On failure it keeps an inline error and
// falls back to a single placeholder program.
func (c *Controller) Load(ctx context.Context) {
	programs, err := c.source.GetAllPrograms(ctx)
	if err != nil {
		log.Printf("Error loading programs: %v", err)
		c.Error = LoadErrorMessage
		c.Programs = []models.Program{Fallback}
		return
	}
	c.Programs = programs
}

// Filter returns the programs whose name contains term, ignoring case.
func (c *Controller) Filter(term string) []models.Program {
	term = strings.ToLower(strings.TrimSpace(term))
	filtered := make([]models.Program, 0, len(c.Programs))
	for _, p := range c.Programs {
		if strings.Contains(strings.ToLower(p.Name), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Toggle expands or collapses a program's group list.
func (c *Controller) Toggle(programID string) {
	if c.expanded[programID] {
		delete(c.expanded, programID)
		return
	}
	c.expanded[programID] = true
}

// IsExpanded reports whether a program's group list is shown.
func (c *Controller) IsExpanded(programID string) bool {
	return c.expanded[programID]
}

// Expanded lists the expanded program IDs in order.
func (c *Controller) Expanded() []string {
	ids := make([]string, 0, len(c.expanded))
	for id := range c.expanded {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Groups returns a program's groups, fetching them when the listing carried none.
func (c *Controller) Groups(ctx context.Context, program models.Program) []string {
	if len(program.Groups) > 0 {
		return program.Groups
	}
	groups, err := c.source.GetGroups(ctx, program.ID)
	if err != nil {
		log.Printf("Error loading groups for %s: %v", program.ID, err)
		return []string{}
	}
	return groups
}

// TakeRoster returns the roster page URL for a group. A date is required.
func TakeRoster(programID, group, date string) (string, error) {
	if strings.TrimSpace(date) == "" {
		return "", ErrDateRequired
	}
	if programID == "" || group == "" {
		return "", ErrNoGroup
	}
	params := url.Values{}
	params.Set("carrera", programID)
	params.Set("grupo", group)
	params.Set("fecha", date)
	return RosterPath + "?" + params.Encode(), nil
}
