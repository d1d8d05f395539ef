package roster

import (
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrMissingQuery is returned when the roster URL lacks its program or group.
var ErrMissingQuery = errors.New("faltan la carrera o el grupo")

// Query identifies the roster being taken: program, group and session date.
type Query struct {
	ProgramID string
	Group     string
	Date      string
}

// ParseQuery reads carrera, grupo and fecha from a roster URL.
// grupo_id is accepted in place of grupo for links built by the flat catalog.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{
		ProgramID: strings.TrimSpace(values.Get("carrera")),
		Group:     strings.TrimSpace(values.Get("grupo")),
		Date:      strings.TrimSpace(values.Get("fecha")),
	}
	if q.Group == "" {
		q.Group = strings.TrimSpace(values.Get("grupo_id"))
	}
	if q.ProgramID == "" || q.Group == "" {
		return q, ErrMissingQuery
	}
	return q, nil
}

// WithDefaultDate fills an empty date with the day of now.
func (q Query) WithDefaultDate(now time.Time) Query {
	if q.Date == "" {
		q.Date = now.Format(dateLayout)
	}
	return q
}

// Values encodes the query back into URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("carrera", q.ProgramID)
	v.Set("grupo", q.Group)
	v.Set("fecha", q.Date)
	return v
}

// URL returns the roster page address for q under path.
func (q Query) URL(path string) string {
	return path + "?" + q.Values().Encode()
}

// Title is the page heading.
func (q Query) Title() string {
	return "Asistencia - " + q.Group
}
