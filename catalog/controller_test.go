package catalog

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asistencia-server-go/models"
)

type fakeSource struct {
	programs []models.Program
	groups   map[string][]string
	err      error

	groupCalls int
}

func (f *fakeSource) GetAllPrograms(context.Context) ([]models.Program, error) {
	return f.programs, f.err
}

func (f *fakeSource) GetGroups(_ context.Context, id string) ([]string, error) {
	f.groupCalls++
	return f.groups[id], nil
}

var programs = []models.Program{
	{ID: "manufactura", Name: "Ingeniería en Manufactura", Icon: "fa-industry", Groups: []string{"1625° ITM"}},
	{ID: "mecanica", Name: "Ingeniería Mecánica", Icon: "fa-cogs"},
	{ID: "software", Name: "Ingeniería en Software", Icon: "fa-laptop-code", Groups: []string{"1925° IS", "2925° IS"}},
	{ID: "admin", Name: "Licenciatura en Administración", Icon: "fa-briefcase"},
}

func TestController_defaultDate(t *testing.T) {
	now := time.Date(2024, 5, 2, 23, 0, 0, 0, time.UTC)

	c := New(&fakeSource{}, Options{Now: now})
	assert.Equal(t, "2024-05-02", c.Date)

	c = New(&fakeSource{}, Options{Now: now, Date: "2024-04-30"})
	assert.Equal(t, "2024-04-30", c.Date)
}

func TestController_Cards(t *testing.T) {
	c := New(&fakeSource{programs: programs}, Options{})
	c.Load(context.Background())

	assert.Empty(t, c.Error)
	assert.Len(t, c.Cards(context.Background()), len(programs))
}

func TestController_Filter(t *testing.T) {
	c := New(&fakeSource{programs: programs}, Options{})
	c.Load(context.Background())

	tests := []struct {
		term string
		want int
	}{
		{"", 4},
		{"ingeniería", 3},
		{"SOFTWARE", 1},
		{"  mecá ", 1},
		{"medicina", 0},
	}
	for _, tt := range tests {
		assert.Len(t, c.Filter(tt.term), tt.want, tt.term)
	}

	c.Search = "manu"
	cards := c.Cards(context.Background())
	require.Len(t, cards, 1)
	assert.Equal(t, "manufactura", cards[0].ID)
}

func TestController_LoadFallback(t *testing.T) {
	c := New(&fakeSource{err: errors.New("connection refused")}, Options{})
	c.Load(context.Background())

	assert.Equal(t, LoadErrorMessage, c.Error)
	assert.Equal(t, []models.Program{Fallback}, c.Programs)
}

func TestController_Toggle(t *testing.T) {
	c := New(&fakeSource{programs: programs}, Options{Expanded: []string{"software"}})
	c.Load(context.Background())

	assert.True(t, c.IsExpanded("software"))
	c.Toggle("software")
	assert.False(t, c.IsExpanded("software"))
	c.Toggle("manufactura")
	c.Toggle("admin")
	assert.Equal(t, []string{"admin", "manufactura"}, c.Expanded())

	cards := c.Cards(context.Background())
	byID := map[string]Card{}
	for _, card := range cards {
		byID[card.ID] = card
	}
	assert.Equal(t, "grupos-container mostrar", byID["manufactura"].ContainerClass())
	assert.Equal(t, "fa-chevron-up", byID["manufactura"].ToggleIcon())
	assert.Equal(t, "grupos-container", byID["software"].ContainerClass())
	assert.Equal(t, "fa-chevron-down", byID["software"].ToggleIcon())
}

func TestController_lazyGroups(t *testing.T) {
	src := &fakeSource{programs: programs, groups: map[string][]string{"mecanica": {"1725° IM"}}}
	c := New(src, Options{})
	c.Load(context.Background())

	for _, card := range c.Cards(context.Background()) {
		if card.ID == "mecanica" {
			assert.Empty(t, card.Groups)
		}
	}
	assert.Equal(t, 0, src.groupCalls)

	c.Toggle("mecanica")
	for _, card := range c.Cards(context.Background()) {
		if card.ID == "mecanica" {
			require.Len(t, card.Groups, 1)
			assert.Equal(t, "mecanica/1725° IM", card.Groups[0].Selection)
		}
	}
	assert.Equal(t, 1, src.groupCalls)
}

func TestTakeRoster(t *testing.T) {
	_, err := TakeRoster("software", "1925° IS", "")
	assert.ErrorIs(t, err, ErrDateRequired)

	_, err = TakeRoster("", "", "2024-05-02")
	assert.ErrorIs(t, err, ErrNoGroup)

	target, err := TakeRoster("software", "1925° IS - INGENIERÍA DE SOFTWARE", "2024-05-02")
	require.NoError(t, err)

	u, err := url.Parse(target)
	require.NoError(t, err)
	assert.Equal(t, RosterPath, u.Path)
	assert.Equal(t, "software", u.Query().Get("carrera"))
	assert.Equal(t, "1925° IS - INGENIERÍA DE SOFTWARE", u.Query().Get("grupo"))
	assert.Equal(t, "2024-05-02", u.Query().Get("fecha"))
	assert.NotContains(t, u.RawQuery, " ")
}

func TestParseSelection(t *testing.T) {
	id, group := ParseSelection(Selection("software", "1925° IS / turno B"))
	assert.Equal(t, "software", id)
	assert.Equal(t, "1925° IS / turno B", group)

	id, group = ParseSelection("sin-separador")
	assert.Empty(t, id)
	assert.Empty(t, group)
}
