package views

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{"asistencia.html", "lista_asistencia.html", "historial.html", "encabezado", "pie"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestHelp(t *testing.T) {
	html, err := Help()
	require.NoError(t, err)

	assert.Contains(t, string(html), "<h2>¿Cómo tomar lista?</h2>")
	assert.Contains(t, string(html), "<strong>Tomar lista</strong>")
}

func TestStatic(t *testing.T) {
	_, err := fs.Stat(Static(), "estilos.css")
	assert.NoError(t, err)
}
