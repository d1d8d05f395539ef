package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_localOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "", "TEST", "dev")

	l.Error("failed to save attendance", errors.New("redis down"), map[string]interface{}{"grupo": "1925° IS"})
	l.Info("seeded")

	out := buf.String()
	assert.Contains(t, out, "[ERROR] failed to save attendance")
	assert.Contains(t, out, "redis down")
	assert.Contains(t, out, "1925° IS")
	assert.Contains(t, out, "[INFO] seeded")
}
