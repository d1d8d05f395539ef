package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// addFlash queues a message for the next rendered page.
func (d Deps) addFlash(c *gin.Context, msg string) {
	session := sessions.Default(c)
	session.AddFlash(msg)
	if err := session.Save(); err != nil {
		d.Log.Error("Error saving flash message", err)
	}
}

// flashes pops the queued messages.
func (d Deps) flashes(c *gin.Context) []string {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := session.Save(); err != nil {
		d.Log.Error("Error clearing flash messages", err)
	}
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
