package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"asistencia-server-go/models"
	"asistencia-server-go/roster"
)

// APIHandler serves the JSON API used by the pages and by external clients
type APIHandler struct {
	Deps
}

// NewAPIHandler creates a new APIHandler
func NewAPIHandler(deps Deps) *APIHandler {
	return &APIHandler{Deps: deps}
}

// GetUserInfo handles GET /api/user-info
func (h *APIHandler) GetUserInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"username": h.UserName,
		"nombre":   h.UserName,
	})
}

// --- Program Handlers ---

// GetAllPrograms handles GET /api/carreras
func (h *APIHandler) GetAllPrograms(c *gin.Context) {
	programs, err := h.Store.GetAllPrograms(c.Request.Context())
	if err != nil {
		h.Log.Error("Error in GetAllPrograms handler", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve programs"})
		return
	}
	if programs == nil {
		// Return empty list instead of null for JSON consistency
		programs = []models.Program{}
	}
	c.JSON(http.StatusOK, programs)
}

// GetProgramByID handles GET /api/carreras/:id
func (h *APIHandler) GetProgramByID(c *gin.Context) {
	programID := c.Param("id")

	program, err := h.Store.GetProgram(c.Request.Context(), programID)
	if err != nil {
		h.Log.Error("Error in GetProgramByID handler", err, map[string]interface{}{"carrera": programID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve program details"})
		return
	}
	if program == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}
	c.JSON(http.StatusOK, program)
}

type addProgramRequest struct {
	ID     string   `json:"id" binding:"required"`
	Name   string   `json:"nombre" binding:"required"`
	Icon   string   `json:"icono"`
	Groups []string `json:"grupos"`
}

// AddProgram handles POST /api/carreras
func (h *APIHandler) AddProgram(c *gin.Context) {
	var req addProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": bindingMessage(err)})
		return
	}

	program := models.Program{ID: req.ID, Name: req.Name, Icon: req.Icon, Groups: req.Groups}
	if program.Groups == nil {
		program.Groups = []string{}
	}
	if err := h.Store.AddProgram(c.Request.Context(), program); err != nil {
		h.Log.Error("Error in AddProgram handler", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add program"})
		return
	}
	c.JSON(http.StatusCreated, program)
}

// GetGroups handles GET /api/carreras/:id/grupos
func (h *APIHandler) GetGroups(c *gin.Context) {
	ctx := c.Request.Context()
	programID := c.Param("id")

	exists, err := h.Store.ProgramExists(ctx, programID)
	if err != nil {
		h.Log.Error("Error checking program existence in GetGroups handler", err, map[string]interface{}{"carrera": programID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify program"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Program not found"})
		return
	}

	names, err := h.Store.GetGroups(ctx, programID)
	if err != nil {
		h.Log.Error("Error in GetGroups handler", err, map[string]interface{}{"carrera": programID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve groups for the program"})
		return
	}
	groups := make([]models.Group, len(names))
	for i, name := range names {
		groups[i] = models.Group{ID: name, Name: name}
	}
	c.JSON(http.StatusOK, groups)
}

// --- Attendance Handlers ---

type saveAttendanceRequest struct {
	ProgramID string           `json:"carrera" binding:"required"`
	Group     string           `json:"grupo" binding:"required"`
	Date      string           `json:"fecha" binding:"required,datetime=2006-01-02"`
	Students  []models.Student `json:"alumnos"`
}

// SaveAttendance handles POST /api/guardar-asistencia.
// Flags sent for students of the roster are applied before saving.
func (h *APIHandler) SaveAttendance(c *gin.Context) {
	var req saveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": bindingMessage(err)})
		return
	}
	ctx := c.Request.Context()

	ctrl := roster.New(h.Store, roster.Query{ProgramID: req.ProgramID, Group: req.Group, Date: req.Date})
	ctrl.Load(ctx)
	if len(ctrl.Messages) > 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": ctrl.Messages[0]})
		return
	}

	for _, s := range req.Students {
		if err := ctrl.SetAttendance(ctx, s.ID, s.Present); err != nil {
			h.Log.Error("Error in SaveAttendance handler", err, map[string]interface{}{"alumno": s.ID})
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
	}

	summary, err := ctrl.Save(ctx, h.now())
	if err != nil {
		h.Log.Error("Error in SaveAttendance handler", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Asistencia guardada correctamente",
		"resumen": summary,
		"id":      ctrl.History[0].ID,
	})
}

// GetHistory handles GET /api/historial-asistencia?carrera=&grupo=
func (h *APIHandler) GetHistory(c *gin.Context) {
	programID := c.Query("carrera")
	group := c.Query("grupo")
	if programID == "" || group == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "carrera and grupo are required"})
		return
	}

	history, err := h.Store.GetHistory(c.Request.Context(), programID, group)
	if err != nil {
		h.Log.Error("Error in GetHistory handler", err, map[string]interface{}{"carrera": programID, "grupo": group})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}
	c.JSON(http.StatusOK, history)
}

// --- Ping Handler ---

// PingHandler handles GET /api/ping
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Pong!"})
}
