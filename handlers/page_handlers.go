package handlers

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"asistencia-server-go/catalog"
	"asistencia-server-go/db"
	"asistencia-server-go/models"
	"asistencia-server-go/roster"
)

const (
	saveFailedMessage   = "Error al guardar la asistencia"
	studentAddedMessage = "Alumno agregado correctamente"
)

// PageHandler renders the catalog and roster pages
type PageHandler struct {
	Deps
	Help template.HTML
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(deps Deps, help template.HTML) *PageHandler {
	return &PageHandler{Deps: deps, Help: help}
}

type page struct {
	Title   string
	User    string
	Flashes []string
}

type catalogPage struct {
	page
	Error        string
	Search       string
	Date         string
	Expanded     []string
	Cards        []catalog.Card
	Help         template.HTML
	ShowHelp     bool
	HelpURL      string
	CloseHelpURL string
}

type rosterPage struct {
	page
	Query        roster.Query
	QueryString  template.URL
	ProgramName  string
	Students     []models.Student
	Observations []models.Observation
	Messages     []string
}

type historyPage struct {
	rosterPage
	From           string
	To             string
	Entries        []models.HistoryEntry
	DetailMessage  string
	DetailStudents []models.Student
}

func (h *PageHandler) newPage(c *gin.Context, title string) page {
	return page{Title: title, User: h.UserName, Flashes: h.flashes(c)}
}

// Index handles GET /
func (h *PageHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, catalog.Path)
}

// --- Catalog ---

// Catalog handles GET /asistencia
func (h *PageHandler) Catalog(c *gin.Context) {
	ctrl := catalog.New(h.Store, catalog.Options{
		Search:   c.Query("q"),
		Date:     c.Query("fecha"),
		Expanded: c.QueryArray("abierta"),
		Now:      h.now(),
	})
	if id := c.Query("alternar"); id != "" {
		ctrl.Toggle(id)
	}
	ctrl.Load(c.Request.Context())

	state := url.Values{}
	state.Set("q", ctrl.Search)
	state.Set("fecha", ctrl.Date)
	for _, id := range ctrl.Expanded() {
		state.Add("abierta", id)
	}
	closeHelp := catalog.Path + "?" + state.Encode()
	state.Set("ayuda", "1")

	c.HTML(http.StatusOK, "asistencia.html", catalogPage{
		page:         h.newPage(c, "Tomar asistencia"),
		Error:        ctrl.Error,
		Search:       ctrl.Search,
		Date:         ctrl.Date,
		Expanded:     ctrl.Expanded(),
		Cards:        ctrl.Cards(c.Request.Context()),
		Help:         h.Help,
		ShowHelp:     c.Query("ayuda") != "",
		HelpURL:      catalog.Path + "?" + state.Encode(),
		CloseHelpURL: closeHelp,
	})
}

// TakeRoster handles GET /asistencia/tomar-lista
func (h *PageHandler) TakeRoster(c *gin.Context) {
	programID, group := c.Query("carrera"), c.Query("grupo")
	if sel := c.Query("lista"); sel != "" {
		programID, group = catalog.ParseSelection(sel)
	}

	target, err := catalog.TakeRoster(programID, group, c.Query("fecha"))
	if err != nil {
		h.addFlash(c, err.Error())
		back := url.Values{}
		back.Set("q", c.Query("q"))
		for _, id := range c.QueryArray("abierta") {
			back.Add("abierta", id)
		}
		if programID != "" {
			back.Add("abierta", programID)
		}
		c.Redirect(http.StatusFound, catalog.Path+"?"+back.Encode())
		return
	}
	c.Redirect(http.StatusFound, target)
}

// --- Roster ---

// rosterController parses the roster query and loads its controller.
// It redirects to the catalog and returns nil when the query is incomplete.
// A missing date means today.
func (h *PageHandler) rosterController(c *gin.Context) *roster.Controller {
	q, err := roster.ParseQuery(c.Request.URL.Query())
	if err != nil {
		h.addFlash(c, "Selecciona una carrera y un grupo")
		c.Redirect(http.StatusFound, catalog.Path)
		return nil
	}
	ctrl := roster.New(h.Store, q.WithDefaultDate(h.now()))
	ctrl.Load(c.Request.Context())
	return ctrl
}

func (h *PageHandler) newRosterPage(c *gin.Context, ctrl *roster.Controller) rosterPage {
	return rosterPage{
		page:  h.newPage(c, ctrl.Query.Title()),
		Query: ctrl.Query,
		// only encoded values, safe to splice after "?"
		QueryString:  template.URL(ctrl.Query.Values().Encode()),
		ProgramName:  ctrl.ProgramName,
		Students:     ctrl.Students,
		Observations: ctrl.Observations,
		Messages:     ctrl.Messages,
	}
}

func (h *PageHandler) backToRoster(c *gin.Context, ctrl *roster.Controller, msg string) {
	if msg != "" {
		h.addFlash(c, msg)
	}
	c.Redirect(http.StatusSeeOther, ctrl.Query.URL(catalog.RosterPath))
}

// Roster handles GET /lista-asistencia
func (h *PageHandler) Roster(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}
	c.HTML(http.StatusOK, "lista_asistencia.html", h.newRosterPage(c, ctrl))
}

// AddStudent handles POST /lista-asistencia/alumnos
func (h *PageHandler) AddStudent(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}

	_, err := ctrl.AddStudent(c.Request.Context(), c.PostForm("matricula"), c.PostForm("nombre"))
	switch {
	case errors.Is(err, roster.ErrMissingFields):
		h.backToRoster(c, ctrl, err.Error())
	case err != nil:
		h.Log.Error("Error in AddStudent handler", err)
		h.backToRoster(c, ctrl, "Error al agregar el alumno")
	default:
		h.backToRoster(c, ctrl, studentAddedMessage)
	}
}

// DeleteStudent handles POST /lista-asistencia/alumnos/:id/eliminar
func (h *PageHandler) DeleteStudent(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.backToRoster(c, ctrl, roster.ErrStudentNotFound.Error())
		return
	}

	confirmed, _ := strconv.ParseBool(c.PostForm("confirmar"))
	err = ctrl.DeleteStudent(c.Request.Context(), id, confirmed)
	switch {
	case errors.Is(err, roster.ErrNotConfirmed):
		h.backToRoster(c, ctrl, "¿Estás seguro de eliminar este alumno? Marca la casilla para confirmar")
	case errors.Is(err, roster.ErrStudentNotFound):
		h.backToRoster(c, ctrl, err.Error())
	case err != nil:
		h.Log.Error("Error in DeleteStudent handler", err)
		h.backToRoster(c, ctrl, "Error al eliminar el alumno")
	default:
		h.backToRoster(c, ctrl, "")
	}
}

// SetAttendance handles POST /lista-asistencia/alumnos/:id/asistencia
func (h *PageHandler) SetAttendance(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.backToRoster(c, ctrl, "")
		return
	}

	present, _ := strconv.ParseBool(c.PostForm("presente"))
	if err := ctrl.SetAttendance(c.Request.Context(), id, present); err != nil {
		h.Log.Error("Error in SetAttendance handler", err)
		h.backToRoster(c, ctrl, "Error al registrar la asistencia")
		return
	}
	h.backToRoster(c, ctrl, "")
}

// SaveAttendance handles POST /lista-asistencia/guardar
func (h *PageHandler) SaveAttendance(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}

	summary, err := ctrl.Save(c.Request.Context(), h.now())
	if err != nil {
		h.Log.Error("Error in SaveAttendance handler", err)
		h.backToRoster(c, ctrl, saveFailedMessage)
		return
	}
	h.backToRoster(c, ctrl, roster.SaveMessage(summary))
}

// ImportStudents handles POST /lista-asistencia/importar
func (h *PageHandler) ImportStudents(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.backToRoster(c, ctrl, "Selecciona un archivo de Excel")
		return
	}
	defer file.Close()

	h.Log.Printf("Received file upload: %s for %s/%s", header.Filename, ctrl.Query.ProgramID, ctrl.Query.Group)

	n, err := h.Store.ImportStudentsFromExcel(c.Request.Context(), file, ctrl.Query.ProgramID, ctrl.Query.Group)
	if err != nil {
		h.Log.Error("Error in ImportStudents handler", err, map[string]interface{}{"archivo": header.Filename})
		h.backToRoster(c, ctrl, "No se pudo importar el archivo: "+err.Error())
		return
	}
	h.backToRoster(c, ctrl, "Se importaron "+strconv.Itoa(n)+" alumnos")
}

// AddObservation handles POST /lista-asistencia/observaciones
func (h *PageHandler) AddObservation(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}

	_, err := ctrl.AddObservation(c.Request.Context(), c.PostForm("observacion"), h.now())
	switch {
	case errors.Is(err, roster.ErrEmptyObservation):
		h.backToRoster(c, ctrl, err.Error())
	case err != nil:
		h.Log.Error("Error in AddObservation handler", err)
		h.backToRoster(c, ctrl, "Error al guardar la observación")
	default:
		h.backToRoster(c, ctrl, "Observación guardada correctamente.")
	}
}

// --- History ---

// History handles GET /lista-asistencia/historial?desde=&hasta=
func (h *PageHandler) History(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}
	data := h.newHistoryPage(c, ctrl)

	from, to := c.Query("desde"), c.Query("hasta")
	if c.Query("filtrar") != "" || from != "" || to != "" {
		data.From, data.To = from, to
		entries, err := ctrl.FilterHistory(from, to)
		if err != nil {
			data.Flashes = append(data.Flashes, err.Error())
		} else {
			data.Entries = entries
			data.Flashes = append(data.Flashes, roster.FilterMessage(from, to))
		}
	}
	c.HTML(http.StatusOK, "historial.html", data)
}

func (h *PageHandler) newHistoryPage(c *gin.Context, ctrl *roster.Controller) historyPage {
	from, to := roster.DefaultHistoryRange(h.now())
	rp := h.newRosterPage(c, ctrl)
	rp.Title = "Historial - " + ctrl.Query.Group
	return historyPage{
		rosterPage: rp,
		From:       from,
		To:         to,
		Entries:    ctrl.History,
	}
}

// HistoryDetail handles GET /lista-asistencia/historial/:id
func (h *PageHandler) HistoryDetail(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}
	data := h.newHistoryPage(c, ctrl)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err == nil {
		var entry models.HistoryEntry
		if entry, err = ctrl.HistoryEntry(id); err == nil {
			data.DetailMessage = roster.DetailMessage(entry)
			if record, err := ctrl.Record(c.Request.Context(), id); err == nil {
				data.DetailStudents = record.Students
			} else if !errors.Is(err, roster.ErrHistoryNotFound) {
				h.Log.Error("Error in HistoryDetail handler", err)
			}
		}
	}
	if data.DetailMessage == "" {
		data.Flashes = append(data.Flashes, roster.ErrHistoryNotFound.Error())
		c.HTML(http.StatusNotFound, "historial.html", data)
		return
	}
	c.HTML(http.StatusOK, "historial.html", data)
}

// ExportHistory handles GET /lista-asistencia/historial/:id/exportar
func (h *PageHandler) ExportHistory(c *gin.Context) {
	ctrl := h.rosterController(c)
	if ctrl == nil {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusNotFound, roster.ErrHistoryNotFound.Error())
		return
	}

	record, err := ctrl.Record(c.Request.Context(), id)
	if errors.Is(err, roster.ErrHistoryNotFound) {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.Log.Error("Error in ExportHistory handler", err)
		c.String(http.StatusInternalServerError, "Error al exportar la asistencia")
		return
	}

	data, err := db.ExportRecordToExcel(record, ctrl.ProgramName)
	if err != nil {
		h.Log.Error("Error in ExportHistory handler", err)
		c.String(http.StatusInternalServerError, "Error al exportar la asistencia")
		return
	}
	c.Header("Content-Disposition", "attachment; filename=asistencia_"+strconv.FormatInt(id, 10)+".xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
