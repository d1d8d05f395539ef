package handlers

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"asistencia-server-go/views"
)

const sessionName = "asistencia"

// NewRouter wires the page and API routes.
func NewRouter(api *APIHandler, pages *PageHandler, sessionSecret string) (*gin.Engine, error) {
	tmpl, err := views.Templates()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	// Report JSON field names in validation errors.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(sessions.Sessions(sessionName, cookie.NewStore([]byte(sessionSecret))))
	router.SetHTMLTemplate(tmpl)
	router.StaticFS("/static", http.FS(views.Static()))

	router.GET("/", pages.Index)
	router.GET("/asistencia", pages.Catalog)
	router.GET("/asistencia/tomar-lista", pages.TakeRoster)

	lista := router.Group("/lista-asistencia")
	{
		lista.GET("", pages.Roster)
		lista.POST("/alumnos", pages.AddStudent)
		lista.POST("/alumnos/:id/eliminar", pages.DeleteStudent)
		lista.POST("/alumnos/:id/asistencia", pages.SetAttendance)
		lista.POST("/guardar", pages.SaveAttendance)
		lista.POST("/importar", pages.ImportStudents)
		lista.POST("/observaciones", pages.AddObservation)
		lista.GET("/historial", pages.History)
		lista.GET("/historial/:id", pages.HistoryDetail)
		lista.GET("/historial/:id/exportar", pages.ExportHistory)
	}

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/user-info", api.GetUserInfo)

		// Program routes
		apiGroup.GET("/carreras", api.GetAllPrograms)
		apiGroup.GET("/carreras/:id", api.GetProgramByID)
		apiGroup.POST("/carreras", api.AddProgram)
		apiGroup.GET("/carreras/:id/grupos", api.GetGroups)

		// Attendance routes
		apiGroup.POST("/guardar-asistencia", api.SaveAttendance)
		apiGroup.GET("/historial-asistencia", api.GetHistory)

		apiGroup.GET("/ping", PingHandler)
	}

	return router, nil
}
