package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"

	"asistencia-server-go/db"
	"asistencia-server-go/logger"
	"asistencia-server-go/roster"
	"asistencia-server-go/views"
)

const (
	testProgram = "software"
	testGroup   = "1925° IS - INGENIERÍA DE SOFTWARE"
	testDate    = "2024-05-02"
)

var testNow = time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// testClient drives the router and carries the session cookie between requests.
type testClient struct {
	t       *testing.T
	router  *gin.Engine
	store   *db.RedisService
	mr      *miniredis.Miniredis
	cookies map[string]*http.Cookie
}

func newTestClient(t *testing.T) *testClient {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := db.NewRedisService(client)

	for _, p := range db.SeedPrograms {
		require.NoError(t, store.AddProgram(context.Background(), p))
	}

	help, err := views.Help()
	require.NoError(t, err)

	deps := Deps{
		Store:    store,
		Log:      logger.New(io.Discard, "", "test", "test"),
		UserName: "Profesor",
		Now:      func() time.Time { return testNow },
	}
	router, err := NewRouter(NewAPIHandler(deps), NewPageHandler(deps, help), "test-secret")
	require.NoError(t, err)

	return &testClient{t: t, router: router, store: store, mr: mr, cookies: map[string]*http.Cookie{}}
}

func (c *testClient) do(req *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		c.cookies[ck.Name] = ck
	}
	return w
}

func (c *testClient) get(target string) *httptest.ResponseRecorder {
	c.t.Helper()
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *testClient) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) postJSON(target, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// follow requests the Location of a redirect response.
func (c *testClient) follow(w *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	c.t.Helper()
	loc := w.Header().Get("Location")
	require.NotEmpty(c.t, loc, "expected a redirect, got %d", w.Code)
	return c.get(loc)
}

// attr returns an attribute of the first element matching selector.
func attr(t *testing.T, doc *goquery.Document, selector, name string) string {
	t.Helper()
	sel := doc.Find(selector).First()
	require.Equal(t, 1, sel.Length(), "no element matches %q", selector)
	value, ok := sel.Attr(name)
	require.True(t, ok, "%q has no %s attribute", selector, name)
	return value
}

// submit sends the form matching selector the way a browser would: to its
// action, with its method, carrying its hidden inputs plus fields.
func (c *testClient) submit(doc *goquery.Document, selector string, fields url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	action := attr(c.t, doc, selector, "action")
	values := url.Values{}
	doc.Find(selector).First().Find(`input[type="hidden"]`).Each(func(_ int, in *goquery.Selection) {
		name, _ := in.Attr("name")
		value, _ := in.Attr("value")
		values.Add(name, value)
	})
	for name, vs := range fields {
		values[name] = vs
	}

	method, _ := doc.Find(selector).First().Attr("method")
	if !strings.EqualFold(method, http.MethodPost) {
		return c.get(action + "?" + values.Encode())
	}
	return c.postForm(action, values)
}

func document(t *testing.T, w *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	return doc
}

func alerts(doc *goquery.Document) []string {
	var out []string
	doc.Find(".alerta").Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

func rosterQuery(group string) roster.Query {
	return roster.Query{ProgramID: testProgram, Group: group, Date: testDate}
}
