package gateway

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/smehra/bookwise/internal/genre"
	"github.com/smehra/bookwise/internal/observability"
	"github.com/smehra/bookwise/internal/provider"
	"github.com/smehra/bookwise/internal/store"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<title>{{.AppName}}</title>
<style>
body { font-family: sans-serif; max-width: 640px; margin: 2rem auto; padding: 0 1rem; }
input[type=text], input[type=password] { width: 100%; padding: .4rem; margin: .3rem 0 .8rem; }
.error { color: #b00020; }
.info { color: #555; }
ol li { margin: .2rem 0; }
table { border-collapse: collapse; width: 100%; }
td, th { border-bottom: 1px solid #ddd; padding: .3rem; text-align: left; font-size: .85rem; }
</style>
</head>
<body>
<h1>{{.AppName}}</h1>
<form method="POST" action="/recommend">
  <label>API Key</label>
  <input type="password" name="api_key" value="">
  <label>What kind of book do you want?</label>
  <input type="text" name="query" value="{{.Query}}" placeholder="Suggest the best science fiction book">
  <button type="submit">Generate Recommendation</button>
</form>
<p class="info">Known genres: {{.Genres}}</p>
{{if .Info}}<p class="info">{{.Info}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Ran}}
  <h2>Top Book Recommendations</h2>
  {{if .Presentation}}
  <p>Detected genre: <b>{{.Genre}}</b></p>
  <ol>
  {{range .Presentation}}<li>{{.}}</li>{{end}}
  </ol>
  {{else}}
  <p class="info">No recommendations found.</p>
  {{end}}
{{end}}
{{if .Runs}}
  <h2>Recent runs</h2>
  <table>
  <tr><th>Query</th><th>Genre</th><th>Top pick</th></tr>
  {{range .Runs}}<tr><td>{{.Query}}</td><td>{{.Genre}}</td><td>{{.TopTitle}}</td></tr>{{end}}
  </table>
{{end}}
</body>
</html>`

type pageData struct {
	AppName      string
	Genres       string
	Query        string
	Genre        string
	Presentation []string
	Ran          bool
	Info         string
	Error        string
	Runs         []store.RunRecord
}

// RunLister provides the recent-runs view; nil disables it.
type RunLister interface {
	RecentRuns(limit int) ([]store.RunRecord, error)
}

type templateRenderer struct {
	tpl *template.Template
}

func (t *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.tpl.ExecuteTemplate(w, name, data)
}

// WebGateway serves the single-page recommendation form.
type WebGateway struct {
	echo    *echo.Echo
	addr    string
	appName string
	svc     Recommender
	runs    RunLister
}

func NewWebGateway(addr, appName string, svc Recommender, runs RunLister) *WebGateway {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	// Unified HTTP error handler with structured JSON and logging
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		log.Printf("[HTTP] %d %s %s: %v", code, req.Method, req.URL.Path, err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]any{"error": msg})
		}
	}

	e.Renderer = &templateRenderer{
		tpl: template.Must(template.New("page").Parse(pageTemplate)),
	}

	g := &WebGateway{
		echo:    e,
		addr:    addr,
		appName: appName,
		svc:     svc,
		runs:    runs,
	}

	e.GET("/", g.handleIndex)
	e.POST("/recommend", g.handleRecommend)
	e.GET("/healthz", g.handleHealth)
	e.GET("/api/runs", g.handleRuns)

	return g
}

func (g *WebGateway) Start() error {
	log.Printf("web gateway listening on %s", g.addr)
	err := g.echo.Start(g.addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (g *WebGateway) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.echo.Shutdown(ctx)
}

func (g *WebGateway) newPageData() pageData {
	return pageData{
		AppName: g.appName,
		Genres:  strings.Join(genre.Labels(), ", "),
	}
}

func (g *WebGateway) handleIndex(c echo.Context) error {
	data := g.newPageData()
	data.Info = "Please enter your API key to start."
	g.attachRecentRuns(&data)
	return c.Render(http.StatusOK, "page", data)
}

func (g *WebGateway) handleRecommend(c echo.Context) error {
	apiKey := c.FormValue("api_key")
	query := c.FormValue("query")
	if query == "" {
		query = "Suggest the best science fiction book"
	}

	data := g.newPageData()
	data.Query = query

	state, err := g.svc.Recommend(c.Request().Context(), apiKey, query)
	switch {
	case err == nil:
		data.Ran = true
		data.Genre = state.Genre
		data.Presentation = state.Presentation
	case errors.Is(err, provider.ErrMissingKey):
		data.Info = "Please enter your API key to start."
	default:
		// Model init failures and run failures (plan parse, catalog)
		// are shown, never swallowed: a failed run must be visible.
		var initErr *provider.InitError
		if errors.As(err, &initErr) {
			data.Error = fmt.Sprintf("Could not initialize model: %v", initErr.Err)
		} else {
			data.Error = fmt.Sprintf("Run failed: %v", err)
		}
	}

	g.attachRecentRuns(&data)
	return c.Render(http.StatusOK, "page", data)
}

func (g *WebGateway) handleHealth(c echo.Context) error {
	phase, query, updated := observability.GetStatus()
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"phase":   phase,
		"query":   query,
		"updated": updated,
	})
}

func (g *WebGateway) handleRuns(c echo.Context) error {
	if g.runs == nil {
		return c.JSON(http.StatusOK, []store.RunRecord{})
	}
	runs, err := g.runs.RecentRuns(20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if runs == nil {
		runs = []store.RunRecord{}
	}
	return c.JSON(http.StatusOK, runs)
}

func (g *WebGateway) attachRecentRuns(data *pageData) {
	if g.runs == nil {
		return
	}
	runs, err := g.runs.RecentRuns(5)
	if err != nil {
		log.Printf("failed to list recent runs: %v", err)
		return
	}
	data.Runs = runs
}
