// Package gin serves the web interface: an input form, the annotated
// result, entity exports and operational endpoints.
package gin

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seoentity/seoentity"
	"github.com/seoentity/seoentity/prometheus"
)

// SessionCookie names the cookie carrying the session ID.
const SessionCookie = "seoentity_session"

// HistoryLimit is the number of stored analyses listed on the form page.
const HistoryLimit = 10

//go:embed templates/*.html
var templateFS embed.FS

// Runner executes one analysis run for a session.
// *pipeline.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, session seoentity.Session, input seoentity.Input) (seoentity.Session, *seoentity.Analysis, error)
}

// Server is the web UI.
type Server struct {
	Runner   Runner
	Analyses seoentity.AnalysisService
	Metrics  *prometheus.Metrics
	Logger   *slog.Logger

	sessions *SessionStore
	engine   *gin.Engine
	ln       net.Listener
	srv      *http.Server
}

// NewServer creates a Server. Analyses and metrics may be nil, which
// disables history pages and /metrics.
func NewServer(runner Runner, analyses seoentity.AnalysisService, metrics *prometheus.Metrics, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		Runner:   runner,
		Analyses: analyses,
		Metrics:  metrics,
		Logger:   logger,
		sessions: NewSessionStore(),
	}
	s.engine = s.router()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Sessions returns the server's session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Open listens on addr. Call Serve to accept connections.
func (s *Server) Open(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return nil
}

// Addr returns the listening address once Open has succeeded.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Serve accepts connections until Shutdown is called.
func (s *Server) Serve() error {
	if s.srv == nil {
		return seoentity.Errorf(seoentity.EINTERNAL, "server is not open")
	}
	s.Logger.Info("listening", "addr", s.Addr())
	if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe())
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.handleIndex)
	r.POST("/analyze", s.handleAnalyze)
	r.GET("/analyses/:id", s.handleAnalysis)
	r.GET("/analyses/:id/entities.json", s.handleExport("json"))
	r.GET("/analyses/:id/entities.csv", s.handleExport("csv"))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}
	return r
}

// observe logs each request and records it in the HTTP metrics.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		begin := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		if s.Metrics != nil {
			s.Metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
			s.Metrics.HTTPDuration.WithLabelValues(route).Observe(time.Since(begin).Seconds())
		}
		s.Logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(begin),
		)
	}
}

// StatusCode maps an application error to an HTTP status.
func StatusCode(err error) int {
	switch seoentity.ErrorCode(err) {
	case "":
		return http.StatusOK
	case seoentity.EINVALID:
		return http.StatusBadRequest
	case seoentity.ENOTFOUND:
		return http.StatusNotFound
	case seoentity.ECONFLICT:
		return http.StatusConflict
	case seoentity.EUNAVAILABLE:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// page is the data rendered by index.html.
type page struct {
	Mode     seoentity.InputMode
	Value    string
	Error    string
	Analysis *seoentity.Analysis
	History  []*seoentity.Analysis
	Runs     int
}

func (s *Server) handleIndex(c *gin.Context) {
	session := s.sessions.Ensure(s.sessionID(c))
	s.setSessionCookie(c, session.ID)
	s.render(c, http.StatusOK, page{Mode: seoentity.ModeURL, Analysis: session.Current, Runs: session.Runs})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	id := s.sessions.Ensure(s.sessionID(c)).ID
	s.setSessionCookie(c, id)

	mode := seoentity.InputMode(strings.ToLower(c.PostForm("mode")))
	input := seoentity.Input{Mode: mode, Value: c.PostForm("value")}

	session, err := s.sessions.Begin(id)
	if err != nil {
		s.renderError(c, input, session, err)
		return
	}

	next, err := s.run(c.Request.Context(), session, input)
	if err != nil {
		s.renderError(c, input, next, err)
		return
	}

	s.render(c, http.StatusOK, page{Mode: mode, Value: input.Value, Analysis: next.Current, Runs: next.Runs})
}

// run executes input against session and always releases the session, even
// if the runner panics. On panic the session keeps its previous snapshot.
func (s *Server) run(ctx context.Context, session seoentity.Session, input seoentity.Input) (next seoentity.Session, err error) {
	next = session
	defer func() { s.sessions.End(next) }()

	next, _, err = s.Runner.Run(ctx, session, input)
	return next, err
}

func (s *Server) handleAnalysis(c *gin.Context) {
	a, err := s.findAnalysis(c)
	if err != nil {
		s.render(c, StatusCode(err), page{Mode: seoentity.ModeURL, Error: userMessage(err)})
		return
	}
	s.render(c, http.StatusOK, page{Mode: a.Mode, Analysis: a})
}

func (s *Server) handleExport(format string) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := s.findAnalysis(c)
		if err != nil {
			c.String(StatusCode(err), userMessage(err))
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="entities-%s.%s"`, a.ID, format))
		c.Status(http.StatusOK)
		if format == "csv" {
			c.Header("Content-Type", "text/csv; charset=utf-8")
			err = seoentity.WriteCSV(c.Writer, a.Entities)
		} else {
			c.Header("Content-Type", "application/json; charset=utf-8")
			err = seoentity.WriteJSON(c.Writer, a.Entities)
		}
		if err != nil {
			s.Logger.Error("export failed", "id", a.ID, "format", format, "err", err)
		}
	}
}

// findAnalysis resolves :id against the current session first, then history.
// It never creates a session.
func (s *Server) findAnalysis(c *gin.Context) (*seoentity.Analysis, error) {
	id := c.Param("id")
	if session, ok := s.sessions.Lookup(s.sessionID(c)); ok && session.Current != nil && session.Current.ID == id {
		return session.Current, nil
	}
	if s.Analyses == nil {
		return nil, seoentity.Errorf(seoentity.ENOTFOUND, "analysis not found")
	}
	return s.Analyses.FindAnalysisByID(c.Request.Context(), id)
}

func (s *Server) renderError(c *gin.Context, input seoentity.Input, session seoentity.Session, err error) {
	s.Logger.Warn("analysis failed", "mode", input.Mode, "err", err)
	s.render(c, StatusCode(err), page{
		Mode:     input.Mode,
		Value:    input.Value,
		Error:    userMessage(err),
		Analysis: session.Current,
		Runs:     session.Runs,
	})
}

func (s *Server) render(c *gin.Context, status int, p page) {
	if p.Mode == "" {
		p.Mode = seoentity.ModeURL
	}
	if s.Analyses != nil {
		history, err := s.Analyses.FindAnalyses(c.Request.Context(), seoentity.AnalysisFilter{Limit: HistoryLimit})
		if err != nil {
			s.Logger.Warn("loading history failed", "err", err)
		}
		p.History = history
	}
	c.HTML(status, "index.html", p)
}

func (s *Server) sessionID(c *gin.Context) string {
	id, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return id
}

func (s *Server) setSessionCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
}

// userMessage is the text shown for err. Internal errors stay generic.
func userMessage(err error) string {
	return seoentity.ErrorMessage(err)
}

var templateFuncs = template.FuncMap{
	// highlighted trusts Highlight output, which escapes all source text.
	"highlighted": func(s string) template.HTML { return template.HTML(s) },
	"typeColor":   func(t seoentity.EntityType) string { return seoentity.TypeColor(t) },
	"join":        strings.Join,
	"modes": func() []seoentity.InputMode {
		return []seoentity.InputMode{seoentity.ModeURL, seoentity.ModeHTML, seoentity.ModeText}
	},
}
