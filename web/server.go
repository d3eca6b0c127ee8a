// ABOUTME: Web UI server with embedded templates
// ABOUTME: Serves the dashboard, record pages and a JSON extraction API
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/closex/models"
	"github.com/harperreed/closex/scraper"
	"github.com/harperreed/closex/service"
	"github.com/harperreed/closex/viz"
)

//go:embed templates/*
var templatesFS embed.FS

// maxUploadBytes bounds pasted or posted page HTML.
const maxUploadBytes = 16 << 20

type Server struct {
	svc       *service.Service
	newSource func(url string) models.PageSource
	templates *template.Template
	logger    *log.Logger
}

// NewServer parses the embedded templates. newSource renders live URLs and
// may be nil, in which case only pasted HTML can be extracted.
func NewServer(svc *service.Service, newSource func(url string) models.PageSource, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.Default()
	}

	// Helper functions for templates
	funcMap := template.FuncMap{
		"currency": viz.FormatCurrency,
		"percent":  viz.FormatPercent,
		"lastSync": viz.FormatLastSync,
		"numeric":  viz.ParseNumeric,
		"join":     strings.Join,
		"stage":    viz.StageOf,
		"add": func(a, b int) int {
			return a + b
		},
		"barWidth": func(count, total int) int {
			if total == 0 {
				return 0
			}
			return count * 100 / total
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Server{
		svc:       svc,
		newSource: newSource,
		templates: tmpl,
		logger:    logger,
	}, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Pages
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/contacts", s.handleContacts)
	mux.HandleFunc("/pipeline", s.handlePipeline)
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/graphs", s.handleGraphs)

	// Actions
	mux.HandleFunc("/delete", s.handleDelete)
	mux.HandleFunc("/clear", s.handleClear)
	mux.HandleFunc("/extract", s.handleExtractForm)

	// Partials for HTMX
	mux.HandleFunc("/partials/graph", s.handleGraphPartial)

	// JSON API
	mux.HandleFunc("/api/snapshot", s.handleAPISnapshot)
	mux.HandleFunc("/api/metrics", s.handleAPIMetrics)
	mux.HandleFunc("/api/extract", s.handleAPIExtract)

	return sameOrigin(mux)
}

// sameOrigin rejects state-changing requests sent by another site's page.
// Requests without browser origin headers, such as curl, pass through.
func sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		switch r.Header.Get("Sec-Fetch-Site") {
		case "", "same-origin", "none":
		default:
			http.Error(w, "cross-origin request refused", http.StatusForbidden)
			return
		}

		if origin := r.Header.Get("Origin"); origin != "" {
			u, err := url.Parse(origin)
			if err != nil || u.Host != r.Host {
				http.Error(w, "cross-origin request refused", http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAddr joins host and port, binding loopback when host is empty.
func ListenAddr(host string, port int) string {
	if host == "" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Start serves on host:port until ctx is cancelled.
func (s *Server) Start(ctx context.Context, host string, port int) error {
	addr := ListenAddr(host, port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Starting web server", "url", "http://"+addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	// Execute the specified template (usually layout.html)
	// The data map includes ContentTemplate to specify which content block to render
	err := s.templates.ExecuteTemplate(w, name, data)
	if err != nil {
		s.logger.Error("template error", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// page builds the data shared by every layout render.
func (s *Server) page(r *http.Request, title, content string, state service.State) map[string]interface{} {
	status := r.URL.Query().Get("status")
	if state.Err != nil {
		status = state.Status
	}
	return map[string]interface{}{
		"Title":           title,
		"ContentTemplate": content,
		"Status":          status,
		"Query":           r.URL.Query().Get("q"),
		"Metrics":         state.Metrics,
		"Snapshot":        state.Snapshot,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	state := s.svc.Refresh(r.Context())
	data := s.page(r, "Dashboard", "dashboard-content", state)
	data["RecentLeads"] = viz.RecentLeads(state.Snapshot, 5)

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	state := s.svc.Refresh(r.Context())
	data := s.page(r, "Contacts", "contacts-content", state)
	data["Contacts"] = viz.FilterContacts(state.Snapshot.ContactList(), r.URL.Query().Get("q"))

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	state := s.svc.Refresh(r.Context())
	data := s.page(r, "Pipeline", "pipeline-content", state)
	data["Opportunities"] = viz.FilterOpportunities(state.Snapshot.OpportunityList(), r.URL.Query().Get("q"))

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	state := s.svc.Refresh(r.Context())
	data := s.page(r, "Tasks", "tasks-content", state)
	data["Tasks"] = viz.FilterTasks(state.Snapshot.TaskList(), r.URL.Query().Get("q"))

	s.renderTemplate(w, "layout.html", data)
}

func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	state := s.svc.Refresh(r.Context())
	s.renderTemplate(w, "layout.html", s.page(r, "Graphs", "graphs-content", state))
}

func (s *Server) handleGraphPartial(w http.ResponseWriter, r *http.Request) {
	state := s.svc.Refresh(r.Context())
	generator := viz.NewGraphGenerator(state.Snapshot)

	var dot string
	var err error

	switch graphType := r.URL.Query().Get("type"); graphType {
	case "", "pipeline":
		dot, err = generator.GeneratePipelineGraph()
	case "all":
		dot, err = generator.GenerateCompleteGraph()
	default:
		http.Error(w, "Invalid graph type", http.StatusBadRequest)
		return
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"DOT": dot,
	}

	s.renderTemplate(w, "graph.html", data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind, err := models.ParseKind(r.FormValue("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.FormValue("id")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	state := s.svc.Delete(r.Context(), kind, id)
	redirectWithStatus(w, r, pageFor(kind), state.Status)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.FormValue("confirm") != "yes" {
		http.Error(w, "confirm=yes is required", http.StatusBadRequest)
		return
	}

	state := s.svc.Clear(r.Context())
	redirectWithStatus(w, r, "/", state.Status)
}

func (s *Server) handleExtractForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	source, err := s.source(r.FormValue("url"), r.FormValue("html"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, state := s.svc.Extract(r.Context(), models.ExtractRequest{Type: models.ExtractMessageType, Source: source})
	redirectWithStatus(w, r, "/", state.Status)
}

// extractPayload is the JSON body of POST /api/extract.
type extractPayload struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	HTML string `json:"html"`
}

func (s *Server) handleAPIExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload extractPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUploadBytes)).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ExtractResponse{Message: "invalid JSON body"})
		return
	}

	req := models.ExtractRequest{Type: payload.Type}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ExtractResponse{Message: err.Error()})
		return
	}

	source, err := s.source(payload.URL, payload.HTML)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ExtractResponse{Message: err.Error()})
		return
	}
	req.Source = source

	resp, _ := s.svc.Extract(r.Context(), req)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	state := s.svc.Refresh(r.Context())
	if state.Err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": state.Status})
		return
	}
	writeJSON(w, http.StatusOK, state.Snapshot)
}

func (s *Server) handleAPIMetrics(w http.ResponseWriter, r *http.Request) {
	state := s.svc.Refresh(r.Context())
	if state.Err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": state.Status})
		return
	}
	writeJSON(w, http.StatusOK, state.Metrics)
}

// source picks pasted HTML over a live URL.
func (s *Server) source(pageURL, html string) (models.PageSource, error) {
	switch {
	case strings.TrimSpace(html) != "":
		return scraper.ReaderSource{Reader: strings.NewReader(html), URL: pageURL, Name: "web upload"}, nil
	case pageURL != "":
		if s.newSource == nil {
			return nil, fmt.Errorf("live extraction is not available; paste the page HTML")
		}
		return s.newSource(pageURL), nil
	}
	return nil, fmt.Errorf("url or html is required")
}

func pageFor(kind models.Kind) string {
	switch kind {
	case models.KindContacts:
		return "/contacts"
	case models.KindOpportunities:
		return "/pipeline"
	case models.KindTasks:
		return "/tasks"
	}
	return "/"
}

func redirectWithStatus(w http.ResponseWriter, r *http.Request, path, status string) {
	http.Redirect(w, r, path+"?status="+url.QueryEscape(status), http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
