package internal

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"
)

//go:embed screen.go.html static/crosshair.js
var templates embed.FS

var templateFuncs = template.FuncMap{
	"num": formatNumber,
	"sub": func(a, b float64) float64 { return a - b },
}

func parseTemplates() (*template.Template, template.JS, error) {
	tmpl, err := template.New("screen.go.html").Funcs(templateFuncs).ParseFS(templates, "screen.go.html")
	if err != nil {
		return nil, "", err
	}
	script, err := templates.ReadFile("static/crosshair.js")
	if err != nil {
		return nil, "", err
	}
	return tmpl, template.JS(script), nil
}

type pageData struct {
	Header   Header
	Date     string
	Live     bool
	Snapshot *Snapshot
	Script   template.JS
}

type liveMessage struct {
	Date    string    `json:"date"`
	Updated time.Time `json:"updated"`
	HTML    string    `json:"html"`
}

// Server serves the dashboard pages, the live updates and the metrics.
type Server struct {
	dashboard *Dashboard
	hub       *Hub
	metrics   *Metrics
	tmpl      *template.Template
	script    template.JS
	live      bool // Set once the hub runs.
}

// NewServer wires the dashboard to a websocket hub. The hub decides which
// dates the dashboard keeps refreshing.
func NewServer(dashboard *Dashboard, metrics *Metrics) (*Server, error) {
	tmpl, script, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s := &Server{
		dashboard: dashboard,
		hub:       NewHub(),
		metrics:   metrics,
		tmpl:      tmpl,
		script:    script,
	}
	dashboard.Watched = s.hub.Dates
	dashboard.Publish = s.publish
	metrics.GaugeFunc("powerdash_websocket_clients", "Browsers receiving live updates.", func() float64 {
		return float64(s.hub.ClientCount())
	})
	return s, nil
}

// Handler returns the routes of the dashboard.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{$}", s.metrics.Instrument("page", http.HandlerFunc(s.handlePage)))
	mux.Handle("GET /charts", s.metrics.Instrument("charts", http.HandlerFunc(s.handleCharts)))
	mux.Handle("GET /chart/{file}", s.metrics.Instrument("png", http.HandlerFunc(s.handlePNG)))
	mux.Handle("GET /interactive", s.metrics.Instrument("interactive", http.HandlerFunc(s.handleInteractive)))
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		if !s.live {
			http.NotFound(w, r)
			return
		}
		s.hub.ServeWS(w, r, s.date(r))
	})
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

// ListenAndServe runs the hub and the HTTP server until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.hub.Start()
	defer s.hub.Stop()
	s.live = true

	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Server running on http://localhost%s/", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) date(r *http.Request) string {
	return s.dashboard.Normalize(strings.TrimSpace(r.URL.Query().Get("date")))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	date := s.date(r)
	snapshot := s.dashboard.Snapshot(r.Context(), date)
	data := pageData{
		Header:   snapshot.Header,
		Date:     date,
		Live:     s.live,
		Snapshot: snapshot,
		Script:   s.script,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("failed to execute template:", err)
	}
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	snapshot := s.dashboard.Snapshot(r.Context(), s.date(r))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "charts", snapshot); err != nil {
		log.Println("failed to execute template:", err)
	}
}

func (s *Server) handlePNG(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutSuffix(r.PathValue("file"), ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	snapshot := s.dashboard.Snapshot(r.Context(), s.date(r))
	card, ok := snapshot.Card(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if card.Chart == nil {
		http.Error(w, card.Error, http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	if err := RenderChartPNG(&buf, card); err != nil {
		log.Println("failed to render png:", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(buf.Bytes())
}

func (s *Server) handleInteractive(w http.ResponseWriter, r *http.Request) {
	snapshot := s.dashboard.Snapshot(r.Context(), s.date(r))
	var buf bytes.Buffer
	if err := RenderInteractive(&buf, snapshot); err != nil {
		log.Println(err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// RenderCharts renders the charts fragment of a snapshot.
func (s *Server) RenderCharts(snapshot *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "charts", snapshot); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) publish(snapshot *Snapshot) {
	html, err := s.RenderCharts(snapshot)
	if err != nil {
		log.Println("failed to render charts:", err)
		return
	}
	payload, err := json.Marshal(liveMessage{Date: snapshot.Date, Updated: snapshot.Updated, HTML: string(html)})
	if err != nil {
		log.Println("failed to marshal update:", err)
		return
	}
	s.hub.Broadcast(snapshot.Date, payload)
}
