// Package kpi serves the extractor page, its exports and a small JSON API.
package kpi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"kpi_extractor/pkg/core/chart"
	"kpi_extractor/pkg/core/extract"
	"kpi_extractor/pkg/core/report"
	"kpi_extractor/pkg/core/sanitize"
	"kpi_extractor/pkg/core/session"
	"kpi_extractor/pkg/core/utils"
	"kpi_extractor/pkg/models"
)

// CookieName carries the caller's session id.
const CookieName = "kpi_session"

// Chart element size and DOM ids.
const (
	chartWidth   = 320
	revenueChart = "revenue_chart"
	epsChart     = "eps_chart"
)

// Handler holds dependencies for the extractor endpoints.
type Handler struct {
	Sessions *session.Manager
	// Gateway serves the stateless JSON API. It is usually the same gateway the
	// session manager uses.
	Gateway extract.Gateway

	log   *slog.Logger
	tmpl  *template.Template
	intro template.HTML
}

// NewHandler creates a new extractor handler.
func NewHandler(sessions *session.Manager, gateway extract.Gateway, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if sessions == nil {
		return nil, errors.New("session manager is required")
	}
	tmpl, err := template.New("page").Parse(pageHTMLTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	intro, err := utils.RenderMarkdown(introMarkdown)
	if err != nil {
		return nil, fmt.Errorf("failed to render intro: %w", err)
	}
	return &Handler{Sessions: sessions, Gateway: gateway, log: logger, tmpl: tmpl, intro: intro}, nil
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandleIndex)
	mux.HandleFunc("POST /sample", h.HandleSample)
	mux.HandleFunc("POST /extract", h.HandleExtract)
	mux.HandleFunc("GET /export/"+report.CSVFilename, h.HandleExportCSV)
	mux.HandleFunc("GET /export/"+report.XLSXFilename, h.HandleExportXLSX)
	mux.HandleFunc("/api/extract", h.HandleAPIExtract)
	mux.HandleFunc("/api/session", h.HandleAPISession)
	mux.HandleFunc("GET /health", HandleHealth)
	mux.HandleFunc("GET /favicon.svg", HandleFavicon)
}

// Routes lists what Register mounts, for the startup banner.
func Routes() []string {
	return []string{
		"GET  /",
		"POST /sample",
		"POST /extract",
		"GET  /export/" + report.CSVFilename,
		"GET  /export/" + report.XLSXFilename,
		"POST /api/extract",
		"GET  /api/session",
		"POST /api/session",
		"GET  /health",
		"GET  /favicon.svg",
	}
}

// pageView is everything the page template reads.
type pageView struct {
	Title, Subtitle, CardHeading, Placeholder string
	SampleButton, ExtractButton, BusyText     string
	TableHeading, ChartsHeading               string
	RevenueTitle, EPSTitle                    string
	DownloadCSV, DownloadXLSX                 string
	SuccessMessage, NoticeIcon                string

	Intro  template.HTML
	Input  string
	Busy   bool
	Notice *session.Notice

	ShowResult   bool
	Rows         []models.ComparisonRow
	ChartScript  string
	RevenueChart template.HTML
	EPSChart     template.HTML
}

func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	s, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		h.serverError(w, "kpi.session_load_failed", id, err)
		return
	}
	h.render(w, s, nil)
}

func (h *Handler) HandleSample(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	s, err := h.Sessions.LoadSample(r.Context(), id)
	if errors.Is(err, session.ErrBusy) {
		n := session.NoticeFor(err)
		h.render(w, s, &n)
		return
	}
	if err != nil {
		h.serverError(w, "kpi.sample_failed", id, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}

	s, err := h.Sessions.Submit(r.Context(), id, r.PostFormValue("paragraph"))
	if err != nil && !isUserFacing(err) {
		h.serverError(w, "kpi.extract_failed", id, err)
		return
	}

	var notice *session.Notice
	if err != nil {
		n := session.NoticeFor(err)
		notice = &n
	}
	h.render(w, s, notice)
}

func (h *Handler) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, report.CSVFilename, report.CSVContentType, report.CSV)
}

func (h *Handler) HandleExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, report.XLSXFilename, report.XLSXContentType, report.XLSX)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request, filename, contentType string, build func([]models.ComparisonRow) ([]byte, error)) {
	id := h.sessionID(w, r)
	s, err := h.Sessions.Get(r.Context(), id)
	if err != nil {
		h.serverError(w, "kpi.session_load_failed", id, err)
		return
	}
	if !s.HasResult() {
		http.Error(w, "No extracted data to export", http.StatusNotFound)
		return
	}

	data, err := build(s.Result.Rows())
	if err != nil {
		h.serverError(w, "kpi.export_failed", id, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	Text string `json:"text"`
}

// ExtractResponse is the body of a successful POST /api/extract.
type ExtractResponse struct {
	Result *models.ExtractionResult `json:"result"`
	Rows   []models.ComparisonRow   `json:"rows"`
	Charts Charts                   `json:"charts"`
}

// Charts pairs the two comparison charts.
type Charts struct {
	Revenue *chart.Chart `json:"revenue"`
	EPS     *chart.Chart `json:"eps"`
}

// SessionResponse is the JSON view of one session.
type SessionResponse struct {
	ID        string                   `json:"id"`
	Input     string                   `json:"input"`
	Phase     session.Phase            `json:"phase"`
	Busy      bool                     `json:"busy"`
	Result    *models.ExtractionResult `json:"result"`
	Rows      []models.ComparisonRow   `json:"rows,omitempty"`
	Charts    *Charts                  `json:"charts,omitempty"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// EditRequest is the body of POST /api/session.
type EditRequest struct {
	Input string `json:"input"`
}

func (h *Handler) HandleAPIExtract(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "POST, OPTIONS") {
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"warning": session.ErrBlankInput.Error()})
		return
	}
	if h.Gateway == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no extraction gateway configured"})
		return
	}

	result, err := h.Gateway.Extract(r.Context(), req.Text)
	if errors.Is(err, extract.ErrEmptyInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"warning": session.ErrBlankInput.Error()})
		return
	}
	if err == nil && result == nil {
		err = errors.New("extractor returned no data")
	}
	if err != nil {
		h.log.Error("kpi.api_extract_failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": (&session.ExtractionError{Cause: err}).Error()})
		return
	}

	writeJSON(w, http.StatusOK, ExtractResponse{
		Result: result,
		Rows:   result.Rows(),
		Charts: chartsFor(result),
	})
}

func (h *Handler) HandleAPISession(w http.ResponseWriter, r *http.Request) {
	if cors(w, r, "GET, POST, OPTIONS") {
		return
	}
	id := h.sessionID(w, r)

	var (
		s   session.State
		err error
	)
	switch r.Method {
	case http.MethodGet:
		s, err = h.Sessions.Get(r.Context(), id)
	case http.MethodPost:
		var req EditRequest
		if derr := json.NewDecoder(r.Body).Decode(&req); derr != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		s, err = h.Sessions.Edit(r.Context(), id, req.Input)
		if errors.Is(err, session.ErrBusy) {
			writeJSON(w, http.StatusConflict, map[string]string{"warning": err.Error()})
			return
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		h.serverError(w, "kpi.session_failed", id, err)
		return
	}

	resp := SessionResponse{
		ID:        s.ID,
		Input:     s.Input,
		Phase:     s.Phase,
		Busy:      h.Sessions.Busy(id),
		Result:    s.Result,
		UpdatedAt: s.UpdatedAt,
	}
	if s.HasResult() {
		c := chartsFor(s.Result)
		resp.Rows = s.Result.Rows()
		resp.Charts = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleFavicon draws PageIcon as the tab icon.
func HandleFavicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100"><text y=".9em" font-size="90">%s</text></svg>`, PageIcon)
}

func (h *Handler) render(w http.ResponseWriter, s session.State, notice *session.Notice) {
	v := pageView{
		Title:          PageTitle,
		Subtitle:       Subtitle,
		CardHeading:    CardHeading,
		Placeholder:    Placeholder,
		SampleButton:   SampleButton,
		ExtractButton:  ExtractButton,
		BusyText:       BusyText,
		TableHeading:   TableHeading,
		ChartsHeading:  ChartsHeading,
		RevenueTitle:   RevenueTitle,
		EPSTitle:       EPSTitle,
		DownloadCSV:    DownloadCSV,
		DownloadXLSX:   DownloadXLSX,
		SuccessMessage: session.SuccessMessage,
		NoticeIcon:     noticeIcon,
		Intro:          h.intro,
		Input:          s.Input,
		Busy:           h.Sessions.Busy(s.ID),
		Notice:         notice,
	}

	if s.HasResult() {
		c := chartsFor(s.Result)
		v.ShowResult = true
		v.Rows = s.Result.Rows()
		v.ChartScript = chart.ScriptURL
		v.RevenueChart = c.Revenue.HTML(revenueChart, chartWidth)
		v.EPSChart = c.EPS.HTML(epsChart, chartWidth)
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, v); err != nil {
		h.serverError(w, "kpi.render_failed", s.ID, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// sessionID returns the caller's session id, issuing a new cookie when the
// request has none or carries something that is not a session id.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && session.ValidID(c.Value) {
		return c.Value
	}
	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *Handler) serverError(w http.ResponseWriter, event, id string, err error) {
	h.log.Error(event, "session", id, "error", err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

// chartsFor builds both comparison charts from the sanitized figures.
func chartsFor(r *models.ExtractionResult) Charts {
	return Charts{
		Revenue: chart.Build(sanitize.Float(r.RevenueActual.String()), sanitize.Float(r.RevenueExpected.String())),
		EPS:     chart.Build(sanitize.Float(r.EPSActual.String()), sanitize.Float(r.EPSExpected.String())),
	}
}

// isUserFacing reports whether err is an outcome to show on the page rather than a server fault.
func isUserFacing(err error) bool {
	var ee *session.ExtractionError
	return errors.Is(err, session.ErrBlankInput) || errors.Is(err, session.ErrBusy) || errors.As(err, &ee)
}

func cors(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
