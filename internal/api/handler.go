package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"civiclens/internal/analysis"
	"civiclens/internal/config"
	"civiclens/internal/taxonomy"
)

// ComplaintAnalyzer is what the handler needs from the pipeline.
type ComplaintAnalyzer interface {
	Analyze(ctx context.Context, text string) (*analysis.Result, error)
}

type Handler struct {
	Config   config.Config
	Analyzer ComplaintAnalyzer
	Taxonomy *taxonomy.Taxonomy
}

func NewHandler(cfg config.Config, analyzer ComplaintAnalyzer, tax *taxonomy.Taxonomy) *Handler {
	return &Handler{Config: cfg, Analyzer: analyzer, Taxonomy: tax}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/analyze", h.handleAnalyze)
	mux.HandleFunc("/v1/taxonomy", h.handleTaxonomy)
	mux.HandleFunc("/v1/taxonomy/severities", h.handleSeverities)
	mux.HandleFunc("/v1/taxonomy/categories/", h.handleCategory)
	mux.HandleFunc("/v1/departments", h.handleDepartments)
	mux.HandleFunc("/v1/departments/", h.handleDepartment)
	mux.HandleFunc("/", h.handleRoot)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if !h.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error_kind": "forbidden", "message": "missing or invalid api key"})
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error_kind": "invalid_json", "message": "request body must be a JSON object with a text field"})
		return
	}

	result, err := h.Analyzer.Analyze(r.Context(), req.Text)
	if err != nil {
		var aerr *analysis.Error
		if errors.As(err, &aerr) {
			writeJSON(w, aerr.Kind.HTTPStatus(), map[string]any{
				"request_id": aerr.RequestID,
				"error_kind": string(aerr.Kind),
				"message":    aerr.Message,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error_kind": "internal", "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	type categoryView struct {
		Slug string   `json:"slug"`
		Name string   `json:"name"`
		Tags []string `json:"tags"`
	}
	categories := make([]categoryView, 0, len(h.Taxonomy.Categories))
	for _, c := range h.Taxonomy.Categories {
		categories = append(categories, categoryView{Slug: c.Slug, Name: c.Name, Tags: c.Tags})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"version":    h.Taxonomy.Version,
		"categories": categories,
		"severities": h.Taxonomy.Severities,
	})
}

func (h *Handler) handleSeverities(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"severities": h.Taxonomy.Severities})
}

func (h *Handler) handleCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/v1/taxonomy/categories/")
	c, ok := h.Taxonomy.CategoryBySlug(slug)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "unknown category"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"slug": c.Slug,
		"name": c.Name,
		"tags": c.Tags,
	})
}

func (h *Handler) handleDepartments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	departments := make(map[string]taxonomy.Route, len(h.Taxonomy.Categories))
	for _, c := range h.Taxonomy.Categories {
		departments[c.Slug] = c.Route
	}
	writeJSON(w, http.StatusOK, departments)
}

func (h *Handler) handleDepartment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	slug := strings.TrimPrefix(r.URL.Path, "/v1/departments/")
	route, ok := h.Taxonomy.RouteFor(slug)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "unknown department"})
		return
	}
	writeJSON(w, http.StatusOK, route)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "civiclens",
		"message": "urban infrastructure complaint analyzer",
		"endpoints": map[string]string{
			"analyze":     "/v1/analyze",
			"taxonomy":    "/v1/taxonomy",
			"departments": "/v1/departments",
			"health":      "/healthz",
		},
	})
}

// authorized checks the optional deployment API key. Analysis is the only
// guarded operation; the read-only vocabulary endpoints stay open.
func (h *Handler) authorized(r *http.Request) bool {
	key := h.Config.Security.APIKey
	if key == "" {
		return true
	}
	got := r.Header.Get("X-API-Key")
	return subtle.ConstantTimeCompare([]byte(got), []byte(key)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
