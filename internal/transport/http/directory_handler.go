package http

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "leadscout/internal/errors"
	"leadscout/internal/exporter"
	"leadscout/internal/middleware"
)

// DirectoryHandler handles company directory requests
type DirectoryHandler struct {
	service      DirectoryService
	validator    *middleware.Validator
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(service DirectoryService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DirectoryHandler {
	return &DirectoryHandler{
		service:      service,
		validator:    middleware.NewValidator(logger),
		query:        middleware.NewQueryParamValidator(errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "directory")),
	}
}

// Routes returns the directory routes
func (h *DirectoryHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/dashboard", h.Dashboard)
		r.Get("/search", h.Search)
		r.Get("/leads", h.Leads)
		r.Get("/{name}", h.Company)
	})

	r.Get("/export", h.Export)

	return r
}

// Dashboard handles GET /api/companies/dashboard
func (h *DirectoryHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Dashboard(r.Context()))
}

// Search handles GET /api/companies/search?by=name|sphere&q=term
func (h *DirectoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	term := q.Get("q")

	results, err := h.service.Search(r.Context(), q.Get("by"), term)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]any{
		"status": "success",
		"query":  term,
		"data":   results,
		"count":  len(results),
	})
}

// Leads handles GET /api/companies/leads
func (h *DirectoryHandler) Leads(w http.ResponseWriter, r *http.Request) {
	req, err := h.filter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	profiles := h.service.Leads(r.Context(), req.Filter())
	render.JSON(w, r, map[string]any{
		"status": "success",
		"filter": req.Filter(),
		"data":   profiles,
		"count":  len(profiles),
	})
}

// Company handles GET /api/companies/{name}
func (h *DirectoryHandler) Company(w http.ResponseWriter, r *http.Request) {
	profile, err := h.service.Company(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, profile)
}

// Export handles GET /api/companies/export with the lead filter parameters
func (h *DirectoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	req, err := h.filter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, ok := exportFormat(h.query, w, r)
	if !ok {
		return
	}
	columns := exporter.ParseColumns(r.URL.Query().Get("columns"))

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, req.Filter(), format, columns); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writeAttachment(w, format, "company_leads", buf.Bytes())
}

func (h *DirectoryHandler) filter(r *http.Request) (LeadFilterRequest, error) {
	req, err := parseLeadFilter(r)
	if err != nil {
		return req, err
	}
	return req, h.validator.Struct(req)
}
